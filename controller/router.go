package controller

import (
	"time"

	"github.com/FlorianRuen/devhub/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter defines all routes of the api
func NewRouter(apiController APIController, bookmarkController BookmarkController, playgroundController PlaygroundController) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		logger.RequestLogger(),
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE"},
			AllowHeaders:  []string{"Content-Type, Content-Length, Accept-Encoding, Host, accept, Origin, Cache-Control, X-Requested-With"},
			ExposeHeaders: []string{"Content-Disposition"},
			MaxAge:        12 * time.Hour,
		}),
	)

	router.GET("/health", apiController.Health)

	api := router.Group("/api")
	{
		api.GET("/repositories", apiController.GetRepositories)
		api.GET("/repositories/trending", apiController.GetTrendingRepositories)
		api.GET("/discover", apiController.Discover)
		api.GET("/analytics", apiController.GetAnalytics)
	}

	bookmarks := api.Group("/bookmarks")
	{
		bookmarks.GET("", bookmarkController.ListBookmarks)
		bookmarks.POST("", bookmarkController.AddBookmark)
		bookmarks.POST("/toggle", bookmarkController.ToggleBookmark)
		bookmarks.POST("/refresh", bookmarkController.RefreshBookmarks)
		bookmarks.GET("/:id", bookmarkController.GetBookmark)
		bookmarks.PUT("/:id", bookmarkController.UpdateBookmark)
		bookmarks.DELETE("/:id", bookmarkController.RemoveBookmark)
	}

	playground := api.Group("/playground")
	{
		playground.GET("/templates", playgroundController.ListTemplates)
		playground.GET("/templates/:id", playgroundController.GetTemplate)
		playground.POST("/preview", playgroundController.Preview)
		playground.POST("/export", playgroundController.Export)
		playground.POST("/share", playgroundController.Share)
		playground.GET("/shared", playgroundController.LoadShared)
		playground.POST("/stats", playgroundController.Stats)
		playground.GET("/projects", playgroundController.ListProjects)
		playground.POST("/projects", playgroundController.SaveProject)
		playground.GET("/projects/:id", playgroundController.GetProject)
		playground.DELETE("/projects/:id", playgroundController.DeleteProject)
	}

	return router
}
