package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/FlorianRuen/devhub/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var searchFilters model.Filters

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search GitHub repositories",
	Example: `  devhub search "web framework" --language Go --min-stars 500
  devhub search --sort updated --date-range week`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		searchQuery := model.SearchQuery{Filters: searchFilters}
		if len(args) > 0 {
			searchQuery.Query = args[0]
		}

		if err := validateFilters(searchQuery.Filters); err != nil {
			return err
		}

		githubService, err := newGithubService(cmd.Context())
		if err != nil {
			return err
		}

		repos, err := githubService.SearchRepositories(cmd.Context(), searchQuery)
		if err != nil {
			return err
		}

		printRepositories(cmd.OutOrStdout(), repos, time.Now())
		return nil
	},
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List the most starred repositories created during the last week",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		githubService, err := newGithubService(cmd.Context())
		if err != nil {
			return err
		}

		repos, err := githubService.TrendingRepositories(cmd.Context())
		if err != nil {
			return err
		}

		printRepositories(cmd.OutOrStdout(), repos, time.Now())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd, trendingCmd)

	searchCmd.Flags().StringVarP(&searchFilters.Language, "language", "l", "", "only repositories written in this language")
	searchCmd.Flags().IntVar(&searchFilters.MinStars, "min-stars", 0, "minimum number of stars")
	searchCmd.Flags().StringVarP(&searchFilters.SortBy, "sort", "s", "", "sort by stars, forks, updated or created")
	searchCmd.Flags().StringVarP(&searchFilters.DateRange, "date-range", "d", "", "only repositories pushed during the last day, week, month or year")
}

func validateFilters(filters model.Filters) error {
	if filters.MinStars < 0 {
		return fmt.Errorf("%w: --min-stars must be positive", model.ErrInvalidRequest)
	}

	switch filters.DateRange {
	case "", "day", "week", "month", "year":
	default:
		return fmt.Errorf("%w: --date-range must be one of day, week, month, year", model.ErrInvalidRequest)
	}

	return nil
}

func printRepositories(w io.Writer, repos []model.Repository, now time.Time) {
	if len(repos) == 0 {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("No repositories found"))
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("REPOSITORY", "STARS", "FORKS", "LANGUAGE", "UPDATED")

	for _, r := range repos {
		language := r.Language
		if language == "" {
			language = "-"
		}

		t.Row(
			r.FullName,
			strconv.Itoa(r.StargazersCount),
			strconv.Itoa(r.ForksCount),
			language,
			r.UpdatedAgo(now),
		)
	}

	_, _ = fmt.Fprintln(w, t.String())
	_, _ = fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d repositories", len(repos))))
}
