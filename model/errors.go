package model

import "errors"

var (
	ErrRateLimitReached = errors.New("RATE_LIMIT_REACHED")
	ErrRateLimiter      = errors.New("RATE_LIMITER_ERROR")
	ErrFetch            = errors.New("FETCH_ERROR")
	ErrInvalidData      = errors.New("INVALID_DATA_FOUND")
	ErrBookmarkNotFound = errors.New("BOOKMARK_NOT_FOUND")
	ErrProjectNotFound  = errors.New("PROJECT_NOT_FOUND")
	ErrTemplateNotFound = errors.New("TEMPLATE_NOT_FOUND")
	ErrInvalidShareLink = errors.New("INVALID_SHARE_LINK")
	ErrStorage          = errors.New("STORAGE_ERROR")
	ErrInvalidRequest   = errors.New("INVALID_REQUEST")
)

const errGenericAPIMessage = "internal server error. contact our support with the reason code for assistance"

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewAPIError converts an error returned by a service into the payload sent to clients
// only the known error codes are exposed, anything else becomes GENERIC_ERROR
func NewAPIError(errReason error) APIError {
	switch {
	case errors.Is(errReason, ErrRateLimitReached):
		return APIError{
			Code:    ErrRateLimitReached.Error(),
			Message: "github rate limit reached. consider using a token to increase the limit or wait few minutes and try again",
		}

	case errors.Is(errReason, ErrBookmarkNotFound):
		return APIError{Code: ErrBookmarkNotFound.Error(), Message: "no bookmark found for this repository"}

	case errors.Is(errReason, ErrProjectNotFound):
		return APIError{Code: ErrProjectNotFound.Error(), Message: "no saved project found with this id"}

	case errors.Is(errReason, ErrTemplateNotFound):
		return APIError{Code: ErrTemplateNotFound.Error(), Message: "no template found with this id"}

	case errors.Is(errReason, ErrInvalidShareLink):
		return APIError{Code: ErrInvalidShareLink.Error(), Message: "the shared link is malformed"}

	case errors.Is(errReason, ErrInvalidRequest):
		return APIError{Code: ErrInvalidRequest.Error(), Message: errReason.Error()}

	case errors.Is(errReason, ErrRateLimiter),
		errors.Is(errReason, ErrFetch),
		errors.Is(errReason, ErrInvalidData),
		errors.Is(errReason, ErrStorage):
		return APIError{Code: rootCode(errReason), Message: errGenericAPIMessage}

	default:
		return APIError{Code: "GENERIC_ERROR", Message: errGenericAPIMessage}
	}
}

func rootCode(err error) string {
	for _, known := range []error{ErrRateLimiter, ErrFetch, ErrInvalidData, ErrStorage} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return "GENERIC_ERROR"
}
