package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/blog-api/backend/internal/apperr"
	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/anonto42/blog-api/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func success(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, models.Response{Success: true, Message: message, Data: data})
}

// bindAndValidate decodes the request body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

// pagination reads page and limit leniently: bad values fall back to the defaults.
func pagination(c echo.Context) services.Pagination {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return services.NewPagination(page, limit)
}

// strictPagination rejects page or limit values that are present but not positive integers.
func strictPagination(c echo.Context) (services.Pagination, error) {
	read := func(name string, fallback int) (int, error) {
		raw := c.QueryParam(name)
		if raw == "" {
			return fallback, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, apperr.Validation("Page and limit must be positive numbers.")
		}
		return n, nil
	}
	page, err := read("page", services.DefaultPage)
	if err != nil {
		return services.Pagination{}, err
	}
	limit, err := read("limit", services.DefaultLimit)
	if err != nil {
		return services.Pagination{}, err
	}
	return services.NewPagination(page, limit), nil
}

// ErrorHandler renders every error as the response envelope.
// Untagged errors are logged and reported as a generic internal error.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal server error"

		var appErr *apperr.Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = appErr.Kind.Status()
			if appErr.Kind != apperr.KindInternal {
				message = appErr.Message
			}
		case errors.As(err, &httpErr):
			status = httpErr.Code
			switch {
			case status == http.StatusNotFound:
				message = "Route not found"
			case status >= http.StatusInternalServerError:
			default:
				if m, ok := httpErr.Message.(string); ok {
					message = m
				} else {
					message = http.StatusText(status)
				}
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("uri", c.Request().RequestURI).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("Unhandled error")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, models.Response{Success: false, Message: message})
		}
		if writeErr != nil {
			log.Error().Err(writeErr).Msg("Failed to write error response")
		}
	}
}
