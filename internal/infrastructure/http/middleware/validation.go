package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/rezkam/todo/internal/infrastructure/http/response"
)

// ValidationConfig holds configuration for the OpenAPI validation middleware.
type ValidationConfig struct {
	// MultiError when true collects all validation errors instead of stopping at first.
	MultiError bool
}

// NewValidator creates OpenAPI request validation middleware.
// Requests that match an operation in spec are validated and rejected with
// 400 on failure. Requests matching no operation pass through so the router
// can answer 404 or 405 itself.
func NewValidator(spec *openapi3.T, cfg ValidationConfig) (func(http.Handler) http.Handler, error) {
	// Routes are mounted under /api on any host.
	spec.Servers = openapi3.Servers{{URL: "/api"}}

	router, err := gorillamux.NewRouter(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to build OpenAPI router: %w", err)
	}

	opts := &openapi3filter.Options{
		MultiError:         cfg.MultiError,
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    opts,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				details := parseValidationError(err)
				slog.WarnContext(r.Context(), "request validation failed",
					"path", r.URL.Path,
					"method", r.Method,
					"invalid_field_count", len(details),
					"error", err.Error())
				writeValidationError(w, details)
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

func writeValidationError(w http.ResponseWriter, details []response.ErrorField) {
	body := response.ErrorResponse{
		Error: response.ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Message: "validation failed",
			Details: details,
		},
	}
	if len(details) == 0 {
		body.Error.Details = []response.ErrorField{}
	}
	response.JSON(w, http.StatusBadRequest, body)
}

// parseValidationError flattens kin-openapi errors into field/issue pairs.
func parseValidationError(err error) []response.ErrorField {
	switch e := err.(type) {
	case openapi3.MultiError:
		var out []response.ErrorField
		for _, inner := range e {
			out = append(out, parseValidationError(inner)...)
		}
		return out
	case *openapi3filter.RequestError:
		if e.Parameter != nil {
			issue := e.Reason
			if e.Err != nil {
				issue = e.Err.Error()
			}
			return []response.ErrorField{{Field: e.Parameter.Name, Issue: issue}}
		}
		if e.Err != nil {
			return parseValidationError(e.Err)
		}
		return []response.ErrorField{{Field: "body", Issue: e.Reason}}
	case *openapi3.SchemaError:
		field := strings.Join(e.JSONPointer(), ".")
		if field == "" {
			field = "body"
		}
		return []response.ErrorField{{Field: field, Issue: e.Reason}}
	default:
		return []response.ErrorField{{Field: "body", Issue: "invalid request body"}}
	}
}
