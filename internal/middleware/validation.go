package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apperrors "huntstats/internal/errors"
	"huntstats/internal/infrastructure"
)

// DefaultMaxBodySize bounds JSON request bodies
const DefaultMaxBodySize = 1 << 20

// Validator decodes JSON bodies and checks them against struct tags.
// Besides the built-in tags it understands "step" (a registered step id)
// and "column" (a usable column name).
type Validator struct {
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
	maxBodySize  int64
	stepIDs      map[string]struct{}
}

// NewValidator creates a validator accepting the given step ids
func NewValidator(logger *slog.Logger, errorHandler *apperrors.ErrorHandler, maxBodySize int64, stepIDs []string) *Validator {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	m := &Validator{
		validate:     validator.New(),
		logger:       infrastructure.WithComponent(logger, "validation"),
		errorHandler: errorHandler,
		maxBodySize:  maxBodySize,
		stepIDs:      make(map[string]struct{}, len(stepIDs)),
	}
	for _, id := range stepIDs {
		m.stepIDs[id] = struct{}{}
	}

	_ = m.validate.RegisterValidation("step", m.isRegisteredStep)
	_ = m.validate.RegisterValidation("column", isColumnName)

	// Report JSON names rather than Go field names
	m.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return m
}

// DecodeJSON reads r's body into v and validates it. On failure the
// problem response has been written and false is returned.
func (m *Validator) DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, m.maxBodySize)
	dec := json.NewDecoder(body)
	dec.UseNumber()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		m.logger.WarnContext(r.Context(), "invalid request body",
			slog.String("error", err.Error()),
			slog.String("request_id", GetRequestID(r.Context())))

		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			m.errorHandler.HandleError(w, r, apperrors.PayloadTooLarge(m.maxBodySize))
		case errors.Is(err, io.EOF):
			m.errorHandler.HandleError(w, r, apperrors.ErrValidation("body", "request body is required"))
		default:
			m.errorHandler.HandleError(w, r, apperrors.InvalidRequestWithError(err))
		}
		return false
	}

	if err := m.ValidateStruct(v); err != nil {
		m.errorHandler.HandleError(w, r, err)
		return false
	}
	return true
}

// ValidateStruct validates v and returns an APIError listing every field
func (m *Validator) ValidateStruct(v any) error {
	err := m.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.InvalidRequestWithError(err)
	}

	out := make([]apperrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apperrors.ValidationError{
			Field:   fieldPath(fe),
			Message: formatValidationError(fe),
		})
	}
	return apperrors.NewValidationErrors(out)
}

// ValidateVar checks a single value, such as a query parameter
func (m *Validator) ValidateVar(field string, value any, tag string) error {
	err := m.validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.InvalidRequestWithError(err)
	}
	msg := strings.TrimPrefix(formatValidationError(fieldErrs[0]), " ")
	return apperrors.ErrValidation(field, field+" "+msg)
}

// RequireContentType rejects bodies whose media type is not listed
func RequireContentType(contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodDelete {
				next.ServeHTTP(w, r)
				return
			}

			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err == nil {
				for _, allowed := range contentTypes {
					if mediaType == allowed {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			problem := apperrors.NewProblemDetails(
				http.StatusUnsupportedMediaType,
				apperrors.TypeValidation,
				http.StatusText(http.StatusUnsupportedMediaType),
				fmt.Sprintf("Content-Type must be one of: %s", strings.Join(contentTypes, ", ")),
				r.URL.Path,
			).WithExtension("trace_id", GetRequestID(r.Context()))
			_ = render.Render(w, r, problem)
		})
	}
}

func (m *Validator) isRegisteredStep(fl validator.FieldLevel) bool {
	_, ok := m.stepIDs[fl.Field().String()]
	return ok
}

func isColumnName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || len(name) > 128 {
		return false
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// fieldPath drops the top-level struct name: steps[0].id
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatValidationError(fe validator.FieldError) string {
	field, param := fieldPath(fe), fe.Param()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, param)
	case "max":
		return fmt.Sprintf("%s must have at most %s entries", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "step":
		return fmt.Sprintf("%s is not a registered step: %v", field, fe.Value())
	case "column":
		return fmt.Sprintf("%s must be a valid column name", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
