package handler

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/edia-health/edia-backend/internal/middleware"
	"github.com/edia-health/edia-backend/internal/service"
	"github.com/edia-health/edia-backend/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// validator tag -> error code reported to clients
var tagCodes = map[string]string{
	"required": "required",
	"email":    "invalid",
	"datetime": "invalid",
	"oneof":    "invalid_choice",
	"gt":       "min_value",
	"gte":      "min_value",
	"min":      "min_value",
	"lt":       "max_value",
	"lte":      "max_value",
	"max":      "max_value",
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// bindJSON binds the body into req and writes the error response when it
// fails. It reports whether the handler may continue.
func bindJSON(c *gin.Context, req interface{}) bool {
	return handleBindError(c, c.ShouldBindJSON(req))
}

// bindJSONOptional is bindJSON for partial updates: an empty body leaves req
// at its zero value.
func bindJSONOptional(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if errors.Is(err, io.EOF) {
		return true
	}
	return handleBindError(c, err)
}

func handleBindError(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		response.ValidationFailed(c, fieldErrors(verrs))
	case errors.As(err, &typeErr) && typeErr.Field != "":
		response.ValidationFailed(c, response.FieldErrors{typeErr.Field: {"invalid"}})
	case errors.Is(err, io.EOF):
		response.BadRequest(c, "empty request body")
	default:
		response.BadRequest(c, "malformed request body")
	}
	return false
}

func fieldErrors(verrs validator.ValidationErrors) response.FieldErrors {
	out := make(response.FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		// drop the request struct name
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		code, ok := tagCodes[fe.Tag()]
		if !ok {
			code = fe.Tag()
		}
		out[field] = append(out[field], code)
	}
	return out
}

// respondError maps service errors to the response envelope
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationFailedWithMessages(c,
			response.FieldErrors{verr.Field: {verr.Code}},
			response.FieldErrors{verr.Field: {verr.Message}})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, "forbidden")
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrRecordNotFound):
		response.NotFound(c, "not_found")
	case errors.Is(err, service.ErrProfileNotFound):
		response.BadRequest(c, "profile_not_found")
	case errors.Is(err, service.ErrDuplicateDate):
		response.BadRequest(c, "duplicate_date")
	default:
		middleware.LogError("%s %s | %v", c.Request.Method, c.FullPath(), err)
		response.InternalError(c, "internal server error")
	}
}
