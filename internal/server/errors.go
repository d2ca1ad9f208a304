package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/basil51/ai-school-sub003/internal/apperr"
	"github.com/basil51/ai-school-sub003/internal/logger"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var registerTagName sync.Once

// useJSONFieldNames makes validation errors name fields as clients send
// them.
func useJSONFieldNames() {
	registerTagName.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				if name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]; name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}

// bindError converts a gin binding failure into a validation error.
func bindError(err error) (*apperr.Error, map[string]string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("malformed request: %v", err), nil
	}
	fields := make(map[string]string, len(verrs))
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
		names = append(names, fe.Field())
	}
	return apperr.Validation("invalid fields: %s", strings.Join(names, ", ")), fields
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	}
	return fmt.Sprintf("failed %s", fe.Tag())
}

func writeError(c *gin.Context, log *logger.Logger, err error) {
	writeErrorFields(c, log, err, nil)
}

func writeErrorFields(c *gin.Context, log *logger.Logger, err error, fields map[string]string) {
	kind := apperr.KindOf(err)
	msg := err.Error()
	if kind == apperr.KindInternal {
		log.Error("request failed", "path", c.Request.URL.Path, "error", err)
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(apperr.Status(err), errorBody{
		Error: errorDetail{Code: kind.String(), Message: msg, Fields: fields},
	})
}
