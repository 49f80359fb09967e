package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jsamuelsen/tarot-service/internal/domain"
)

var (
	// ErrValidation wraps struct tag failures of a request.
	ErrValidation = errors.New("validation failed")
	// ErrBinding wraps bodies or queries that could not be decoded at all.
	ErrBinding = errors.New("binding failed")
)

// Validator returns the shared validator. Field errors are reported under
// their JSON names, and two custom tags are registered: notempty rejects
// blank strings, tone accepts a known reading tone or none.
var Validator = sync.OnceValue(func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)

	_ = v.RegisterValidation("notempty", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("tone", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseTone(fl.Field().String())
		return err == nil
	})

	return v
})

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	return name
}

// Validate checks v against its validate tags.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// BindAndValidate decodes the JSON body into v and validates it.
func BindAndValidate(c *gin.Context, v any) error {
	return bindWith(c, v, binding.JSON)
}

// BindQueryAndValidate decodes the query string into v and validates it.
func BindQueryAndValidate(c *gin.Context, v any) error {
	return bindWith(c, v, binding.Query)
}

func bindWith(c *gin.Context, v any, b binding.Binding) error {
	if err := c.ShouldBindWith(v, b); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// RespondWithBindError answers a failed BindAndValidate with 400. Struct tag
// failures carry per-field details; malformed bodies get a plain message.
func RespondWithBindError(c *gin.Context, err error) {
	if IsValidationError(err) {
		RespondWithValidationErrors(c, ValidationErrors(err))
		return
	}

	RespondWithErrorCode(c, ErrorCodeBadRequest, "request body is malformed")
}

// ValidationErrors maps each failing field to a readable message. Names are
// namespaced below the root struct, so nested elements read as
// "cardsDrawn[0].position".
func ValidationErrors(err error) map[string]string {
	out := make(map[string]string)

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return out
	}

	for _, fe := range fieldErrs {
		out[fieldName(fe)] = validationMessage(fe)
	}

	return out
}

func fieldName(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}

	return fe.Field()
}

func IsValidationError(err error) bool {
	var fieldErrs validator.ValidationErrors
	return errors.As(err, &fieldErrs)
}

// ParseID reads a positive integer path parameter.
func ParseID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationErrorWithValue(name, "must be a positive integer", raw)
	}

	return id, nil
}

var tagMessages = map[string]func(param string) string{
	"required": func(string) string { return "this field is required" },
	"notempty": func(string) string { return "must not be empty" },
	"tone":     func(string) string { return "must be one of warm, direct, mystical, analytical" },
	"dive":     func(string) string { return "contains an invalid element" },
	"gte":      func(p string) string { return "must be greater than or equal to " + p },
	"lte":      func(p string) string { return "must be less than or equal to " + p },
	"gt":       func(p string) string { return "must be greater than " + p },
	"lt":       func(p string) string { return "must be less than " + p },
	"oneof":    func(p string) string { return "must be one of: " + p },
}

func validationMessage(fe validator.FieldError) string {
	switch tag := fe.Tag(); tag {
	case "min", "max":
		return minMaxMessage(tag, fe.Param(), fe.Type().Kind())
	default:
		if msg, ok := tagMessages[tag]; ok {
			return msg(fe.Param())
		}

		return "failed validation: " + tag
	}
}

// minMaxMessage counts characters for strings and items for collections.
func minMaxMessage(tag, param string, kind reflect.Kind) string {
	bound := "at most "
	if tag == "min" {
		bound = "at least "
	}

	unit := ""

	switch kind { //nolint:exhaustive // only sized kinds get a unit
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Array:
		unit = " items"
	}

	return "must be " + bound + param + unit
}
