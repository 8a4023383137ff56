package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	ptbr_translations "github.com/go-playground/validator/v10/translations/pt_BR"
)

// OptionTag validates an answer key ("a" to "e").
const OptionTag = "option"

var (
	// trans is the singleton pt-BR translator for validation errors.
	trans ut.Translator
	once  sync.Once
)

// Setup registers the validator with pt-BR translations and the option tag on
// Gin's binding engine. Safe to call more than once.
func Setup() {
	once.Do(setup)
}

func setup() {
	v, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return
	}

	// Use JSON tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(OptionTag, func(fl govalidator.FieldLevel) bool {
		return IsOption(fl.Field().String())
	})

	locale := pt_BR.New()
	uni := ut.New(locale, locale)
	trans, _ = uni.GetTranslator("pt_BR")
	_ = ptbr_translations.RegisterDefaultTranslations(v, trans)
	_ = v.RegisterTranslation(OptionTag, trans,
		func(ut ut.Translator) error {
			return ut.Add(OptionTag, "{0} deve ser uma alternativa entre a e e", true)
		},
		func(ut ut.Translator, fe govalidator.FieldError) string {
			msg, _ := ut.T(OptionTag, fe.Field())
			return msg
		},
	)
}

// IsOption reports whether s is an answer key.
func IsOption(s string) bool {
	switch s {
	case "a", "b", "c", "d", "e":
		return true
	}
	return false
}

// Struct validates v against its binding tags outside of a request, e.g. a
// question read from the corpus.
func Struct(v any) error {
	Setup()
	return binding.Validator.ValidateStruct(v)
}

// TranslateErrors maps a binding error to field name and pt-BR message. Errors
// that are not validation errors (malformed JSON) land under "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst any) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
