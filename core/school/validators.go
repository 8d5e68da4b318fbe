package school

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classpoll/core"
)

var (
	resTypeTag  = "restype"
	resTypeText = "resource type must be one of LINK, BOOK or FILE"

	notZeroTag  = "notzero"
	notZeroText = "a date is required"
)

// InitValidators registers the school validators and their messages.
// It must run after core.InitValidators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(resTypeTag, resTypeValidation)
	core.RegisterCustomTranslation(validate, translator, resTypeTag, resTypeText)

	_ = validate.RegisterValidation(notZeroTag, notZeroTimeValidation)
	core.RegisterCustomTranslation(validate, translator, notZeroTag, notZeroText)
}

func resTypeValidation(fl validator.FieldLevel) bool {
	return ResourceType(fl.Field().String()).IsValid()
}

func notZeroTimeValidation(fl validator.FieldLevel) bool {
	if t, ok := fl.Field().Interface().(time.Time); ok {
		return !t.IsZero()
	}
	return false
}
