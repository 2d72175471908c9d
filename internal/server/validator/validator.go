// Package validator configures the binding validator used at the HTTP
// boundary and turns its raw errors into field-keyed maps suitable for
// problem responses.
package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var trans ut.Translator

// InitValidator registers json tag names and english translations on gin's
// binding validator. Call once at startup, before any request is served.
func InitValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ = uni.GetTranslator("en")

	_ = en_translations.RegisterDefaultTranslations(v, trans)
}

// ParseValidationError flattens validator errors into a field -> message
// map. Enum (oneof) failures list the allowed values so callers can see the
// closed set; anything that is not a validation error collapses to a single
// generic body message.
func ParseValidationError(err error) map[string]string {
	fields := make(map[string]string)

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["body"] = "Invalid request body format. Please fix your payload."
		return fields
	}

	for _, e := range validationErrors {
		// strip the top-level struct name, keep nested paths
		// (e.g. "events[0].provider")
		name := e.Namespace()
		if i := strings.Index(name, "."); i != -1 {
			name = name[i+1:]
		}

		msg := e.Translate(trans)
		if e.Tag() == "oneof" {
			msg = fmt.Sprintf("must be one of [%s]", strings.ReplaceAll(e.Param(), " ", ", "))
		}

		fields[name] = msg
	}
	return fields
}
