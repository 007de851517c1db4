package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	trans ut.Translator
	once  sync.Once
)

// InitValidator makes gin's binding validator report json field names and
// english messages. Safe to call more than once.
func InitValidator() {
	once.Do(func() {
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
	})
}

// IsValidation reports whether err came from struct validation rather than
// from decoding the body.
func IsValidation(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// ParseValidationError converts raw technical errors into a field -> message map.
func ParseValidationError(err error) map[string]string {
	errMap := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errMap["body"] = "Invalid request body format. Please fix your payload."
		return errMap
	}

	for _, e := range verrs {
		ns := e.Namespace()
		if i := strings.Index(ns, "."); i != -1 {
			ns = ns[i+1:]
		}

		msg := e.Error()
		if trans != nil {
			msg = e.Translate(trans)
		}
		if e.Tag() == "oneof" {
			msg = fmt.Sprintf("must be one of [%s]", strings.ReplaceAll(e.Param(), " ", ", "))
		}
		errMap[ns] = msg
	}
	return errMap
}

// Describe flattens ParseValidationError into one sentence, sorted by field.
func Describe(err error) string {
	errMap := ParseValidationError(err)
	fields := make([]string, 0, len(errMap))
	for f := range errMap {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, errMap[f])
	}
	return strings.Join(parts, "; ")
}
