package server

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	maxNameLength  = 32
	maxGuessLength = 200
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("name", func(fl validator.FieldLevel) bool {
			return validText(fl.Field().String(), maxNameLength)
		})
		_ = engine.RegisterValidation("guess", func(fl validator.FieldLevel) bool {
			return utf8.RuneCountInString(fl.Field().String()) <= maxGuessLength
		})
	})
}

// validText accepts text that is non-blank and at most maxLen characters
// once trimmed.
func validText(text string, maxLen int) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed != "" && utf8.RuneCountInString(trimmed) <= maxLen
}
