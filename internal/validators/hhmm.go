package validators

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var hhmmRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func IsHHMM(s string) bool {
	return hhmmRe.MatchString(s)
}

func hhmm(fl validator.FieldLevel) bool {
	return IsHHMM(fl.Field().String())
}

// Register adds the custom tags to gin's validator engine.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("hhmm", hhmm)
}
