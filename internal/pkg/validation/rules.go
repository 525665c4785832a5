package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/swimdesk/internal/domain"
)

// Validation rule values shared by request DTOs and services
var (
	// Email validation pattern
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	PasswordMinLength = 8

	OfferingTitleMinLength = 2
	OfferingTitleMaxLength = 120
	OfferingNotesMaxLength = 2000

	NameMinLength = 1
	NameMaxLength = 100

	// Enrollment notes and skip/transfer reasons
	ReasonMaxLength = 500

	SessionMinDuration = 15
	SessionMaxDuration = 240
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
}

// TagClassRatio validates a string (or *string) against the known class ratios
const TagClassRatio = "classratio"

var (
	defaultValidator *validator.Validate
	defaultOnce      sync.Once
)

// RegisterCustomValidations installs the custom tags on v
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation(TagClassRatio, validateClassRatio); err != nil {
		return fmt.Errorf("register %s: %w", TagClassRatio, err)
	}
	v.RegisterTagNameFunc(jsonTagName)
	return nil
}

// RegisterWithGin installs the custom tags on gin's binding validator
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return RegisterCustomValidations(v)
}

// Validator returns a shared validator that reads `binding` tags like gin does
func Validator() *validator.Validate {
	defaultOnce.Do(func() {
		v := validator.New()
		v.SetTagName("binding")
		if err := RegisterCustomValidations(v); err != nil {
			panic(err)
		}
		defaultValidator = v
	})
	return defaultValidator
}

// Struct validates obj against its `binding` tags
func Struct(obj interface{}) error {
	return Validator().Struct(obj)
}

// IsValidEmail checks an email address against EmailPattern, case-insensitively
func IsValidEmail(email string) bool {
	return CompiledPatterns.Email.MatchString(strings.ToLower(strings.TrimSpace(email)))
}

// LengthBetween reports whether the trimmed rune length of s is within [min, max]
func LengthBetween(s string, min, max int) bool {
	n := len([]rune(strings.TrimSpace(s)))
	return n >= min && n <= max
}

func validateClassRatio(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	// blank means "use the offering default"
	value := strings.TrimSpace(field.String())
	return value == "" || domain.ClassRatio(value).IsKnown()
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
