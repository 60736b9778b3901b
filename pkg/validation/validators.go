package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// Allow letters, numbers, spaces, and common professional punctuation: . ' - / & ( ) ,
	nameRegex = regexp.MustCompile(`^[\p{L}0-9 .'/&(),-]+$`)

	// E164-like phone: optional +, digits 7-15 length
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// notificationTypes mirrors domain.NotificationTypes; kept local so this
// package stays free of internal imports.
var notificationTypes = map[string]bool{
	"job_alert":          true,
	"application_update": true,
	"profile_view":       true,
	"system":             true,
	"marketing":          true,
}

// New returns a validator with the custom tags registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("valid_phone", ValidPhone)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("notification_type", NotificationType)
	_ = v.RegisterValidation("action_ref", ActionRef)
}

// ValidName validates that a string contains only valid name characters
// Rejects digits and most special symbols
func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return nameRegex.MatchString(val)
}

// ValidPhone validates a phone number structure
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return phoneRegex.MatchString(val)
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, r := range val {
		// Supplementary planes are mostly emoji/pictographs
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) { // Symbol, other / Symbol, modifier
			return false
		}
	}
	return true
}

// NotificationType validates the notification category enumeration.
func NotificationType(fl validator.FieldLevel) bool {
	return notificationTypes[fl.Field().String()]
}

// ActionRef accepts an internal path ("/jobs/42") or an absolute http(s) URL.
func ActionRef(fl validator.FieldLevel) bool {
	return IsActionRef(fl.Field().String())
}

// IsActionRef is the predicate behind the action_ref tag.
func IsActionRef(val string) bool {
	if val == "" {
		return true
	}
	if strings.HasPrefix(val, "/") {
		// Protocol-relative "//host" would leave the site
		return !strings.HasPrefix(val, "//")
	}
	u, err := url.Parse(val)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
