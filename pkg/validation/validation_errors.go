package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-facing labels
var FieldLabels = map[string]string{
	// Profile fields
	"FullName":           "Full name",
	"Email":              "Email",
	"Phone":              "Phone number",
	"Location":           "Location",
	"Bio":                "Bio",
	"Headline":           "Headline",
	"CurrentPosition":    "Current position",
	"Company":            "Company",
	"ExperienceYears":    "Years of experience",
	"Skills":             "Skills",
	"DesiredSalaryMin":   "Minimum desired salary",
	"DesiredSalaryMax":   "Maximum desired salary",
	"LinkedInURL":        "LinkedIn URL",
	"GithubURL":          "GitHub URL",
	"PortfolioURL":       "Portfolio URL",
	"WebsiteURL":         "Website URL",
	"EmailNotifications": "Email notifications",

	// Notification fields
	"UserID":    "Recipient",
	"Title":     "Title",
	"Message":   "Message",
	"Type":      "Category",
	"ActionURL": "Action link",
}

// ValidationRules contains extra context for validation messages
var ValidationRules = map[string]map[string]interface{}{
	"ExperienceYears": {"unit": "years"},
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var messages []string

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// Not a validation error, return generic message
		return []string{err.Error()}
	}

	for _, e := range validationErrors {
		msg := formatSingleError(e)
		messages = append(messages, msg)
	}

	return messages
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	fieldName := e.Field()
	label := getFieldLabel(fieldName)
	tag := e.Tag()
	param := e.Param()

	switch tag {
	case "required":
		return fmt.Sprintf("%s: is required", label)

	case "min":
		if rules, ok := ValidationRules[fieldName]; ok {
			if unit, hasUnit := rules["unit"]; hasUnit {
				return fmt.Sprintf("%s: must be at least %s %s", label, param, unit)
			}
		}
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at least %s", label, param)

	case "max":
		if rules, ok := ValidationRules[fieldName]; ok {
			if unit, hasUnit := rules["unit"]; hasUnit {
				return fmt.Sprintf("%s: must be at most %s %s", label, param, unit)
			}
		}
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at most %s", label, param)

	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", label, strings.Join(strings.Split(param, " "), ", "))

	case "uuid":
		return fmt.Sprintf("%s: must be a valid account id", label)

	case "email":
		return fmt.Sprintf("%s: invalid email format", label)

	case "url":
		return fmt.Sprintf("%s: invalid URL format", label)

	case "valid_name":
		return fmt.Sprintf("%s: only letters, spaces and common punctuation (. ' - /) are allowed", label)

	case "valid_phone":
		return fmt.Sprintf("%s: invalid phone number (7-15 digits, optional +)", label)

	case "no_emoji":
		return fmt.Sprintf("%s: must not contain emoji or special symbols", label)

	case "notification_type":
		return fmt.Sprintf("%s: must be one of: job_alert, application_update, profile_view, system, marketing", label)

	case "action_ref":
		return fmt.Sprintf("%s: must be an internal path or an http(s) URL", label)

	default:
		return fmt.Sprintf("%s: failed validation (%s)", label, tag)
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	// Return field name with spaces between camelCase words
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
