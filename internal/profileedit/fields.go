package profileedit

import (
	"fmt"
	"math"
	"strings"

	"go-jobboard-backend/internal/domain"
)

type fieldKind int

const (
	textField fieldKind = iota
	intField
	boolField
	listField
)

type field struct {
	name string
	kind fieldKind
	text func(*domain.ProfileEdit) **string
	num  func(*domain.ProfileEdit) **int
	flag func(*domain.ProfileEdit) *bool
	list func(*domain.ProfileEdit) *[]string
}

func text(name string, f func(*domain.ProfileEdit) **string) field {
	return field{name: name, kind: textField, text: f}
}

func num(name string, f func(*domain.ProfileEdit) **int) field {
	return field{name: name, kind: intField, num: f}
}

func flag(name string, f func(*domain.ProfileEdit) *bool) field {
	return field{name: name, kind: boolField, flag: f}
}

// editableFields is the fixed set of fields a profile edit may touch, in
// form order. Resume fields are deliberately absent.
var editableFields = []field{
	// Personal info
	text("full_name", func(e *domain.ProfileEdit) **string { return &e.FullName }),
	text("email", func(e *domain.ProfileEdit) **string { return &e.Email }),
	text("phone", func(e *domain.ProfileEdit) **string { return &e.Phone }),
	text("location", func(e *domain.ProfileEdit) **string { return &e.Location }),
	text("bio", func(e *domain.ProfileEdit) **string { return &e.Bio }),
	// Professional info
	text("headline", func(e *domain.ProfileEdit) **string { return &e.Headline }),
	text("current_position", func(e *domain.ProfileEdit) **string { return &e.CurrentPosition }),
	text("company", func(e *domain.ProfileEdit) **string { return &e.Company }),
	num("experience_years", func(e *domain.ProfileEdit) **int { return &e.ExperienceYears }),
	{name: "skills", kind: listField, list: func(e *domain.ProfileEdit) *[]string { return &e.Skills }},
	num("desired_salary_min", func(e *domain.ProfileEdit) **int { return &e.DesiredSalaryMin }),
	num("desired_salary_max", func(e *domain.ProfileEdit) **int { return &e.DesiredSalaryMax }),
	// Social links
	text("linkedin_url", func(e *domain.ProfileEdit) **string { return &e.LinkedInURL }),
	text("github_url", func(e *domain.ProfileEdit) **string { return &e.GithubURL }),
	text("portfolio_url", func(e *domain.ProfileEdit) **string { return &e.PortfolioURL }),
	text("website_url", func(e *domain.ProfileEdit) **string { return &e.WebsiteURL }),
	// Visibility
	flag("profile_public", func(e *domain.ProfileEdit) *bool { return &e.ProfilePublic }),
	flag("show_email", func(e *domain.ProfileEdit) *bool { return &e.ShowEmail }),
	flag("show_phone", func(e *domain.ProfileEdit) *bool { return &e.ShowPhone }),
	// Notification preferences
	flag("email_notifications", func(e *domain.ProfileEdit) *bool { return &e.EmailNotifications }),
	flag("job_alerts", func(e *domain.ProfileEdit) *bool { return &e.JobAlerts }),
	flag("application_updates", func(e *domain.ProfileEdit) *bool { return &e.ApplicationUpdates }),
	flag("marketing_emails", func(e *domain.ProfileEdit) *bool { return &e.MarketingEmails }),
}

var fieldsByName = func() map[string]field {
	m := make(map[string]field, len(editableFields))
	for _, f := range editableFields {
		m[f.name] = f
	}
	return m
}()

// Fields lists the editable field names in form order.
func Fields() []string {
	names := make([]string, len(editableFields))
	for i, f := range editableFields {
		names[i] = f.name
	}
	return names
}

// FieldError rejects a value that does not fit its field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// assign converts a decoded JSON value and stores it in e.
func (f field) assign(e *domain.ProfileEdit, value interface{}) error {
	switch f.kind {
	case textField:
		if value == nil {
			*f.text(e) = nil
			return nil
		}
		s, ok := value.(string)
		if !ok {
			return &FieldError{Field: f.name, Reason: "must be a string"}
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f.text(e) = nil
			return nil
		}
		*f.text(e) = &s

	case intField:
		if value == nil {
			*f.num(e) = nil
			return nil
		}
		var n int
		switch v := value.(type) {
		case int:
			n = v
		case float64:
			if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
				return &FieldError{Field: f.name, Reason: "must be a whole number"}
			}
			n = int(v)
		default:
			return &FieldError{Field: f.name, Reason: "must be a number"}
		}
		*f.num(e) = &n

	case boolField:
		b, ok := value.(bool)
		if !ok {
			return &FieldError{Field: f.name, Reason: "must be true or false"}
		}
		*f.flag(e) = b

	case listField:
		var items []string
		switch v := value.(type) {
		case nil:
		case []string:
			items = append(items, v...)
		case []interface{}:
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return &FieldError{Field: f.name, Reason: "must be a list of strings"}
				}
				items = append(items, s)
			}
		default:
			return &FieldError{Field: f.name, Reason: "must be a list of strings"}
		}
		if items == nil {
			items = []string{}
		}
		*f.list(e) = items
	}
	return nil
}
