package domain

import (
	"context"
	"time"
)

// Profile is the candidate's record, keyed by account id.
// The four Resume* fields are written together or not at all.
type Profile struct {
	ID string `json:"id"`

	// Personal info
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Location *string `json:"location"`
	Bio      *string `json:"bio"`

	// Professional info
	Headline         *string  `json:"headline"`
	CurrentPosition  *string  `json:"current_position"`
	Company          *string  `json:"company"`
	ExperienceYears  *int     `json:"experience_years"`
	Skills           []string `json:"skills"`
	DesiredSalaryMin *int     `json:"desired_salary_min"`
	DesiredSalaryMax *int     `json:"desired_salary_max"`

	// Social links
	LinkedInURL  *string `json:"linkedin_url"`
	GithubURL    *string `json:"github_url"`
	PortfolioURL *string `json:"portfolio_url"`
	WebsiteURL   *string `json:"website_url"`

	// Visibility
	ProfilePublic bool `json:"profile_public"`
	ShowEmail     bool `json:"show_email"`
	ShowPhone     bool `json:"show_phone"`

	// Notification preferences
	EmailNotifications bool `json:"email_notifications"`
	JobAlerts          bool `json:"job_alerts"`
	ApplicationUpdates bool `json:"application_updates"`
	MarketingEmails    bool `json:"marketing_emails"`

	// Resume reference
	ResumeURL        *string    `json:"resume_url"`
	ResumeFilename   *string    `json:"resume_filename"`
	ResumeUploadedAt *time.Time `json:"resume_uploaded_at"`
	ResumeSize       *int64     `json:"resume_size"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasResume reports whether the resume reference is populated.
func (p *Profile) HasResume() bool {
	return p.ResumeURL != nil && *p.ResumeURL != ""
}

// WantsEmailFor reports whether the profile's preference flags allow an email
// for a notification of the given category.
func (p *Profile) WantsEmailFor(notificationType string) bool {
	if !p.EmailNotifications || p.Email == nil || *p.Email == "" {
		return false
	}
	switch notificationType {
	case NotificationJobAlert:
		return p.JobAlerts
	case NotificationApplicationUpdate:
		return p.ApplicationUpdates
	case NotificationMarketing:
		return p.MarketingEmails
	default:
		return true
	}
}

// ProfileEdit is the set of user-editable fields persisted in one update.
// It has no resume fields.
type ProfileEdit struct {
	FullName *string `json:"full_name" validate:"omitempty,max=100,valid_name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,valid_phone"`
	Location *string `json:"location" validate:"omitempty,max=100"`
	Bio      *string `json:"bio" validate:"omitempty,max=1000,no_emoji"`

	Headline         *string  `json:"headline" validate:"omitempty,max=150"`
	CurrentPosition  *string  `json:"current_position" validate:"omitempty,max=100"`
	Company          *string  `json:"company" validate:"omitempty,max=100"`
	ExperienceYears  *int     `json:"experience_years" validate:"omitempty,min=0,max=70"`
	Skills           []string `json:"skills" validate:"omitempty,max=50,dive,min=1,max=50"`
	DesiredSalaryMin *int     `json:"desired_salary_min" validate:"omitempty,min=0"`
	DesiredSalaryMax *int     `json:"desired_salary_max" validate:"omitempty,min=0"`

	LinkedInURL  *string `json:"linkedin_url" validate:"omitempty,url"`
	GithubURL    *string `json:"github_url" validate:"omitempty,url"`
	PortfolioURL *string `json:"portfolio_url" validate:"omitempty,url"`
	WebsiteURL   *string `json:"website_url" validate:"omitempty,url"`

	ProfilePublic bool `json:"profile_public"`
	ShowEmail     bool `json:"show_email"`
	ShowPhone     bool `json:"show_phone"`

	EmailNotifications bool `json:"email_notifications"`
	JobAlerts          bool `json:"job_alerts"`
	ApplicationUpdates bool `json:"application_updates"`
	MarketingEmails    bool `json:"marketing_emails"`
}

// EditableCopy extracts the editable subset of p.
func (p *Profile) EditableCopy() ProfileEdit {
	return ProfileEdit{
		FullName:           p.FullName,
		Email:              p.Email,
		Phone:              p.Phone,
		Location:           p.Location,
		Bio:                p.Bio,
		Headline:           p.Headline,
		CurrentPosition:    p.CurrentPosition,
		Company:            p.Company,
		ExperienceYears:    p.ExperienceYears,
		Skills:             append([]string(nil), p.Skills...),
		DesiredSalaryMin:   p.DesiredSalaryMin,
		DesiredSalaryMax:   p.DesiredSalaryMax,
		LinkedInURL:        p.LinkedInURL,
		GithubURL:          p.GithubURL,
		PortfolioURL:       p.PortfolioURL,
		WebsiteURL:         p.WebsiteURL,
		ProfilePublic:      p.ProfilePublic,
		ShowEmail:          p.ShowEmail,
		ShowPhone:          p.ShowPhone,
		EmailNotifications: p.EmailNotifications,
		JobAlerts:          p.JobAlerts,
		ApplicationUpdates: p.ApplicationUpdates,
		MarketingEmails:    p.MarketingEmails,
	}
}

// ResumeRef is the resume reference written to a profile after upload.
type ResumeRef struct {
	URL        string
	Filename   string
	UploadedAt time.Time
	Size       int64
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	UpdateEditable(ctx context.Context, id string, edit ProfileEdit) error
	SetResume(ctx context.Context, id string, ref ResumeRef) error
	ClearResume(ctx context.Context, id string) error
}

type ProfileUsecase interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Save(ctx context.Context, userID string, edit ProfileEdit) (*Profile, error)
}
