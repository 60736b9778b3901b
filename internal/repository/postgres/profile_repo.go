package postgres

import (
	"context"
	"errors"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
		SELECT
			id, full_name, email, phone, location, bio,
			headline, current_position, company, experience_years, skills,
			desired_salary_min, desired_salary_max,
			linkedin_url, github_url, portfolio_url, website_url,
			profile_public, show_email, show_phone,
			email_notifications, job_alerts, application_updates, marketing_emails,
			resume_url, resume_filename, resume_uploaded_at, resume_size,
			created_at, updated_at
		FROM profiles WHERE id = $1`

	var p domain.Profile
	var skills []string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.FullName, &p.Email, &p.Phone, &p.Location, &p.Bio,
		&p.Headline, &p.CurrentPosition, &p.Company, &p.ExperienceYears, pq.Array(&skills),
		&p.DesiredSalaryMin, &p.DesiredSalaryMax,
		&p.LinkedInURL, &p.GithubURL, &p.PortfolioURL, &p.WebsiteURL,
		&p.ProfilePublic, &p.ShowEmail, &p.ShowPhone,
		&p.EmailNotifications, &p.JobAlerts, &p.ApplicationUpdates, &p.MarketingEmails,
		&p.ResumeURL, &p.ResumeFilename, &p.ResumeUploadedAt, &p.ResumeSize,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Profile not found")
		}
		return nil, err
	}
	if skills == nil {
		skills = []string{}
	}
	p.Skills = skills
	return &p, nil
}

// UpdateEditable writes every editable column in one statement. Resume
// columns are never touched here.
func (r *profileRepo) UpdateEditable(ctx context.Context, id string, e domain.ProfileEdit) error {
	skills := e.Skills
	if skills == nil {
		skills = []string{}
	}

	query := `
		UPDATE profiles SET
			full_name = $2, email = $3, phone = $4, location = $5, bio = $6,
			headline = $7, current_position = $8, company = $9, experience_years = $10, skills = $11,
			desired_salary_min = $12, desired_salary_max = $13,
			linkedin_url = $14, github_url = $15, portfolio_url = $16, website_url = $17,
			profile_public = $18, show_email = $19, show_phone = $20,
			email_notifications = $21, job_alerts = $22, application_updates = $23, marketing_emails = $24,
			updated_at = NOW()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		id, e.FullName, e.Email, e.Phone, e.Location, e.Bio,
		e.Headline, e.CurrentPosition, e.Company, e.ExperienceYears, pq.Array(skills),
		e.DesiredSalaryMin, e.DesiredSalaryMax,
		e.LinkedInURL, e.GithubURL, e.PortfolioURL, e.WebsiteURL,
		e.ProfilePublic, e.ShowEmail, e.ShowPhone,
		e.EmailNotifications, e.JobAlerts, e.ApplicationUpdates, e.MarketingEmails,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Profile not found")
	}
	return nil
}

// SetResume writes all four resume columns together.
func (r *profileRepo) SetResume(ctx context.Context, id string, ref domain.ResumeRef) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE profiles SET
			resume_url = $2, resume_filename = $3, resume_uploaded_at = $4, resume_size = $5,
			updated_at = NOW()
		WHERE id = $1`,
		id, ref.URL, ref.Filename, ref.UploadedAt, ref.Size,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Profile not found")
	}
	return nil
}

// ClearResume nulls all four resume columns together.
func (r *profileRepo) ClearResume(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE profiles SET
			resume_url = NULL, resume_filename = NULL, resume_uploaded_at = NULL, resume_size = NULL,
			updated_at = NOW()
		WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Profile not found")
	}
	return nil
}
