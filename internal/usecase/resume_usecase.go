package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"
	"go-jobboard-backend/pkg/security"
	"go-jobboard-backend/pkg/security/antivirus"
	"go-jobboard-backend/pkg/storage"
)

// ResumeCacheControl is the cache policy sent with stored resumes, in seconds.
const ResumeCacheControl = "3600"

// sniffLength is how much of the file is inspected for magic bytes.
const sniffLength = 512

type resumeUsecase struct {
	profiles domain.ProfileRepository
	store    domain.ObjectStore
	scanner  antivirus.Scanner
	limiter  *security.UploadLimiter
	audit    *security.SecurityLogger
	now      func() time.Time
}

// NewResumeUsecase wires the resume upload/delete flows. scanner, limiter
// and audit may be nil.
func NewResumeUsecase(
	profiles domain.ProfileRepository,
	store domain.ObjectStore,
	scanner antivirus.Scanner,
	limiter *security.UploadLimiter,
	audit *security.SecurityLogger,
) domain.ResumeUsecase {
	if scanner == nil {
		scanner = antivirus.NewNoOpScanner()
	}
	return &resumeUsecase{
		profiles: profiles,
		store:    store,
		scanner:  scanner,
		limiter:  limiter,
		audit:    audit,
		now:      time.Now,
	}
}

type saga struct {
	steps []domain.SagaStep
}

func (s *saga) ok(name string) {
	s.steps = append(s.steps, domain.SagaStep{Name: name, OK: true})
}

func (s *saga) fail(name string, err error) {
	s.steps = append(s.steps, domain.SagaStep{Name: name, Error: err.Error()})
}

func (s *saga) complete() bool {
	for _, st := range s.steps {
		if !st.OK {
			return false
		}
	}
	return true
}

// Upload runs validate, scan, remove previous, store, then update profile.
// A failed profile update removes the object stored by this call.
func (u *resumeUsecase) Upload(ctx context.Context, userID, clientIP string, file domain.ResumeUpload) (*domain.UploadReport, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	s := &saga{}
	report := func() *domain.UploadReport { return &domain.UploadReport{Steps: s.steps} }

	if rerr := security.ValidateResume(security.ResumeFile{Name: file.Name, Size: file.Size, MIMEType: file.MIMEType}); rerr != nil {
		s.fail(domain.StepValidate, rerr)
		u.audit.LogResumeRejected(ctx, userID, clientIP, string(rerr.Kind), rerr.Message)
		return report(), rerr
	}

	data, err := io.ReadAll(io.LimitReader(file.Content, security.MaxResumeSize+1))
	if err != nil {
		rerr := security.NewResumeError(security.ResumeErrNetwork, "Failed to read the uploaded file. Please try again.", err)
		s.fail(domain.StepValidate, rerr)
		return report(), rerr
	}
	// The declared size is client-supplied; re-check what actually arrived
	if rerr := security.ValidateResume(security.ResumeFile{Name: file.Name, Size: int64(len(data)), MIMEType: file.MIMEType}); rerr != nil {
		s.fail(domain.StepValidate, rerr)
		u.audit.LogResumeRejected(ctx, userID, clientIP, string(rerr.Kind), rerr.Message)
		return report(), rerr
	}
	head := data
	if len(head) > sniffLength {
		head = head[:sniffLength]
	}
	if rerr := security.VerifyResumeContent(file.Name, head); rerr != nil {
		s.fail(domain.StepValidate, rerr)
		u.audit.LogResumeRejected(ctx, userID, clientIP, string(rerr.Kind), rerr.Message)
		return report(), rerr
	}
	s.ok(domain.StepValidate)

	if u.limiter != nil {
		allowed, retryAfter, limErr := u.limiter.AllowUpload(ctx, clientIP, userID)
		if limErr != nil {
			logger.Log.Warn("upload rate limiter degraded", slog.Any("error", limErr))
		}
		if !allowed {
			u.audit.LogRateLimitTriggered(ctx, clientIP, "", "resume_upload")
			return report(), apperror.TooManyRequests(fmt.Sprintf("Too many uploads. Try again in %d seconds.", retryAfter))
		}
	}

	scan := u.scanner.Scan(ctx, file.Name, bytes.NewReader(data))
	if scan.Infected {
		if scan.Error != nil {
			rerr := security.NewResumeError(security.ResumeErrNetwork, "Could not scan the file for viruses. Please try again.", scan.Error)
			s.fail(domain.StepScan, rerr)
			logger.Log.Error("resume scan failed", slog.String("scanner", scan.ScannerName), slog.Any("error", scan.Error))
			return report(), rerr
		}
		rerr := security.NewResumeError(security.ResumeErrFormat, "The file was rejected by the virus scanner.", nil)
		s.fail(domain.StepScan, rerr)
		u.audit.LogMalwareDetected(ctx, userID, clientIP, scan.ThreatName, scan.ScannerName)
		return report(), rerr
	}
	s.ok(domain.StepScan)

	// A leftover object is cheaper than a blocked upload; the step is reported
	if err := u.removeFolder(ctx, userID); err != nil {
		s.fail(domain.StepRemovePrevious, err)
		logger.Log.Warn("failed to remove previous resume", slog.String("user_id", userID), slog.Any("error", err))
	} else {
		s.ok(domain.StepRemovePrevious)
	}

	now := u.now().UTC()
	path := storage.ResumeObjectPath(userID, file.Name, now)
	stored, err := u.store.Upload(ctx, path, bytes.NewReader(data), int64(len(data)), domain.UploadOptions{
		ContentType:  security.ContentTypeFor(file.Name),
		CacheControl: ResumeCacheControl,
		NoOverwrite:  true,
	})
	if err != nil {
		kind := security.ResumeErrUpload
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			kind = security.ResumeErrNetwork
		}
		rerr := security.NewResumeError(kind, "Failed to upload file. Please try again.", err)
		s.fail(domain.StepStoreObject, rerr)
		logger.Log.Error("failed to store resume", slog.String("path", path), slog.Any("error", err))
		return report(), rerr
	}
	s.ok(domain.StepStoreObject)

	url := u.store.PublicURL(stored)
	ref := domain.ResumeRef{URL: url, Filename: file.Name, UploadedAt: now, Size: int64(len(data))}
	if err := u.profiles.SetResume(ctx, userID, ref); err != nil {
		s.fail(domain.StepUpdateProfile, err)

		cleanupCtx := context.WithoutCancel(ctx)
		removeErr := u.store.Remove(cleanupCtx, []string{stored})
		if removeErr != nil {
			s.fail(domain.StepCompensate, removeErr)
			logger.Log.Error("failed to remove orphaned resume", slog.String("path", stored), slog.Any("error", removeErr))
		} else {
			s.ok(domain.StepCompensate)
		}
		u.audit.LogResumeCompensated(ctx, userID, removeErr == nil)

		return report(), security.NewResumeError(security.ResumeErrUpload, messageOf(err), err)
	}
	s.ok(domain.StepUpdateProfile)

	u.audit.LogResumeUploaded(ctx, userID, stored, ref.Size)
	return &domain.UploadReport{
		Path:     stored,
		URL:      url,
		Filename: ref.Filename,
		Size:     ref.Size,
		Steps:    s.steps,
	}, nil
}

func (u *resumeUsecase) removeFolder(ctx context.Context, userID string) error {
	objects, err := u.store.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("list resumes: %w", err)
	}
	if len(objects) == 0 {
		return nil
	}
	paths := make([]string, 0, len(objects))
	for _, o := range objects {
		paths = append(paths, o.Path)
	}
	if err := u.store.Remove(ctx, paths); err != nil {
		return fmt.Errorf("remove resumes: %w", err)
	}
	return nil
}

// Delete never fails the caller: every step runs, and the report says which
// ones did not complete.
func (u *resumeUsecase) Delete(ctx context.Context, userID string) *domain.DeleteReport {
	s := &saga{}
	removed := 0

	profile, err := u.profiles.GetByID(ctx, userID)
	if err != nil {
		s.fail(domain.StepReadProfile, err)
		logger.Log.Warn("resume delete: failed to read profile", slog.String("user_id", userID), slog.Any("error", err))
	} else {
		s.ok(domain.StepReadProfile)
		if profile.ResumeFilename != nil {
			logger.Log.Info("deleting resume", slog.String("user_id", userID), slog.String("filename", *profile.ResumeFilename))
		}
	}

	objects, err := u.store.List(ctx, userID)
	if err != nil {
		s.fail(domain.StepListObjects, err)
		logger.Log.Warn("resume delete: failed to list objects", slog.String("user_id", userID), slog.Any("error", err))
	} else {
		s.ok(domain.StepListObjects)

		paths := make([]string, 0, len(objects))
		for _, o := range objects {
			paths = append(paths, o.Path)
		}
		if len(paths) > 0 {
			if err := u.store.Remove(ctx, paths); err != nil {
				s.fail(domain.StepRemoveObjects, err)
				logger.Log.Warn("resume delete: failed to remove objects", slog.String("user_id", userID), slog.Any("error", err))
			} else {
				removed = len(paths)
				s.ok(domain.StepRemoveObjects)
			}
		} else {
			s.ok(domain.StepRemoveObjects)
		}
	}

	if err := u.profiles.ClearResume(ctx, userID); err != nil {
		s.fail(domain.StepClearProfileField, err)
		logger.Log.Warn("resume delete: failed to clear profile", slog.String("user_id", userID), slog.Any("error", err))
	} else {
		s.ok(domain.StepClearProfileField)
	}

	report := &domain.DeleteReport{RemovedObjects: removed, Complete: s.complete(), Steps: s.steps}
	u.audit.LogResumeDeleted(ctx, userID, removed, report.Complete)
	return report
}

// messageOf returns the user-facing message of err.
func messageOf(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
