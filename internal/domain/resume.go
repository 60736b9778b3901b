package domain

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectExists is returned by ObjectStore.Upload when NoOverwrite is set
// and the path is already taken.
var ErrObjectExists = errors.New("object already exists")

// UploadOptions controls how an object is written.
type UploadOptions struct {
	ContentType  string
	CacheControl string
	NoOverwrite  bool
}

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ObjectStore is the folder-scoped binary storage used for resumes.
type ObjectStore interface {
	Upload(ctx context.Context, path string, body io.Reader, size int64, opts UploadOptions) (string, error)
	PublicURL(path string) string
	List(ctx context.Context, folder string) ([]ObjectInfo, error)
	Remove(ctx context.Context, paths []string) error
}

// ResumeUpload is a candidate file handed to the upload flow.
type ResumeUpload struct {
	Name     string
	Size     int64
	MIMEType string
	Content  io.Reader
}

// Saga step names recorded in upload/delete reports
const (
	StepValidate          = "validate"
	StepScan              = "scan"
	StepRemovePrevious    = "remove_previous"
	StepStoreObject       = "store_object"
	StepUpdateProfile     = "update_profile"
	StepCompensate        = "compensate"
	StepReadProfile       = "read_profile"
	StepListObjects       = "list_objects"
	StepRemoveObjects     = "remove_objects"
	StepClearProfileField = "clear_profile"
)

// SagaStep records the outcome of one step of a multi-step resume operation.
type SagaStep struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// UploadReport is returned by a successful or compensated upload.
type UploadReport struct {
	Path     string     `json:"path,omitempty"`
	URL      string     `json:"url,omitempty"`
	Filename string     `json:"filename,omitempty"`
	Size     int64      `json:"size,omitempty"`
	Steps    []SagaStep `json:"steps"`
}

// DeleteReport lists every step of a resume delete. Complete is false if
// any step failed; the caller still receives a successful response.
type DeleteReport struct {
	RemovedObjects int        `json:"removed_objects"`
	Complete       bool       `json:"complete"`
	Steps          []SagaStep `json:"steps"`
}

type ResumeUsecase interface {
	Upload(ctx context.Context, userID, clientIP string, file ResumeUpload) (*UploadReport, error)
	Delete(ctx context.Context, userID string) *DeleteReport
}
