package security

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

// Resume size and name bounds
const (
	MinResumeSize       = 1 << 10 // 1 KiB; anything smaller is treated as corrupt
	MaxResumeSize       = 5 << 20 // 5 MiB
	MaxResumeNameLength = 100
)

// ForbiddenNameChars are rejected anywhere in a resume file name.
const ForbiddenNameChars = `<>:"/\|?*`

// ResumeErrorKind classifies a rejected resume upload.
type ResumeErrorKind string

const (
	ResumeErrSize    ResumeErrorKind = "size"
	ResumeErrFormat  ResumeErrorKind = "format"
	ResumeErrName    ResumeErrorKind = "name"
	ResumeErrUpload  ResumeErrorKind = "upload"
	ResumeErrNetwork ResumeErrorKind = "network"
)

// ResumeError is surfaced verbatim to the user.
type ResumeError struct {
	Kind    ResumeErrorKind `json:"kind"`
	Message string          `json:"message"`
	Err     error           `json:"-"`
}

func (e *ResumeError) Error() string {
	return e.Message
}

func (e *ResumeError) Unwrap() error {
	return e.Err
}

func NewResumeError(kind ResumeErrorKind, message string, err error) *ResumeError {
	return &ResumeError{Kind: kind, Message: message, Err: err}
}

// Accepted resume MIME types keyed to the extensions they may carry.
var resumeMIMETypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

var resumeExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// ResumeFile is the metadata a client declares for a candidate file.
type ResumeFile struct {
	Name     string
	Size     int64
	MIMEType string
}

// ValidateResume checks size, declared type and file name. It is pure: the
// same input always yields the same answer, and no content is read.
func ValidateResume(f ResumeFile) *ResumeError {
	if f.Size > MaxResumeSize {
		return NewResumeError(ResumeErrSize, "File is too large. Maximum size is 5MB.", nil)
	}
	if f.Size < MinResumeSize {
		return NewResumeError(ResumeErrSize, "File is too small and may be corrupted. Minimum size is 1KB.", nil)
	}

	mimeType := normalizeMIME(f.MIMEType)
	ext := strings.ToLower(filepath.Ext(f.Name))
	if !resumeMIMETypes[mimeType] || !resumeExtensions[ext] {
		return NewResumeError(ResumeErrFormat, "Invalid file format. Please upload a PDF, DOC, or DOCX file.", nil)
	}

	if utf8.RuneCountInString(f.Name) > MaxResumeNameLength {
		return NewResumeError(ResumeErrName, fmt.Sprintf("File name is too long. Maximum %d characters.", MaxResumeNameLength), nil)
	}
	if strings.ContainsAny(f.Name, ForbiddenNameChars) {
		return NewResumeError(ResumeErrName, `File name contains invalid characters (< > : " / \ | ? *).`, nil)
	}

	return nil
}

// Magic byte signatures for resume formats
var resumeMagicBytes = map[string][]byte{
	".pdf":  {0x25, 0x50, 0x44, 0x46},                         // %PDF
	".doc":  {0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, // OLE Compound Document
	".docx": {0x50, 0x4B, 0x03, 0x04},                         // ZIP (PK..)
}

// VerifyResumeContent checks that the leading bytes of the file agree with
// its extension, guarding against a renamed executable with a spoofed type.
// head should hold at least the first 512 bytes when available.
func VerifyResumeContent(filename string, head []byte) *ResumeError {
	ext := strings.ToLower(filepath.Ext(filename))
	sig, ok := resumeMagicBytes[ext]
	if !ok || !bytes.HasPrefix(head, sig) {
		return NewResumeError(ResumeErrFormat, "File content does not match its extension.", nil)
	}

	detected := mimetype.Detect(head)
	switch ext {
	case ".pdf":
		if !detected.Is("application/pdf") {
			return NewResumeError(ResumeErrFormat, "File content is not a valid PDF.", nil)
		}
	case ".docx":
		// A truncated head often sniffs as a plain zip; anything else is wrong
		if !detected.Is("application/zip") && !detected.Is(docxMIME) {
			return NewResumeError(ResumeErrFormat, "File content is not a valid DOCX document.", nil)
		}
	}
	return nil
}

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ContentTypeFor returns the canonical MIME type for an accepted extension.
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return docxMIME
	}
	return "application/octet-stream"
}

func normalizeMIME(m string) string {
	m = strings.ToLower(strings.TrimSpace(m))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	return m
}
