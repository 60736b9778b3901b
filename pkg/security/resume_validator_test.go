package security

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateResume(t *testing.T) {
	tests := []struct {
		name string
		file ResumeFile
		want ResumeErrorKind
	}{
		{"valid pdf", ResumeFile{Name: "cv.pdf", Size: 200 << 10, MIMEType: "application/pdf"}, ""},
		{"valid docx", ResumeFile{Name: "CV.DOCX", Size: 2 << 20, MIMEType: docxMIME}, ""},
		{"mime with parameters", ResumeFile{Name: "cv.doc", Size: 4096, MIMEType: "application/msword; charset=binary"}, ""},
		{"too large", ResumeFile{Name: "cv.pdf", Size: 6 << 20, MIMEType: "application/pdf"}, ResumeErrSize},
		{"exactly max", ResumeFile{Name: "cv.pdf", Size: MaxResumeSize, MIMEType: "application/pdf"}, ""},
		{"too small", ResumeFile{Name: "cv.pdf", Size: 500, MIMEType: "application/pdf"}, ResumeErrSize},
		{"text file", ResumeFile{Name: "cv.txt", Size: 4096, MIMEType: "text/plain"}, ResumeErrFormat},
		{"pdf mime with wrong extension", ResumeFile{Name: "cv.exe", Size: 4096, MIMEType: "application/pdf"}, ResumeErrFormat},
		{"forbidden character", ResumeFile{Name: "cv?.pdf", Size: 4096, MIMEType: "application/pdf"}, ResumeErrName},
		{"name too long", ResumeFile{Name: strings.Repeat("a", 101) + ".pdf", Size: 4096, MIMEType: "application/pdf"}, ResumeErrName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateResume(tt.file)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Kind)
			assert.NotEmpty(t, got.Message)
		})
	}
}

func TestValidateResumeChecksSizeFirst(t *testing.T) {
	got := ValidateResume(ResumeFile{Name: "bad?.txt", Size: 10 << 20, MIMEType: "text/plain"})
	require.NotNil(t, got)
	assert.Equal(t, ResumeErrSize, got.Kind)
}

func TestVerifyResumeContent(t *testing.T) {
	pdf := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{'x'}, 600)...)
	zipHead := append([]byte{0x50, 0x4B, 0x03, 0x04}, bytes.Repeat([]byte{0}, 100)...)
	ole := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, bytes.Repeat([]byte{0}, 100)...)

	assert.Nil(t, VerifyResumeContent("cv.pdf", pdf))
	assert.Nil(t, VerifyResumeContent("cv.docx", zipHead))
	assert.Nil(t, VerifyResumeContent("cv.doc", ole))

	err := VerifyResumeContent("cv.pdf", []byte("MZ\x90\x00 this is an executable"))
	require.NotNil(t, err)
	assert.Equal(t, ResumeErrFormat, err.Kind)

	err = VerifyResumeContent("cv.docx", pdf)
	require.NotNil(t, err)
	assert.Equal(t, ResumeErrFormat, err.Kind)
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentTypeFor("a.PDF"))
	assert.Equal(t, "application/msword", ContentTypeFor("a.doc"))
	assert.Equal(t, docxMIME, ContentTypeFor("a.docx"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("a.bin"))
}
