package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"go-jobboard-backend/config"
	v1 "go-jobboard-backend/internal/delivery/http/v1"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/realtime"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/security"
	"go-jobboard-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const candidateID = "11111111-1111-1111-1111-111111111111"

type fixture struct {
	router   *gin.Engine
	notes    *MockNotificationUsecase
	profiles *MockProfileUsecase
	resumes  *MockResumeUsecase
}

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Error     json.RawMessage `json:"error"`
	RequestID string          `json:"request_id"`
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		notes:    new(MockNotificationUsecase),
		profiles: new(MockProfileUsecase),
		resumes:  new(MockResumeUsecase),
	}
	f.router = v1.NewRouter(v1.RouterDeps{
		AuthUC:         stubAuth{},
		NotificationUC: f.notes,
		ProfileUC:      f.profiles,
		ResumeUC:       f.resumes,
		HealthUC: usecase.NewHealthUsecase(map[string]usecase.Pinger{
			"database": usecase.PingFunc(func(context.Context) error { return nil }),
		}),
		Config: &config.Config{
			FrontendURL:              "https://app.example.com",
			NotificationListLimit:    50,
			RateLimitWindowSeconds:   60,
			RateLimitGlobalThreshold: 1000,
			Environment:              "test",
		},
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	w, env := f.do(t, http.MethodGet, "/v1/health", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), env.RequestID)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture(t)

	w, env := f.do(t, http.MethodGet, "/v1/notifications", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	w, _ = f.do(t, http.MethodGet, "/v1/notifications", "forged", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	f := newFixture(t)

	var me struct {
		UserID     string  `json:"user_id"`
		Role       string  `json:"role"`
		CanPublish bool    `json:"can_publish"`
		CreatedAt  *string `json:"created_at"`
	}

	w, env := f.do(t, http.MethodGet, "/v1/auth/me", "candidate-token", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, candidateID, me.UserID)
	assert.Equal(t, domain.RoleCandidate, me.Role)
	assert.False(t, me.CanPublish)
	assert.Nil(t, me.CreatedAt, "no users row yet")

	w, env = f.do(t, http.MethodGet, "/v1/auth/me", "admin-token", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, domain.RoleAdmin, me.Role)
	assert.True(t, me.CanPublish)
	assert.NotNil(t, me.CreatedAt)
}

func TestNotificationHandler(t *testing.T) {
	t.Run("List reports a degraded read", func(t *testing.T) {
		f := newFixture(t)
		f.notes.On("List", mock.Anything, candidateID, 0).Return(domain.ListResult{Items: []domain.Notification{}, Degraded: true})

		w, env := f.do(t, http.MethodGet, "/v1/notifications", "candidate-token", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var result domain.ListResult
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.True(t, result.Degraded)
		assert.Empty(t, result.Items)
	})

	t.Run("List rejects a bad limit", func(t *testing.T) {
		f := newFixture(t)
		w, _ := f.do(t, http.MethodGet, "/v1/notifications?limit=abc", "candidate-token", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.notes.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MarkRead maps not found", func(t *testing.T) {
		f := newFixture(t)
		f.notes.On("MarkRead", mock.Anything, candidateID, "n-404").Return(apperror.NotFound("Notification not found"))

		w, env := f.do(t, http.MethodPatch, "/v1/notifications/n-404/read", "candidate-token", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Notification not found", env.Message)
	})

	t.Run("MarkAllRead returns the flipped count", func(t *testing.T) {
		f := newFixture(t)
		f.notes.On("MarkAllRead", mock.Anything, candidateID).Return(int64(3), nil)

		w, env := f.do(t, http.MethodPost, "/v1/notifications/read-all", "candidate-token", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"updated":3}`, string(env.Data))
	})

	t.Run("DeleteMany validates ids", func(t *testing.T) {
		f := newFixture(t)
		w, _ := f.do(t, http.MethodPost, "/v1/notifications/delete", "candidate-token",
			jsonBody(t, map[string]interface{}{"ids": []string{}}), "application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		ids := []string{"aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa", "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"}
		f.notes.On("DeleteMany", mock.Anything, candidateID, ids).Return(int64(2), nil)
		w, env := f.do(t, http.MethodPost, "/v1/notifications/delete", "candidate-token",
			jsonBody(t, map[string]interface{}{"ids": ids}), "application/json")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"deleted":2}`, string(env.Data))
	})

	t.Run("Create is limited to publishing roles", func(t *testing.T) {
		f := newFixture(t)
		input := domain.CreateNotificationInput{UserID: candidateID, Title: "New match", Message: "A job fits you", Type: domain.NotificationJobAlert}

		w, _ := f.do(t, http.MethodPost, "/v1/notifications", "candidate-token", jsonBody(t, input), "application/json")
		assert.Equal(t, http.StatusForbidden, w.Code)

		f.notes.On("Create", mock.Anything, input).Return(&domain.Notification{ID: "n1", UserID: candidateID, Title: input.Title, Type: input.Type}, nil)
		w, env := f.do(t, http.MethodPost, "/v1/notifications", "admin-token", jsonBody(t, input), "application/json")
		require.Equal(t, http.StatusCreated, w.Code)

		var n domain.Notification
		require.NoError(t, json.Unmarshal(env.Data, &n))
		assert.Equal(t, "n1", n.ID)
	})
}

// untouchedRepo fails the request if any storage method is reached.
type untouchedRepo struct {
	domain.NotificationRepository
}

func TestNotificationHandler_MalformedID(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewNotificationUsecase(untouchedRepo{}, nil, realtime.NewMemoryFeed(), nil, nil, validation.New(), 50)
	f.router = v1.NewRouter(v1.RouterDeps{
		AuthUC:         stubAuth{},
		NotificationUC: uc,
		ProfileUC:      f.profiles,
		ResumeUC:       f.resumes,
		HealthUC:       usecase.NewHealthUsecase(nil),
		Config: &config.Config{
			FrontendURL:              "https://app.example.com",
			NotificationListLimit:    50,
			RateLimitWindowSeconds:   60,
			RateLimitGlobalThreshold: 1000,
			Environment:              "test",
		},
	})

	w, env := f.do(t, http.MethodPatch, "/v1/notifications/abc/read", "candidate-token", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Notification not found", env.Message)

	w, _ = f.do(t, http.MethodDelete, "/v1/notifications/abc", "candidate-token", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileHandler(t *testing.T) {
	name := "Ana"
	profile := &domain.Profile{ID: candidateID, FullName: &name}

	t.Run("Update applies fields and reports success", func(t *testing.T) {
		f := newFixture(t)
		f.profiles.On("Get", mock.Anything, candidateID).Return(profile, nil)
		f.profiles.On("Save", mock.Anything, candidateID, mock.MatchedBy(func(e domain.ProfileEdit) bool {
			return e.Headline != nil && *e.Headline == "Go engineer" && e.FullName != nil && *e.FullName == "Ana"
		})).Return(profile, nil)

		w, env := f.do(t, http.MethodPut, "/v1/profiles/me", "candidate-token",
			jsonBody(t, map[string]interface{}{"headline": "Go engineer"}), "application/json")
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Status struct {
				Kind string `json:"kind"`
			} `json:"status"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &body))
		assert.Equal(t, "success", body.Status.Kind)
	})

	t.Run("Update rejects resume fields", func(t *testing.T) {
		f := newFixture(t)
		f.profiles.On("Get", mock.Anything, candidateID).Return(profile, nil)

		w, _ := f.do(t, http.MethodPut, "/v1/profiles/me", "candidate-token",
			jsonBody(t, map[string]interface{}{"resume_url": "https://evil.example.com/cv.pdf"}), "application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.profiles.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Update surfaces the save error message", func(t *testing.T) {
		f := newFixture(t)
		f.profiles.On("Get", mock.Anything, candidateID).Return(profile, nil)
		f.profiles.On("Save", mock.Anything, candidateID, mock.Anything).Return(nil, apperror.BadRequest("Desired minimum salary cannot exceed the maximum"))

		w, env := f.do(t, http.MethodPut, "/v1/profiles/me", "candidate-token",
			jsonBody(t, map[string]interface{}{"desired_salary_min": 9000, "desired_salary_max": 10}), "application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Desired minimum salary cannot exceed the maximum", env.Message)
	})
}

func TestResumeHandler(t *testing.T) {
	content := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 2048)...)

	multipartBody := func(t *testing.T, filename, mimeType string) (io.Reader, string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		h.Set("Content-Type", mimeType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		return &buf, mw.FormDataContentType()
	}

	t.Run("Upload passes the file to the flow", func(t *testing.T) {
		f := newFixture(t)
		f.resumes.On("Upload", mock.Anything, candidateID, mock.Anything, mock.MatchedBy(func(u domain.ResumeUpload) bool {
			return u.Name == "cv.pdf" && u.MIMEType == "application/pdf" && u.Size == int64(len(content))
		})).Return(&domain.UploadReport{Path: candidateID + "/1_cv.pdf", Filename: "cv.pdf"}, nil)

		body, ct := multipartBody(t, "cv.pdf", "application/pdf")
		w, env := f.do(t, http.MethodPost, "/v1/profiles/me/resume", "candidate-token", body, ct)
		require.Equal(t, http.StatusOK, w.Code)

		var report domain.UploadReport
		require.NoError(t, json.Unmarshal(env.Data, &report))
		assert.Equal(t, "cv.pdf", report.Filename)
	})

	t.Run("Upload renders the resume error kind", func(t *testing.T) {
		f := newFixture(t)
		f.resumes.On("Upload", mock.Anything, candidateID, mock.Anything, mock.Anything).
			Return(nil, security.NewResumeError(security.ResumeErrFormat, "Invalid file format. Please upload a PDF, DOC, or DOCX file.", nil))

		body, ct := multipartBody(t, "cv.pdf", "application/pdf")
		w, env := f.do(t, http.MethodPost, "/v1/profiles/me/resume", "candidate-token", body, ct)
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
		assert.JSONEq(t, `{"kind":"format"}`, string(env.Error))
	})

	t.Run("Upload without a file is a bad request", func(t *testing.T) {
		f := newFixture(t)
		w, _ := f.do(t, http.MethodPost, "/v1/profiles/me/resume", "candidate-token", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Delete returns 200 with a partial report", func(t *testing.T) {
		f := newFixture(t)
		f.resumes.On("Delete", mock.Anything, candidateID).Return(&domain.DeleteReport{
			Complete: false,
			Steps: []domain.SagaStep{
				{Name: domain.StepReadProfile, OK: true},
				{Name: domain.StepListObjects, Error: "bucket unreachable"},
				{Name: domain.StepClearProfileField, OK: true},
			},
		})

		w, env := f.do(t, http.MethodDelete, "/v1/profiles/me/resume", "candidate-token", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)

		var report domain.DeleteReport
		require.NoError(t, json.Unmarshal(env.Data, &report))
		assert.False(t, report.Complete)
		assert.Equal(t, "bucket unreachable", report.Steps[1].Error)
	})

	t.Run("Validate checks metadata only", func(t *testing.T) {
		f := newFixture(t)

		w, env := f.do(t, http.MethodPost, "/v1/profiles/me/resume/validate", "candidate-token",
			jsonBody(t, map[string]interface{}{"name": "notes.txt", "size": 4096, "mime_type": "text/plain"}), "application/json")
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
		assert.JSONEq(t, `{"kind":"format"}`, string(env.Error))

		w, _ = f.do(t, http.MethodPost, "/v1/profiles/me/resume/validate", "candidate-token",
			jsonBody(t, map[string]interface{}{"name": "cv.pdf", "size": 4096, "mime_type": "application/pdf"}), "application/json")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
