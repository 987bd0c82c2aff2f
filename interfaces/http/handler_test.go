package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"subtitle-credit/domain/apperror"
	"subtitle-credit/domain/dto"
	"subtitle-credit/domain/model"
	httpHandler "subtitle-credit/interfaces/http"
	"subtitle-credit/interfaces/middleware"
)

var alice = model.Identity{UserID: "user-1", Email: "alice@example.com"}

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
}

type MockVideoUsecase struct {
	mock.Mock
}

func (m *MockVideoUsecase) Estimate(ctx context.Context, identity model.Identity, req dto.ReqEstimate) (dto.ResEstimate, error) {
	args := m.Called(ctx, identity, req)
	return args.Get(0).(dto.ResEstimate), args.Error(1)
}

func (m *MockVideoUsecase) Accept(ctx context.Context, identity model.Identity, token string) (dto.ResAccept, error) {
	args := m.Called(ctx, identity, token)
	return args.Get(0).(dto.ResAccept), args.Error(1)
}

func (m *MockVideoUsecase) ListJobs(ctx context.Context, identity model.Identity, status string) ([]dto.JobSummary, error) {
	args := m.Called(ctx, identity, status)
	return args.Get(0).([]dto.JobSummary), args.Error(1)
}

func (m *MockVideoUsecase) GetJob(ctx context.Context, identity model.Identity, jobID string) (model.VideoJob, error) {
	args := m.Called(ctx, identity, jobID)
	return args.Get(0).(model.VideoJob), args.Error(1)
}

func (m *MockVideoUsecase) CompleteJob(ctx context.Context, jobID string, req dto.ReqJobCallback) error {
	args := m.Called(ctx, jobID, req)
	return args.Error(0)
}

type MockPaymentUsecase struct {
	mock.Mock
}

func (m *MockPaymentUsecase) Bundles() []model.CreditPackage {
	return model.CreditPackages()
}

func (m *MockPaymentUsecase) Balance(ctx context.Context, identity model.Identity) (dto.ResBalance, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(dto.ResBalance), args.Error(1)
}

func (m *MockPaymentUsecase) Initiate(ctx context.Context, identity model.Identity, credits int) (dto.ResInitiatePayment, error) {
	args := m.Called(ctx, identity, credits)
	return args.Get(0).(dto.ResInitiatePayment), args.Error(1)
}

func (m *MockPaymentUsecase) GetStatus(ctx context.Context, identity model.Identity, reference string) (model.Payment, error) {
	args := m.Called(ctx, identity, reference)
	return args.Get(0).(model.Payment), args.Error(1)
}

func (m *MockPaymentUsecase) List(ctx context.Context, identity model.Identity) ([]model.Payment, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).([]model.Payment), args.Error(1)
}

func (m *MockPaymentUsecase) Reconcile(ctx context.Context, rawBody []byte, signature string) error {
	args := m.Called(ctx, rawBody, signature)
	return args.Error(0)
}

// asCaller stands in for middleware.Auth.
func asCaller(identity model.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, identity.UserID)
		c.Set(middleware.ContextEmail, identity.Email)
	}
}

func serve(r *gin.Engine, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func statusOf(t *testing.T, w *httptest.ResponseRecorder) dto.Res {
	t.Helper()
	var res dto.Res
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func videoRouter(uc *MockVideoUsecase) *gin.Engine {
	h := httpHandler.NewVideoHandler(uc)
	r := gin.New()
	api := r.Group("/api", asCaller(alice))
	api.POST("/videos/estimate", h.Estimate)
	api.POST("/videos/accept", h.Accept)
	api.GET("/videos/jobs", h.ListJobs)
	api.GET("/videos/jobs/:jobId", h.GetJob)
	return r
}

func TestVideoHandler_Estimate(t *testing.T) {
	uc := new(MockVideoUsecase)
	uc.On("Estimate", mock.Anything, alice, mock.MatchedBy(func(req dto.ReqEstimate) bool {
		return req.VideoURL == "https://cdn.example.com/a.mp4" && req.SubtitleType == model.SubtitleMerge &&
			req.TranslationLanguage == "Spanish" && req.CustomizationOptions != nil
	})).Return(dto.ResEstimate{CreditEstimate: decimal.RequireFromString("22.5"), Token: "tok"}, nil).Once()

	w := serve(videoRouter(uc), http.MethodPost, "/api/videos/estimate",
		`{"video_url":"https://cdn.example.com/a.mp4","file_name":"a.mp4","subtitle_type":"merge","translation_language":"Spanish","customization_options":{"fontName":"Arial"}}`, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		StatusCode int             `json:"status_code"`
		Data       dto.ResEstimate `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, "tok", res.Data.Token)
	assert.True(t, res.Data.CreditEstimate.Equal(decimal.RequireFromString("22.50")))
	uc.AssertExpectations(t)
}

func TestVideoHandler_Estimate_InvalidBody(t *testing.T) {
	uc := new(MockVideoUsecase)

	w := serve(videoRouter(uc), http.MethodPost, "/api/videos/estimate",
		`{"video_url":"ftp://cdn.example.com/a.txt","file_name":"a.mp4","subtitle_type":"merge"}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 400, statusOf(t, w).StatusCode)
	uc.AssertNotCalled(t, "Estimate", mock.Anything, mock.Anything, mock.Anything)
}

func TestVideoHandler_Accept(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"accepted", `{"token":"tok"}`, nil, http.StatusOK},
		{"missing token", `{}`, nil, http.StatusBadRequest},
		{"insufficient credits", `{"token":"tok"}`, apperror.InsufficientFunds("insufficient credits"), http.StatusPaymentRequired},
		{"tampered", `{"token":"tok"}`, apperror.TamperDetected("estimate was tampered with"), http.StatusBadRequest},
		{"replayed", `{"token":"tok"}`, apperror.Conflict("estimate already used"), http.StatusConflict},
		{"expired", `{"token":"tok"}`, apperror.Unauthorized("estimate token expired"), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockVideoUsecase)
			uc.On("Accept", mock.Anything, alice, "tok").
				Return(dto.ResAccept{Message: "Video job accepted and processing started", JobID: "JOB-1"}, tt.err).Maybe()

			w := serve(videoRouter(uc), http.MethodPost, "/api/videos/accept", tt.body, nil)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.status, statusOf(t, w).StatusCode)
		})
	}
}

func TestVideoHandler_Jobs(t *testing.T) {
	uc := new(MockVideoUsecase)
	uc.On("ListJobs", mock.Anything, alice, "active").Return([]dto.JobSummary{{JobID: "JOB-1"}}, nil).Once()
	uc.On("ListJobs", mock.Anything, alice, "bogus").Return([]dto.JobSummary(nil), apperror.Validation("invalid status filter")).Once()
	uc.On("GetJob", mock.Anything, alice, "JOB-2").Return(model.VideoJob{}, apperror.NotFound("job not found")).Once()
	r := videoRouter(uc)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/videos/jobs?status=active", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/api/videos/jobs?status=bogus", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/videos/jobs/JOB-2", "", nil).Code)
	uc.AssertExpectations(t)
}

func paymentRouter(uc *MockPaymentUsecase) *gin.Engine {
	h := httpHandler.NewPaymentHandler(uc)
	r := gin.New()
	r.GET("/api/credits/bundles", h.Bundles)
	api := r.Group("/api", asCaller(alice))
	api.GET("/credits", h.Balance)
	api.POST("/payments", h.Initiate)
	api.GET("/payments", h.List)
	api.GET("/payments/:reference", h.GetStatus)
	return r
}

func TestPaymentHandler(t *testing.T) {
	uc := new(MockPaymentUsecase)
	uc.On("Balance", mock.Anything, alice).Return(dto.ResBalance{UserID: "user-1", Credits: decimal.NewFromInt(3)}, nil).Once()
	uc.On("Initiate", mock.Anything, alice, 500).Return(dto.ResInitiatePayment{Reference: "ref-1"}, nil).Once()
	uc.On("Initiate", mock.Anything, alice, 7).Return(dto.ResInitiatePayment{}, apperror.Validation("invalid credit amount selected")).Once()
	uc.On("List", mock.Anything, alice).Return([]model.Payment{}, nil).Once()
	uc.On("GetStatus", mock.Anything, alice, "ref-x").Return(model.Payment{}, apperror.NotFound("payment not found")).Once()
	r := paymentRouter(uc)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/credits/bundles", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/credits", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/api/payments", `{"credits":500}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/api/payments", `{"credits":7}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/api/payments", `{"credits":"lots"}`, nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/payments", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/payments/ref-x", "", nil).Code)
	uc.AssertExpectations(t)
}

func webhookRouter(payments *MockPaymentUsecase, videos *MockVideoUsecase) *gin.Engine {
	h := httpHandler.NewWebhookHandler(payments, videos, "callback-key")
	r := gin.New()
	r.POST("/webhook/paystack", h.Paystack)
	r.POST("/webhook/jobs/:jobId", h.JobCallback)
	return r
}

func TestWebhookHandler_Paystack(t *testing.T) {
	body := `{"event":"charge.success","data":{"reference":"ref-1"}}`
	payments := new(MockPaymentUsecase)
	payments.On("Reconcile", mock.Anything, []byte(body), "abc123").Return(nil).Once()
	payments.On("Reconcile", mock.Anything, []byte(body), "").Return(apperror.Unauthorized("missing signature")).Once()
	r := webhookRouter(payments, new(MockVideoUsecase))

	w := serve(r, http.MethodPost, "/webhook/paystack", body, map[string]string{httpHandler.HeaderPaystackSignature: "abc123"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPost, "/webhook/paystack", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "missing signature", statusOf(t, w).Message)
	payments.AssertExpectations(t)
}

func TestWebhookHandler_JobCallback(t *testing.T) {
	videos := new(MockVideoUsecase)
	videos.On("CompleteJob", mock.Anything, "JOB-1", dto.ReqJobCallback{Status: model.JobFailed, Message: "ffmpeg crashed"}).Return(nil).Once()
	videos.On("CompleteJob", mock.Anything, "JOB-9", mock.Anything).Return(errors.New("mongo down")).Once()
	r := webhookRouter(new(MockPaymentUsecase), videos)
	key := map[string]string{httpHandler.HeaderCallbackKey: "callback-key"}

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/webhook/jobs/JOB-1", `{"status":"failed","message":"ffmpeg crashed"}`, key).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/webhook/jobs/JOB-1", `{"status":"failed"}`, map[string]string{httpHandler.HeaderCallbackKey: "guess"}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/webhook/jobs/JOB-1", `{"status":"failed"}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/webhook/jobs/JOB-1", `{"status":"waiting"}`, key).Code)
	w := serve(r, http.MethodPost, "/webhook/jobs/JOB-9", `{"status":"completed"}`, key)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", statusOf(t, w).Message)
	videos.AssertExpectations(t)
}

func TestHealthHandler(t *testing.T) {
	healthy := httpHandler.NewHealthHandler(map[string]httpHandler.Pinger{
		"postgres": func(context.Context) error { return nil },
	})
	r := gin.New()
	r.GET("/healthz", healthy.Healthz)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/healthz", "", nil).Code)

	degraded := httpHandler.NewHealthHandler(map[string]httpHandler.Pinger{
		"postgres": func(context.Context) error { return nil },
		"mongo":    func(context.Context) error { return errors.New("server selection timeout") },
	})
	r = gin.New()
	r.GET("/healthz", degraded.Healthz)
	w := serve(r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"mongo":"server selection timeout"`)
}
