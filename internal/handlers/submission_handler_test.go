package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/togetherwethrive/enquiry-api/internal/csrf"
	"github.com/togetherwethrive/enquiry-api/internal/handlers"
	"github.com/togetherwethrive/enquiry-api/internal/middleware"
	"github.com/togetherwethrive/enquiry-api/internal/models"
	"github.com/togetherwethrive/enquiry-api/internal/services"
	"github.com/togetherwethrive/enquiry-api/pkg/mailer"
	"github.com/togetherwethrive/enquiry-api/pkg/turnstile"
)

// MockSubmissionService implements services.SubmissionServiceInterface
type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) SubmitEnquiry(ctx context.Context, sessionID string, req *models.EnquiryRequest, meta models.RequestMeta) *models.SubmissionResult {
	args := m.Called(ctx, sessionID, req, meta)
	return args.Get(0).(*models.SubmissionResult)
}

func (m *MockSubmissionService) SubmitReferral(ctx context.Context, sessionID string, req *models.ReferralRequest, meta models.RequestMeta) *models.SubmissionResult {
	args := m.Called(ctx, sessionID, req, meta)
	return args.Get(0).(*models.SubmissionResult)
}

// MockBotVerifier implements services.BotVerifier
type MockBotVerifier struct {
	mock.Mock
}

func (m *MockBotVerifier) Verify(ctx context.Context, token, remoteIP string) turnstile.Outcome {
	args := m.Called(ctx, token, remoteIP)
	return args.Get(0).(turnstile.Outcome)
}

// MockDispatcher implements mailer.Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Send(ctx context.Context, msg *mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func withSession(sessionID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.SessionIDKey, sessionID)
		c.Next()
	}
}

func newRouter(handler *handlers.SubmissionHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(withSession("sess-1"))
	router.POST("/contact", handler.SubmitEnquiry)
	router.POST("/referral", handler.SubmitReferral)
	return router
}

func postJSON(router *gin.Engine, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmissionHandler_SubmitEnquiry_Accepted(t *testing.T) {
	mockService := new(MockSubmissionService)
	router := newRouter(handlers.NewSubmissionHandler(mockService))

	mockService.On("SubmitEnquiry", mock.Anything, "sess-1", mock.MatchedBy(func(req *models.EnquiryRequest) bool {
		return req.Name == "Jane Doe" && req.Email == "jane@example.com"
	}), mock.Anything).Return(models.Accept())

	body, _ := json.Marshal(models.EnquiryRequest{
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		Message:        "Hello",
		CSRF:           "token",
		TurnstileToken: "proof",
	})
	w := postJSON(router, "/contact", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok": true}`, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestSubmissionHandler_SubmitEnquiry_ValidationRejected(t *testing.T) {
	mockService := new(MockSubmissionService)
	router := newRouter(handlers.NewSubmissionHandler(mockService))

	mockService.On("SubmitEnquiry", mock.Anything, "sess-1", mock.Anything, mock.Anything).
		Return(models.Reject(models.RejectionValidation, "Please enter your name.", "Please enter a message."))

	w := postJSON(router, "/contact", []byte(`{"email":"jane@example.com"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Please enter your name.", "Please enter a message."}, resp.Errors)
}

func TestSubmissionHandler_SubmitEnquiry_DeliveryFailureIs500(t *testing.T) {
	mockService := new(MockSubmissionService)
	router := newRouter(handlers.NewSubmissionHandler(mockService))

	mockService.On("SubmitEnquiry", mock.Anything, "sess-1", mock.Anything, mock.Anything).
		Return(models.Reject(models.RejectionDelivery, "Message failed to send. Please try again later."))

	w := postJSON(router, "/contact", []byte(`{"name":"Jane"}`))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"errors": ["Message failed to send. Please try again later."]}`, w.Body.String())
}

func TestSubmissionHandler_MalformedJSONTreatedAsEmptySubmission(t *testing.T) {
	mockService := new(MockSubmissionService)
	router := newRouter(handlers.NewSubmissionHandler(mockService))

	// The pipeline still runs; it receives a zero-valued request
	mockService.On("SubmitEnquiry", mock.Anything, "sess-1", mock.MatchedBy(func(req *models.EnquiryRequest) bool {
		return *req == models.EnquiryRequest{}
	}), mock.Anything).Return(models.Reject(models.RejectionSecurity, "Security token invalid. Please refresh the page."))

	w := postJSON(router, "/contact", []byte(`{invalid-json`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

func TestSubmissionHandler_SubmitReferral_Accepted(t *testing.T) {
	mockService := new(MockSubmissionService)
	router := newRouter(handlers.NewSubmissionHandler(mockService))

	mockService.On("SubmitReferral", mock.Anything, "sess-1", mock.MatchedBy(func(req *models.ReferralRequest) bool {
		return req.ParticipantName == "Alex Smith" && req.Consent
	}), mock.Anything).Return(models.Accept())

	body, _ := json.Marshal(models.ReferralRequest{
		ReferrerName:     "John Smith",
		ReferrerEmail:    "john@example.com",
		ParticipantName:  "Alex Smith",
		ParticipantPhone: "0400 111 111",
		Message:          "Alex needs support.",
		Consent:          true,
		CSRF:             "token",
		TurnstileToken:   "proof",
	})
	w := postJSON(router, "/referral", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok": true}`, w.Body.String())
}

// TestSubmissionHandler_EnquiryRoundTrip exercises the real pipeline end to
// end: real token store, real validator and composer, mocked verifier and
// relay. Exactly one message is dispatched and its body carries every field.
func TestSubmissionHandler_EnquiryRoundTrip(t *testing.T) {
	store := csrf.NewStore(time.Hour)
	token, err := store.Issue("sess-1")
	assert.NoError(t, err)

	verifier := new(MockBotVerifier)
	verifier.On("Verify", mock.Anything, "valid-proof", mock.Anything).Return(turnstile.Outcome{OK: true}).Once()

	dispatcher := new(MockDispatcher)
	dispatcher.On("Send", mock.Anything, mock.MatchedBy(func(msg *mailer.Message) bool {
		for _, want := range []string{"Jane Doe", "jane@example.com", "In-Home Support", "Need help with routines."} {
			if !bytes.Contains([]byte(msg.Body), []byte(want)) {
				return false
			}
		}
		return true
	})).Return(nil).Once()

	service := services.NewSubmissionService(store, verifier, dispatcher)
	router := newRouter(handlers.NewSubmissionHandler(service))

	body, _ := json.Marshal(models.EnquiryRequest{
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		Service:        "In-Home Support",
		Message:        "Need help with routines.",
		CSRF:           token,
		TurnstileToken: "valid-proof",
		Company:        "",
	})
	w := postJSON(router, "/contact", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok": true}`, w.Body.String())
	dispatcher.AssertNumberOfCalls(t, "Send", 1)

	// The token rotated: the spent one no longer verifies
	assert.False(t, store.Verify("sess-1", token))
}

// TestSubmissionHandler_HoneypotRoundTrip: a tripped honeypot looks exactly
// like success on the wire, and nothing is sent
func TestSubmissionHandler_HoneypotRoundTrip(t *testing.T) {
	store := csrf.NewStore(time.Hour)
	verifier := new(MockBotVerifier)
	dispatcher := new(MockDispatcher)

	service := services.NewSubmissionService(store, verifier, dispatcher)
	router := newRouter(handlers.NewSubmissionHandler(service))

	w := postJSON(router, "/contact", []byte(`{"company":"Spam Inc"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok": true}`, w.Body.String())
	dispatcher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
}
