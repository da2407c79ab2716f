package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/togetherwethrive/enquiry-api/internal/csrf"
	"github.com/togetherwethrive/enquiry-api/internal/handlers"
	"github.com/togetherwethrive/enquiry-api/internal/models"
)

func TestTokenHandler_IssueToken(t *testing.T) {
	store := csrf.NewStore(time.Hour)
	handler := handlers.NewTokenHandler(store)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(withSession("sess-1"))
	router.GET("/csrf", handler.IssueToken)

	get := func() models.TokenResponse {
		req := httptest.NewRequest("GET", "/csrf", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

		var resp models.TokenResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	first := get()
	assert.Len(t, first.CSRF, 64)
	assert.True(t, store.Verify("sess-1", first.CSRF))

	// Re-requesting the token does not rotate it
	second := get()
	assert.Equal(t, first.CSRF, second.CSRF)
}
