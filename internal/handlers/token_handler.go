package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/togetherwethrive/enquiry-api/internal/middleware"
	"github.com/togetherwethrive/enquiry-api/internal/models"
	"github.com/togetherwethrive/enquiry-api/internal/services"
	"github.com/togetherwethrive/enquiry-api/pkg/logger"
	"github.com/togetherwethrive/enquiry-api/pkg/metrics"
)

type TokenHandler struct {
	store services.TokenStore
}

func NewTokenHandler(store services.TokenStore) *TokenHandler {
	return &TokenHandler{store: store}
}

// IssueToken returns the session's anti-forgery token, minting one if the
// session doesn't have one yet
func (h *TokenHandler) IssueToken(c *gin.Context) {
	token, err := h.store.Issue(middleware.SessionID(c))
	if err != nil {
		logger.Error("Failed to issue anti-forgery token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Errors: []string{"Something went wrong. Please try again."},
		})
		return
	}

	metrics.CSRFTokensIssued.Inc()
	c.JSON(http.StatusOK, models.TokenResponse{CSRF: token})
}
