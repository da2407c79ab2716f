package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/togetherwethrive/enquiry-api/internal/middleware"
	"github.com/togetherwethrive/enquiry-api/internal/models"
	"github.com/togetherwethrive/enquiry-api/internal/services"
)

type SubmissionHandler struct {
	service services.SubmissionServiceInterface
}

func NewSubmissionHandler(service services.SubmissionServiceInterface) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// SubmitEnquiry handles the public contact form
func (h *SubmissionHandler) SubmitEnquiry(c *gin.Context) {
	var req models.EnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// A malformed body is an empty submission, not a fatal error; the
		// pipeline's own checks will reject it
		req = models.EnquiryRequest{}
	}

	result := h.service.SubmitEnquiry(c.Request.Context(), middleware.SessionID(c), &req, requestMeta(c))
	writeResult(c, result)
}

// SubmitReferral handles the public referral form
func (h *SubmissionHandler) SubmitReferral(c *gin.Context) {
	var req models.ReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = models.ReferralRequest{}
	}

	result := h.service.SubmitReferral(c.Request.Context(), middleware.SessionID(c), &req, requestMeta(c))
	writeResult(c, result)
}

func requestMeta(c *gin.Context) models.RequestMeta {
	return models.RequestMeta{
		ClientIP:   c.ClientIP(),
		ReceivedAt: time.Now().UTC(),
	}
}

func writeResult(c *gin.Context, result *models.SubmissionResult) {
	if result.Accepted {
		c.JSON(http.StatusOK, models.SubmitResponse{OK: true})
		return
	}

	status := http.StatusBadRequest
	if result.Class == models.RejectionDelivery {
		status = http.StatusInternalServerError
	}
	c.JSON(status, models.ErrorResponse{Errors: result.Errors})
}
