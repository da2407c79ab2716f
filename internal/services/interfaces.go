package services

import (
	"context"

	"github.com/togetherwethrive/enquiry-api/internal/models"
	"github.com/togetherwethrive/enquiry-api/pkg/turnstile"
)

// SubmissionServiceInterface defines the guarded submission pipeline
type SubmissionServiceInterface interface {
	SubmitEnquiry(ctx context.Context, sessionID string, req *models.EnquiryRequest, meta models.RequestMeta) *models.SubmissionResult
	SubmitReferral(ctx context.Context, sessionID string, req *models.ReferralRequest, meta models.RequestMeta) *models.SubmissionResult
}

// TokenStore issues and validates per-session anti-forgery tokens
type TokenStore interface {
	Issue(sessionID string) (string, error)
	Verify(sessionID, candidate string) bool
	Rotate(sessionID string) (string, error)
}

// BotVerifier checks a client-supplied proof token with the external
// anti-automation service
type BotVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) turnstile.Outcome
}

// Ensure services implement their interfaces
var _ SubmissionServiceInterface = (*SubmissionService)(nil)
