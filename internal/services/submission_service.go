package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/togetherwethrive/enquiry-api/internal/forms"
	"github.com/togetherwethrive/enquiry-api/internal/models"
	"github.com/togetherwethrive/enquiry-api/pkg/logger"
	"github.com/togetherwethrive/enquiry-api/pkg/mailer"
	"github.com/togetherwethrive/enquiry-api/pkg/metrics"
)

// User-facing messages. Security rejections stay generic on purpose: the
// client learns the category, never which check tripped.
const (
	msgCSRFInvalid    = "Security token invalid. Please refresh the page."
	msgCheckRequired  = "Please complete the security check."
	msgCheckFailed    = "Security verification failed. Please try again."
	msgDeliveryFailed = "Message failed to send. Please try again later."
)

// SubmissionService runs the guarded pipeline shared by both forms:
// honeypot, CSRF, bot verification, validation, compose, dispatch, rotate.
// The step order is fixed; the cheap checks run first so automated abuse is
// turned away before the verifier call or the SMTP dialogue.
type SubmissionService struct {
	tokens     TokenStore
	verifier   BotVerifier
	dispatcher mailer.Dispatcher
}

// NewSubmissionService creates a new submission service instance
func NewSubmissionService(tokens TokenStore, verifier BotVerifier, dispatcher mailer.Dispatcher) *SubmissionService {
	return &SubmissionService{
		tokens:     tokens,
		verifier:   verifier,
		dispatcher: dispatcher,
	}
}

// SubmitEnquiry runs the pipeline for a contact enquiry
func (s *SubmissionService) SubmitEnquiry(ctx context.Context, sessionID string, req *models.EnquiryRequest, meta models.RequestMeta) *models.SubmissionResult {
	return s.process(ctx, sessionID, meta, models.FormEnquiry, req.Company, req.CSRF, req.TurnstileToken,
		func() (*mailer.Message, []string) {
			v, problems := forms.ValidateEnquiry(req)
			if len(problems) > 0 {
				return nil, problems
			}
			return forms.ComposeEnquiry(v, meta), nil
		})
}

// SubmitReferral runs the pipeline for a referral submission
func (s *SubmissionService) SubmitReferral(ctx context.Context, sessionID string, req *models.ReferralRequest, meta models.RequestMeta) *models.SubmissionResult {
	return s.process(ctx, sessionID, meta, models.FormReferral, req.Company, req.CSRF, req.TurnstileToken,
		func() (*mailer.Message, []string) {
			v, problems := forms.ValidateReferral(req)
			if len(problems) > 0 {
				return nil, problems
			}
			return forms.ComposeReferral(v, meta), nil
		})
}

// process is the shared state machine. The build closure is the kind-specific
// validate+compose step; everything else is identical for both forms.
func (s *SubmissionService) process(
	ctx context.Context,
	sessionID string,
	meta models.RequestMeta,
	form models.FormKind,
	honeypot, csrfToken, proofToken string,
	build func() (*mailer.Message, []string),
) *models.SubmissionResult {

	// Honeypot: tell the bot it succeeded and stop. Nothing is composed or
	// sent; the metrics label is the only trace.
	if honeypot != "" {
		metrics.SubmissionOutcomes.WithLabelValues(string(form), "honeypot").Inc()
		logger.Info("Honeypot tripped, dropping submission",
			zap.String("form", string(form)),
			zap.String("client_ip", meta.ClientIP))
		return models.Accept()
	}

	// CSRF: missing candidate, missing session token, or mismatch all land here
	if !s.tokens.Verify(sessionID, csrfToken) {
		metrics.SubmissionOutcomes.WithLabelValues(string(form), "csrf_rejected").Inc()
		logger.Warn("Anti-forgery check failed",
			zap.String("form", string(form)),
			zap.String("client_ip", meta.ClientIP))
		return models.Reject(models.RejectionSecurity, msgCSRFInvalid)
	}

	// Bot verification: fail closed
	outcome := s.verifier.Verify(ctx, proofToken, meta.ClientIP)
	if outcome.Missing {
		metrics.TurnstileVerifications.WithLabelValues("missing").Inc()
		metrics.SubmissionOutcomes.WithLabelValues(string(form), "turnstile_rejected").Inc()
		return models.Reject(models.RejectionSecurity, msgCheckRequired)
	}
	if !outcome.OK {
		metrics.TurnstileVerifications.WithLabelValues("failed").Inc()
		metrics.SubmissionOutcomes.WithLabelValues(string(form), "turnstile_rejected").Inc()
		logger.Warn("Turnstile verification failed",
			zap.String("form", string(form)),
			zap.String("client_ip", meta.ClientIP))
		return models.Reject(models.RejectionSecurity, msgCheckFailed)
	}
	metrics.TurnstileVerifications.WithLabelValues("ok").Inc()

	// Validate and compose
	msg, problems := build()
	if len(problems) > 0 {
		metrics.SubmissionOutcomes.WithLabelValues(string(form), "validation_rejected").Inc()
		return models.Reject(models.RejectionValidation, problems...)
	}

	// Dispatch: one attempt, no retry. The transport error stays server-side.
	start := time.Now()
	if err := s.dispatcher.Send(ctx, msg); err != nil {
		metrics.MailDispatchDuration.WithLabelValues("error").Observe(metrics.MeasureDuration(start))
		metrics.MailDispatchTotal.WithLabelValues("error").Inc()
		metrics.SubmissionOutcomes.WithLabelValues(string(form), "delivery_failed").Inc()
		logger.Error("Failed to dispatch notification mail",
			zap.Error(err),
			zap.String("form", string(form)),
			zap.String("subject", msg.Subject))
		return models.Reject(models.RejectionDelivery, msgDeliveryFailed)
	}
	metrics.MailDispatchDuration.WithLabelValues("ok").Observe(metrics.MeasureDuration(start))
	metrics.MailDispatchTotal.WithLabelValues("ok").Inc()

	// Rotate only after a confirmed send so an abandoned request cannot leave
	// the session with a rotated-but-unconfirmed token
	if _, err := s.tokens.Rotate(sessionID); err != nil {
		logger.Error("Failed to rotate anti-forgery token", zap.Error(err))
	}

	metrics.SubmissionOutcomes.WithLabelValues(string(form), "accepted").Inc()
	logger.Info("Submission accepted",
		zap.String("form", string(form)),
		zap.String("client_ip", meta.ClientIP))
	return models.Accept()
}
