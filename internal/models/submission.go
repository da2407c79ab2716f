package models

import "time"

// FormKind identifies which of the two public forms a submission came from
type FormKind string

const (
	FormEnquiry  FormKind = "enquiry"
	FormReferral FormKind = "referral"
)

// EnquiryRequest is the raw, untrusted payload of the contact form.
// Company is the honeypot: it is hidden on the real page, so any value in it
// marks an automated submitter.
type EnquiryRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Service        string `json:"service"`
	Message        string `json:"message"`
	CSRF           string `json:"csrf"`
	TurnstileToken string `json:"turnstileToken"`
	Company        string `json:"company"`
}

// ReferralRequest is the raw, untrusted payload of the referral form
type ReferralRequest struct {
	ReferrerName     string `json:"referrerName"`
	ReferrerEmail    string `json:"referrerEmail"`
	ReferrerPhone    string `json:"referrerPhone"`
	ParticipantName  string `json:"participantName"`
	ParticipantPhone string `json:"participantPhone"`
	ParticipantEmail string `json:"participantEmail"`
	ReferralType     string `json:"referralType"`
	Message          string `json:"message"`
	Consent          bool   `json:"consent"`
	CSRF             string `json:"csrf"`
	TurnstileToken   string `json:"turnstileToken"`
	Company          string `json:"company"`
}

// ValidatedEnquiry holds trimmed, rule-checked enquiry fields.
// Constructed only by the validator; treat as immutable.
type ValidatedEnquiry struct {
	Name    string
	Email   string
	Service string
	Message string
}

// ValidatedReferral holds trimmed, rule-checked referral fields
type ValidatedReferral struct {
	ReferrerName     string
	ReferrerEmail    string
	ReferrerPhone    string
	ParticipantName  string
	ParticipantPhone string
	ParticipantEmail string
	ReferralType     string
	Message          string
}

// RequestMeta carries per-request audit data included in the mail body.
// Informational only, never validated.
type RequestMeta struct {
	ClientIP   string
	ReceivedAt time.Time
}

// RejectionClass buckets why a submission was turned away
type RejectionClass string

const (
	RejectionSecurity   RejectionClass = "security"
	RejectionValidation RejectionClass = "validation"
	RejectionDelivery   RejectionClass = "delivery"
)

// SubmissionResult is the only thing the pipeline reports outward.
// A tripped honeypot is reported as accepted on purpose: bots are told they
// succeeded so they have nothing to probe against.
type SubmissionResult struct {
	Accepted bool
	Class    RejectionClass
	Errors   []string
}

// Accept returns the successful result
func Accept() *SubmissionResult {
	return &SubmissionResult{Accepted: true}
}

// Reject returns a failed result with the given class and messages
func Reject(class RejectionClass, errs ...string) *SubmissionResult {
	return &SubmissionResult{Class: class, Errors: errs}
}

// SubmitResponse is the success body returned to the client
type SubmitResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is the failure body returned to the client
type ErrorResponse struct {
	Errors []string `json:"errors"`
}

// TokenResponse is the body of the token issuance endpoint
type TokenResponse struct {
	CSRF string `json:"csrf"`
}
