package forms

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/togetherwethrive/enquiry-api/internal/models"
)

// defaultService is used when the submitter leaves the service/support-type
// field blank
const defaultService = "Not sure"

var validate = validator.New()

// clean trims a raw field; absent fields arrive as empty strings already
func clean(v string) string {
	return strings.TrimSpace(v)
}

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// ValidateEnquiry sanitizes and checks a raw enquiry. All violated rules are
// collected so the caller can report every problem at once; the messages are
// written for end users.
func ValidateEnquiry(req *models.EnquiryRequest) (*models.ValidatedEnquiry, []string) {
	v := &models.ValidatedEnquiry{
		Name:    clean(req.Name),
		Email:   clean(req.Email),
		Service: clean(req.Service),
		Message: clean(req.Message),
	}
	if v.Service == "" {
		v.Service = defaultService
	}

	var problems []string
	if v.Name == "" {
		problems = append(problems, "Please enter your name.")
	}
	if !validEmail(v.Email) {
		problems = append(problems, "Please enter a valid email address.")
	}
	if v.Message == "" {
		problems = append(problems, "Please enter a message.")
	}

	if len(problems) > 0 {
		return nil, problems
	}
	return v, nil
}

// ValidateReferral sanitizes and checks a raw referral. Participant contact
// needs at least one of phone or email, and the consent flag must be
// explicitly true.
func ValidateReferral(req *models.ReferralRequest) (*models.ValidatedReferral, []string) {
	v := &models.ValidatedReferral{
		ReferrerName:     clean(req.ReferrerName),
		ReferrerEmail:    clean(req.ReferrerEmail),
		ReferrerPhone:    clean(req.ReferrerPhone),
		ParticipantName:  clean(req.ParticipantName),
		ParticipantPhone: clean(req.ParticipantPhone),
		ParticipantEmail: clean(req.ParticipantEmail),
		ReferralType:     clean(req.ReferralType),
		Message:          clean(req.Message),
	}
	if v.ReferralType == "" {
		v.ReferralType = defaultService
	}

	var problems []string
	if v.ReferrerName == "" {
		problems = append(problems, "Your name is required.")
	}
	if !validEmail(v.ReferrerEmail) {
		problems = append(problems, "A valid email address is required.")
	}
	if v.ParticipantName == "" {
		problems = append(problems, "Participant name is required.")
	}
	if v.ParticipantPhone == "" && v.ParticipantEmail == "" {
		problems = append(problems, "Participant phone or email is required.")
	}
	if v.ParticipantEmail != "" && !validEmail(v.ParticipantEmail) {
		problems = append(problems, "Participant email must be a valid email address.")
	}
	if v.Message == "" {
		problems = append(problems, "Message is required.")
	}
	if !req.Consent {
		problems = append(problems, "Consent must be confirmed.")
	}

	if len(problems) > 0 {
		return nil, problems
	}
	return v, nil
}
