package forms

import (
	"fmt"

	"github.com/togetherwethrive/enquiry-api/internal/models"
	"github.com/togetherwethrive/enquiry-api/pkg/mailer"
)

const metaTimeLayout = "2006-01-02 15:04:05"

// ComposeEnquiry turns a validated enquiry into a transport-ready message.
// Deterministic: same input, same message. The IP/timestamp block at the
// bottom exists for spam forensics and is never validated.
func ComposeEnquiry(v *models.ValidatedEnquiry, meta models.RequestMeta) *mailer.Message {
	body := fmt.Sprintf(
		"NEW CONTACT ENQUIRY\n\n"+
			"Name: %s\n"+
			"Email: %s\n"+
			"Preferred Service: %s\n\n"+
			"Message:\n%s\n\n"+
			"IP: %s\n"+
			"Time (UTC): %s\n",
		v.Name, v.Email, v.Service, v.Message,
		clientIP(meta), meta.ReceivedAt.UTC().Format(metaTimeLayout),
	)

	return &mailer.Message{
		ReplyTo: mailer.Address{Name: v.Name, Email: v.Email},
		Subject: fmt.Sprintf("New Contact Enquiry: %s (%s)", v.Name, v.Service),
		Body:    body,
	}
}

// ComposeReferral turns a validated referral into a transport-ready message.
// Replies go to the referrer, not the participant.
func ComposeReferral(v *models.ValidatedReferral, meta models.RequestMeta) *mailer.Message {
	body := fmt.Sprintf(
		"NEW REFERRAL\n\n"+
			"Referrer:\n"+
			"Name: %s\n"+
			"Email: %s\n"+
			"Phone: %s\n\n"+
			"Participant:\n"+
			"Name: %s\n"+
			"Phone: %s\n"+
			"Email: %s\n\n"+
			"Support Needed:\n%s\n\n"+
			"Notes:\n%s\n\n"+
			"IP: %s\n"+
			"Time (UTC): %s\n",
		v.ReferrerName, v.ReferrerEmail, v.ReferrerPhone,
		v.ParticipantName, v.ParticipantPhone, v.ParticipantEmail,
		v.ReferralType, v.Message,
		clientIP(meta), meta.ReceivedAt.UTC().Format(metaTimeLayout),
	)

	return &mailer.Message{
		ReplyTo: mailer.Address{Name: v.ReferrerName, Email: v.ReferrerEmail},
		Subject: fmt.Sprintf("New Referral - %s", v.ParticipantName),
		Body:    body,
	}
}

func clientIP(meta models.RequestMeta) string {
	if meta.ClientIP == "" {
		return "unknown"
	}
	return meta.ClientIP
}
