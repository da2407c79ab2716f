package mailer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/togetherwethrive/enquiry-api/pkg/mailer"
)

func TestAddress_String(t *testing.T) {
	assert.Equal(t, "Jane Doe <jane@example.com>",
		mailer.Address{Name: "Jane Doe", Email: "jane@example.com"}.String())
	assert.Equal(t, "jane@example.com",
		mailer.Address{Email: "jane@example.com"}.String())
}

func TestBuildMIME(t *testing.T) {
	from := mailer.Address{Name: "Together We Thrive", Email: "no-reply@twt.net.au"}
	msg := &mailer.Message{
		ReplyTo: mailer.Address{Name: "Jane Doe", Email: "jane@example.com"},
		Subject: "New Contact Enquiry: Jane Doe (In-Home Support)",
		Body:    "NEW CONTACT ENQUIRY\n\nName: Jane Doe\n",
	}

	raw := string(mailer.BuildMIME(from, "info@twt.net.au", msg))

	headers, body, found := strings.Cut(raw, "\r\n\r\n")
	assert.True(t, found)

	assert.Contains(t, headers, "From: Together We Thrive <no-reply@twt.net.au>\r\n")
	assert.Contains(t, headers, "To: info@twt.net.au\r\n")
	assert.Contains(t, headers, "Reply-To: Jane Doe <jane@example.com>\r\n")
	assert.Contains(t, headers, "Subject: New Contact Enquiry: Jane Doe (In-Home Support)\r\n")
	assert.Contains(t, headers, "Content-Type: text/plain; charset=UTF-8")

	assert.Equal(t, msg.Body, body)
}

func TestBuildMIME_StripsNewlinesFromHeaders(t *testing.T) {
	from := mailer.Address{Name: "Together We Thrive", Email: "no-reply@twt.net.au"}
	msg := &mailer.Message{
		ReplyTo: mailer.Address{Name: "Jane\r\nBcc: attacker@evil.example", Email: "jane@example.com"},
		Subject: "New Contact Enquiry: Jane\r\nBcc: attacker@evil.example (Not sure)",
		Body:    "hello",
	}

	raw := string(mailer.BuildMIME(from, "info@twt.net.au", msg))

	headers, body, found := strings.Cut(raw, "\r\n\r\n")
	assert.True(t, found)
	assert.Equal(t, "hello", body)

	// The CRLF is gone, so the smuggled Bcc stays inside the existing header
	// values instead of becoming a header line of its own
	for _, line := range strings.Split(headers, "\r\n") {
		assert.False(t, strings.HasPrefix(line, "Bcc:"), "injected header line: %q", line)
	}
	assert.Contains(t, headers, "Reply-To: JaneBcc: attacker@evil.example <jane@example.com>\r\n")
	assert.Contains(t, headers, "Subject: New Contact Enquiry: JaneBcc: attacker@evil.example (Not sure)")
}
