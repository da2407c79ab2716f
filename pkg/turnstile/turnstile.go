package turnstile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/togetherwethrive/enquiry-api/pkg/httpclient"
)

// VerifyURL is Cloudflare's Turnstile siteverify endpoint
const VerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Response represents the response from Cloudflare's siteverify API
type Response struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Outcome is the verdict of a verification attempt. Missing is set when no
// proof token was supplied, so the caller can tell "verification required"
// apart from "verification failed".
type Outcome struct {
	OK      bool
	Missing bool
}

// Verifier checks Turnstile proof tokens against Cloudflare.
// Any transport error, non-2xx status, or malformed body counts as a failed
// verification: an unreachable verifier must reject, never wave through.
type Verifier struct {
	secretKey  string
	httpClient httpclient.Client
	verifyURL  string
}

// NewVerifier creates a new Turnstile verifier
func NewVerifier(secretKey string, httpClient httpclient.Client) *Verifier {
	return &Verifier{
		secretKey:  secretKey,
		httpClient: httpClient,
		verifyURL:  VerifyURL,
	}
}

// Verify checks a proof token with Cloudflare. An empty token short-circuits
// without a network call. Never returns an error; the verdict is the Outcome.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) Outcome {
	if strings.TrimSpace(token) == "" {
		return Outcome{Missing: true}
	}

	data := url.Values{}
	data.Set("secret", v.secretKey)
	data.Set("response", token)
	data.Set("remoteip", remoteIP)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(data.Encode()))
	if err != nil {
		return Outcome{}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return Outcome{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Outcome{}
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Outcome{}
	}

	return Outcome{OK: result.Success}
}
