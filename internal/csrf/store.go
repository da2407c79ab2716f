package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// tokenBytes gives 256 bits of entropy per token
const tokenBytes = 32

// Store issues and validates per-session anti-forgery tokens. Tokens live in
// an in-memory TTL cache keyed by session ID; a session holds exactly one
// live token at a time.
type Store struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewStore creates a token store whose tokens expire after ttl
func NewStore(ttl time.Duration) *Store {
	return &Store{
		cache: gocache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

// Issue returns the session's current token, generating and storing a new one
// if none exists. Idempotent until Rotate.
func (s *Store) Issue(sessionID string) (string, error) {
	if existing, found := s.cache.Get(sessionID); found {
		return existing.(string), nil
	}
	return s.Rotate(sessionID)
}

// Verify reports whether candidate matches the session's live token.
// Missing session, missing token, or mismatch all yield false; comparison is
// constant-time so the token cannot be guessed byte by byte.
func (s *Store) Verify(sessionID, candidate string) bool {
	if sessionID == "" || candidate == "" {
		return false
	}
	stored, found := s.cache.Get(sessionID)
	if !found {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored.(string)), []byte(candidate)) == 1
}

// Rotate discards the session's token and stores a fresh one. Called after a
// successful submission so the spent token cannot be replayed.
func (s *Store) Rotate(sessionID string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	s.cache.SetDefault(sessionID, token)
	return token, nil
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate anti-forgery token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
