package httpapi

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/nikolayk812/rentals/internal/domain"
)

// Authenticator resolves the caller of a request.
type Authenticator interface {
	Authenticate(r *http.Request) (domain.Principal, error)
}

// StaticTokens authenticates bearer tokens against a fixed table.
type StaticTokens struct {
	tokens map[string]domain.Principal
}

func NewStaticTokens(tokens map[string]domain.Principal) *StaticTokens {
	return &StaticTokens{tokens: tokens}
}

func (s *StaticTokens) Authenticate(r *http.Request) (domain.Principal, error) {
	header := r.Header.Get("Authorization")

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return domain.Principal{}, fmt.Errorf("missing bearer token: %w", domain.ErrUnauthorized)
	}
	token = strings.TrimSpace(token)

	for known, principal := range s.tokens {
		if subtle.ConstantTimeCompare([]byte(known), []byte(token)) == 1 {
			return principal, nil
		}
	}

	return domain.Principal{}, fmt.Errorf("unknown bearer token: %w", domain.ErrUnauthorized)
}
