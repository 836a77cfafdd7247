package middleware

import (
	"net/http"
	"strings"
)

// minTokenLength is the shortest candidate worth handing to the token codec.
const minTokenLength = 20

// Extractor returns a candidate token from r, or "" when its carrier is absent.
type Extractor func(r *http.Request) string

// FromCookie reads the candidate from the named cookie.
func FromCookie(name string) Extractor {
	return func(r *http.Request) string {
		c, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return c.Value
	}
}

// FromBearer reads the candidate from an "Authorization: Bearer <token>" header.
func FromBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// CredentialChain tries its extractors in order; the first non-empty candidate wins.
type CredentialChain []Extractor

// Extract returns the first candidate and whether any carrier supplied one.
func (c CredentialChain) Extract(r *http.Request) (string, bool) {
	for _, extract := range c {
		if token := extract(r); token != "" {
			return token, true
		}
	}
	return "", false
}

// Plausible rejects candidates that cannot be a signed token without verifying them.
func Plausible(token string) bool {
	switch token {
	case "", "undefined", "null":
		return false
	}
	return len(token) >= minTokenLength && strings.Contains(token, ".")
}
