package models

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StoredCookie is the persisted form of an upstream session cookie.
type StoredCookie struct {
	Name    string    `json:"name" yaml:"name"`
	Value   string    `json:"value" yaml:"value"`
	Path    string    `json:"path,omitempty" yaml:"path,omitempty"`
	Domain  string    `json:"domain,omitempty" yaml:"domain,omitempty"`
	Expires time.Time `json:"expires,omitempty" yaml:"expires,omitempty"`
}

// Session ties an operator to the cookies the timetable backend issued at
// login.
type Session struct {
	Key       string         `json:"key" yaml:"key"`
	Username  string         `json:"username" yaml:"username"`
	Cookies   []StoredCookie `json:"cookies" yaml:"cookies"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
	ExpiresAt time.Time      `json:"expires_at" yaml:"expires_at"`
}

// Expired reports whether the session is past its expiry. A zero expiry
// never expires.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// HTTPCookies converts the stored cookies for an outgoing request.
func (s *Session) HTTPCookies() []*http.Cookie {
	if s == nil {
		return nil
	}
	cookies := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path, Domain: c.Domain, Expires: c.Expires})
	}
	return cookies
}

// StoreCookies converts response cookies into their persisted form, dropping
// deletions.
func StoreCookies(cookies []*http.Cookie) []StoredCookie {
	stored := make([]StoredCookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil || c.MaxAge < 0 || c.Value == "" {
			continue
		}
		stored = append(stored, StoredCookie{Name: c.Name, Value: c.Value, Path: c.Path, Domain: c.Domain, Expires: c.Expires})
	}
	return stored
}

// ConsoleClaims is the payload of the signed web console session cookie.
type ConsoleClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}
