package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CookieName is the name of the session cookie.
const CookieName = "stupidbookmarks_session"

var ErrSessionInvalid = errors.New("invalid session")

// Sessions keeps the tokens of logged in users in memory. Sessions expire
// after the TTL and the least recently used are dropped once the store is
// full; a restart logs everybody out.
type Sessions struct {
	store  *expirable.LRU[string, int64]
	ttl    time.Duration
	secure bool
}

// NewSessions returns a store holding at most size sessions for ttl each.
// secure marks cookies as HTTPS only.
func NewSessions(size int, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{
		store:  expirable.NewLRU[string, int64](size, nil, ttl),
		ttl:    ttl,
		secure: secure,
	}
}

// Create starts a session for the user and returns its cookie value,
// "<user id>:<token>".
func (s *Sessions) Create(userID int64) (string, error) {
	token, err := randomToken(32)
	if err != nil {
		return "", err
	}

	s.store.Add(token, userID)

	return strconv.FormatInt(userID, 10) + ":" + token, nil
}

// Lookup returns the user of a cookie value.
func (s *Sessions) Lookup(value string) (int64, error) {
	id, token, ok := strings.Cut(value, ":")
	if !ok || token == "" {
		return 0, ErrSessionInvalid
	}

	userID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, ErrSessionInvalid
	}

	stored, ok := s.store.Get(token)
	if !ok || stored != userID {
		return 0, ErrSessionInvalid
	}

	return userID, nil
}

// Delete ends the session of a cookie value.
func (s *Sessions) Delete(value string) {
	if _, token, ok := strings.Cut(value, ":"); ok {
		s.store.Remove(token)
	}
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	return s.store.Len()
}

// Cookie returns the cookie carrying value.
func (s *Sessions) Cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie returns a cookie that removes the session cookie.
func (s *Sessions) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
