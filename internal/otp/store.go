package otp

import (
	"strings"
	"sync"
	"time"

	"github.com/quicktalk/quicktalk/pkg/helpers"
)

type entry struct {
	code      string
	expiresAt time.Time
}

// Store tracks single-use, time-limited verification codes keyed by
// email. At most one live code exists per address; issuing again
// supersedes the previous one. All state lives in the store's own map;
// expiry is checked lazily on consume, no background sweep.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Issue generates a random 6-digit code for the address and stores it
// with expiry now+TTL, overwriting any prior live code. The caller is
// responsible for delivering the returned code.
func (s *Store) Issue(email string) (string, error) {
	code, err := helpers.GenOTPCode()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.entries[normalize(email)] = entry{code: code, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return code, nil
}

// Consume checks the submitted code for the address. It returns false
// when no code exists, the code expired (the entry is dropped), or the
// code does not match. On an exact match the entry is removed before
// returning true, so a code can never be used twice. Check and removal
// happen under one lock.
func (s *Store) Consume(email, code string) bool {
	key := normalize(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, key)
		return false
	}
	if e.code != code {
		return false
	}
	delete(s.entries, key)
	return true
}

// Live reports whether a non-expired code currently exists for the
// address, without consuming it.
func (s *Store) Live(email string) bool {
	key := normalize(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	return ok && !time.Now().After(e.expiresAt)
}
