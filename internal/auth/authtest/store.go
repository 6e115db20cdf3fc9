// Package authtest provides in-memory test doubles for the credential
// service's collaborators: a UserStore backed by a map and a Notifier
// that records the tokens it was asked to deliver.  Service, handler
// and middleware tests share these instead of each rolling their own.
package authtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campuslink/campuslink/internal/auth"
	"github.com/campuslink/campuslink/internal/model"
)

// MemStore is an in-memory auth.UserStore.  All methods copy records on
// the way in and out so tests cannot accidentally mutate stored state,
// and a mutex gives it the per-record atomicity the contract requires.
type MemStore struct {
	mu    sync.Mutex
	users map[string]*model.User // keyed by id
}

func NewMemStore() *MemStore {
	return &MemStore{users: make(map[string]*model.User)}
}

func (s *MemStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return auth.ErrEmailExists
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemStore) GetByEmail(_ context.Context, email string, withPasswordHash bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			if !withPasswordHash {
				cp.PasswordHash = ""
			}
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemStore) GetByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	cp.PasswordHash = ""
	return &cp, nil
}

func (s *MemStore) UpdateProfile(_ context.Context, id, displayName, bio string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	u.DisplayName = displayName
	u.Bio = bio
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	cp.PasswordHash = ""
	return &cp, nil
}

func (s *MemStore) SetResetDigest(_ context.Context, id, digest string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	u.ResetDigest = digest
	exp := expiresAt
	u.ResetExpiresAt = &exp
	return nil
}

func (s *MemStore) RedeemResetDigest(_ context.Context, digest, newPasswordHash string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ResetDigest == digest && digest != "" && u.ResetExpiresAt != nil && u.ResetExpiresAt.After(now) {
			u.PasswordHash = newPasswordHash
			u.ResetDigest = ""
			u.ResetExpiresAt = nil
			u.UpdatedAt = now
			return true, nil
		}
	}
	return false, nil
}

func (s *MemStore) RedeemVerifyDigest(_ context.Context, digest string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.VerifyDigest == digest && digest != "" {
			u.IsEmailVerified = true
			u.VerifyDigest = ""
			u.UpdatedAt = time.Now().UTC()
			return true, nil
		}
	}
	return false, nil
}

func (s *MemStore) List(_ context.Context) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		cp.PasswordHash = ""
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete removes a record, simulating an account deleted after a
// session token was issued for it.
func (s *MemStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// Raw returns the stored record without masking, for asserting on
// digests and hashes.
func (s *MemStore) Raw(id string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

// SentToken is one token the notifier was asked to deliver.
type SentToken struct {
	Kind  string
	Email string
	Token string
}

// RecordingNotifier implements auth.Notifier by remembering every token
// handed to it.  Set Err to simulate a broker outage.
type RecordingNotifier struct {
	mu   sync.Mutex
	Sent []SentToken
	Err  error
}

func (n *RecordingNotifier) VerificationRequested(_ context.Context, email, _, rawToken string) error {
	return n.record("email_verification", email, rawToken)
}

func (n *RecordingNotifier) PasswordResetRequested(_ context.Context, email, _, rawToken string) error {
	return n.record("password_reset", email, rawToken)
}

func (n *RecordingNotifier) record(kind, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Sent = append(n.Sent, SentToken{Kind: kind, Email: email, Token: token})
	return nil
}

// LastToken returns the most recently delivered token of the given
// kind, or "" when none was sent.
func (n *RecordingNotifier) LastToken(kind string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.Sent) - 1; i >= 0; i-- {
		if n.Sent[i].Kind == kind {
			return n.Sent[i].Token
		}
	}
	return ""
}
