// Package auth implements signup, login, bearer-token authentication, and
// logout on top of the security primitives and the session store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cinereserve/backend/internal/audit"
	"cinereserve/backend/internal/security"
	"cinereserve/backend/internal/session"
	"cinereserve/backend/internal/user/domain"
	userrepo "cinereserve/backend/internal/user/repository"
)

// CredentialRepo is the slice of the user repository the auth service
// needs. Lookups return (nil, nil) when nothing is found.
type CredentialRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
}

// Grant is what a successful signup or login hands back to the caller.
type Grant struct {
	SubjectID int64
	Username  string
	Name      string
	Token     string
	ExpiresIn time.Duration
}

// Identity is the authenticated caller resolved from a bearer token. The
// subject id comes from the session record, not from token claims.
type Identity struct {
	SubjectID int64
	Username  string
	Name      string
}

const (
	minPasswordLen = 8
	maxPasswordLen = 256
	maxUsernameLen = 64
)

// Service is the auth application service.
type Service struct {
	users    CredentialRepo
	hasher   *security.Hasher
	codec    *security.Codec
	sessions *session.Store
	ttl      time.Duration
	audit    *audit.Logger
	log      *zap.Logger
	nowF     func() time.Time
}

// NewService wires the auth service. auditLog may be nil; now nil means
// time.Now. ttl is the lifetime of issued tokens and their sessions.
func NewService(users CredentialRepo, hasher *security.Hasher, codec *security.Codec,
	sessions *session.Store, ttl time.Duration, auditLog *audit.Logger,
	log *zap.Logger, now func() time.Time) *Service {
	if auditLog == nil {
		auditLog = audit.NewLogger(nil, nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		users:    users,
		hasher:   hasher,
		codec:    codec,
		sessions: sessions,
		ttl:      ttl,
		audit:    auditLog,
		log:      log,
		nowF:     now,
	}
}

// Signup registers a new credential and logs the subject straight in.
// Returns ErrDuplicateSubject when the username is already taken.
func (s *Service) Signup(ctx context.Context, username, password, name string) (*Grant, error) {
	if err := validateSignup(username, password); err != nil {
		return nil, err
	}

	// Fast path only: rejects an obvious duplicate before paying for the
	// key derivation. The race-free duplicate check is Create's.
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateSubject
	}

	hash, salt, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		PasswordSalt: salt,
		CreatedAt:    s.nowF().UTC(),
	}
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignupInput, err)
	}
	created, err := s.users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, userrepo.ErrDuplicateUsername) {
			// Lost the race against a concurrent signup for the same name.
			return nil, ErrDuplicateSubject
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	grant, err := s.issueGrant(created)
	if err != nil {
		return nil, err
	}
	s.audit.Event(ctx, audit.ActionSignup, created.ID, zap.String("username", created.Username))
	return grant, nil
}

// Login verifies the password for username and issues a fresh token and
// session. An unknown username and a wrong password both return
// ErrInvalidCredentials, and both cost one key derivation.
func (s *Service) Login(ctx context.Context, username, password string) (*Grant, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	if u == nil {
		s.hasher.DummyVerify(password)
		s.audit.Event(ctx, audit.ActionLoginFailure, 0, zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash, u.PasswordSalt)
	if err != nil {
		if errors.Is(err, security.ErrCorruptCredential) {
			// Data integrity fault, not a bad password. Surface it so it
			// cannot be mistaken for user error.
			s.log.Error("corrupt credential record",
				zap.Int64("subject_id", u.ID), zap.String("username", u.Username))
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.audit.Event(ctx, audit.ActionLoginFailure, u.ID, zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	grant, err := s.issueGrant(u)
	if err != nil {
		return nil, err
	}
	s.audit.Event(ctx, audit.ActionLoginSuccess, u.ID, zap.String("username", username))
	return grant, nil
}

// Authenticate resolves a bearer token to the identity it was issued for.
// The token must verify cryptographically AND have a live session; the
// returned subject comes from the session record.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	if _, err := s.codec.Verify(token); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	sess, ok := s.sessions.Get(token)
	if !ok {
		return nil, ErrSessionRevoked
	}

	u, err := s.users.GetByID(ctx, sess.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("lookup subject: %w", err)
	}
	if u == nil {
		// Session outlived the credential record. Revoke it.
		s.sessions.Delete(token)
		return nil, ErrSessionRevoked
	}
	return &Identity{SubjectID: u.ID, Username: u.Username, Name: u.Name}, nil
}

// Logout revokes the session for token. It is idempotent and does not
// require the token to verify: an expired or garbage token simply has no
// session to remove.
func (s *Service) Logout(ctx context.Context, token string) {
	subjectID := int64(0)
	if sess, ok := s.sessions.Get(token); ok {
		subjectID = sess.SubjectID
	}
	s.sessions.Delete(token)
	s.audit.Event(ctx, audit.ActionLogout, subjectID)
}

func (s *Service) issueGrant(u *domain.User) (*Grant, error) {
	token, err := s.codec.Issue(security.Claims{"sub": u.ID}, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.sessions.Create(u.ID, token, s.nowF().Add(s.ttl))
	return &Grant{
		SubjectID: u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Token:     token,
		ExpiresIn: s.ttl,
	}, nil
}

func validateSignup(username, password string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidSignupInput)
	}
	if len(username) > maxUsernameLen {
		return fmt.Errorf("%w: username too long", ErrInvalidSignupInput)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidSignupInput, minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("%w: password too long", ErrInvalidSignupInput)
	}
	return nil
}
