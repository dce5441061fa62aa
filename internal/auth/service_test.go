package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cinereserve/backend/internal/security"
	"cinereserve/backend/internal/session"
	"cinereserve/backend/internal/user/domain"
	userrepo "cinereserve/backend/internal/user/repository"
)

// testN keeps key derivation fast in tests.
const testN = 1024

type memUsers struct {
	mu     sync.Mutex
	users  map[int64]*domain.User
	nextID int64
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[int64]*domain.User{}}
}

func (m *memUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return nil, userrepo.ErrDuplicateUsername
		}
	}
	m.nextID++
	cp := *u
	cp.ID = m.nextID
	m.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestService(t *testing.T) (*Service, *memUsers, *testClock) {
	t.Helper()
	clock := newTestClock()
	users := newMemUsers()
	svc := NewService(
		users,
		security.NewHasher(testN, 0),
		security.NewCodec([]byte("0123456789abcdef0123456789abcdef"), clock.Now),
		session.NewStore(clock.Now),
		time.Hour,
		nil, nil, clock.Now,
	)
	return svc, users, clock
}

func TestSignupThenAuthenticate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	grant, err := svc.Signup(ctx, "marie", "correct horse battery", "Marie Curie")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if grant.SubjectID == 0 || grant.Token == "" {
		t.Fatalf("incomplete grant: %+v", grant)
	}
	if grant.ExpiresIn != time.Hour {
		t.Errorf("ExpiresIn = %v, want 1h", grant.ExpiresIn)
	}

	id, err := svc.Authenticate(ctx, grant.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id.SubjectID != grant.SubjectID {
		t.Errorf("subject = %d, want %d", id.SubjectID, grant.SubjectID)
	}
	if id.Username != "marie" || id.Name != "Marie Curie" {
		t.Errorf("identity = %+v", id)
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "marie", "correct horse battery", ""); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	_, err := svc.Signup(ctx, "marie", "another password!", "")
	if !errors.Is(err, ErrDuplicateSubject) {
		t.Fatalf("err = %v, want ErrDuplicateSubject", err)
	}
}

// blindLookupUsers reports every username as absent so both sides of a
// signup race get past the pre-check, the way two in-flight requests do.
// Create still enforces uniqueness.
type blindLookupUsers struct {
	*memUsers
}

func (b blindLookupUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return nil, nil
}

func TestSignupConcurrentSameUsername(t *testing.T) {
	clock := newTestClock()
	users := newMemUsers()
	svc := NewService(
		blindLookupUsers{users},
		security.NewHasher(testN, 0),
		security.NewCodec([]byte("0123456789abcdef0123456789abcdef"), clock.Now),
		session.NewStore(clock.Now),
		time.Hour,
		nil, nil, clock.Now,
	)

	start := make(chan struct{})
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			<-start
			_, err := svc.Signup(context.Background(), "marie", "correct horse battery", "")
			errs <- err
		}()
	}
	close(start)

	var ok, dup int
	for i := 0; i < 2; i++ {
		switch err := <-errs; {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicateSubject):
			dup++
		default:
			t.Fatalf("unexpected signup error: %v", err)
		}
	}
	if ok != 1 || dup != 1 {
		t.Fatalf("got %d successes and %d duplicates, want 1 and 1", ok, dup)
	}

	users.mu.Lock()
	records := 0
	for _, u := range users.users {
		if u.Username == "marie" {
			records++
		}
	}
	users.mu.Unlock()
	if records != 1 {
		t.Fatalf("credential records for marie: %d, want 1", records)
	}
}

func TestSignupValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "correct horse battery"},
		{"short password", "marie", "short"},
		{"long password", "marie", string(make([]byte, 300))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tc.username, tc.password, "")
			if !errors.Is(err, ErrInvalidSignupInput) {
				t.Errorf("err = %v, want ErrInvalidSignupInput", err)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	signup, err := svc.Signup(ctx, "marie", "correct horse battery", "")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	grant, err := svc.Login(ctx, "marie", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if grant.SubjectID != signup.SubjectID {
		t.Errorf("subject = %d, want %d", grant.SubjectID, signup.SubjectID)
	}
	if grant.Token == signup.Token {
		t.Error("login reused the signup token")
	}
	if _, err := svc.Authenticate(ctx, grant.Token); err != nil {
		t.Errorf("Authenticate after login: %v", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "marie", "correct horse battery", ""); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	_, wrongPw := svc.Login(ctx, "marie", "wrong password!!")
	_, noUser := svc.Login(ctx, "nobody", "wrong password!!")

	if !errors.Is(wrongPw, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", wrongPw)
	}
	if !errors.Is(noUser, ErrInvalidCredentials) {
		t.Errorf("unknown user err = %v, want ErrInvalidCredentials", noUser)
	}
	// Same error value, so callers cannot tell the cases apart.
	if wrongPw.Error() != noUser.Error() {
		t.Errorf("error strings differ: %q vs %q", wrongPw, noUser)
	}
}

func TestLoginCorruptCredentialIsNotInvalidCredentials(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	grant, err := svc.Signup(ctx, "marie", "correct horse battery", "")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	users.mu.Lock()
	users.users[grant.SubjectID].PasswordSalt = []byte("short")
	users.mu.Unlock()

	_, err = svc.Login(ctx, "marie", "correct horse battery")
	if !errors.Is(err, security.ErrCorruptCredential) {
		t.Fatalf("err = %v, want ErrCorruptCredential", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Error("corrupt credential must not read as invalid credentials")
	}
}

func TestAuthenticateMissingToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "")
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("err = %v, want ErrMissingToken", err)
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	grant, err := svc.Signup(ctx, "marie", "correct horse battery", "")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	for _, token := range []string{
		"garbage",
		"a.b.c",
		grant.Token + "x",
		grant.Token[:len(grant.Token)-2],
	} {
		_, err := svc.Authenticate(ctx, token)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("token %q: err = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	grant, err := svc.Signup(ctx, "marie", "correct horse battery", "")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	clock.Advance(time.Hour + time.Second)
	_, err = svc.Authenticate(ctx, grant.Token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	grant, err := svc.Signup(ctx, "marie", "correct horse battery", "")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	svc.Logout(ctx, grant.Token)

	// Token still verifies cryptographically but the session is gone.
	_, err = svc.Authenticate(ctx, grant.Token)
	if !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("err = %v, want ErrSessionRevoked", err)
	}

	// Logout is idempotent, including on garbage tokens.
	svc.Logout(ctx, grant.Token)
	svc.Logout(ctx, "not-a-token")
}

func TestLogoutDoesNotRevokeOtherSessions(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	signup, err := svc.Signup(ctx, "marie", "correct horse battery", "")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	login, err := svc.Login(ctx, "marie", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	svc.Logout(ctx, signup.Token)

	if _, err := svc.Authenticate(ctx, login.Token); err != nil {
		t.Errorf("second session revoked by first logout: %v", err)
	}
}

func TestAuthenticateSubjectComesFromSession(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	grant, err := svc.Signup(ctx, "marie", "correct horse battery", "")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	// Remove the credential record out from under a live session. The
	// session must be treated as revoked, not resolved from token claims.
	users.mu.Lock()
	delete(users.users, grant.SubjectID)
	users.mu.Unlock()

	_, err = svc.Authenticate(ctx, grant.Token)
	if !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("err = %v, want ErrSessionRevoked", err)
	}
}
