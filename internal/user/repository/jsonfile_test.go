package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cinereserve/backend/internal/storage/jsonfile"
	"cinereserve/backend/internal/user/domain"
)

func newTestRepo(t *testing.T) *JSONFileRepository {
	t.Helper()
	store, err := jsonfile.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return NewJSONFileRepository(store)
}

func testUser(username string) *domain.User {
	return &domain.User{
		Username:     username,
		Name:         "Test User",
		PasswordHash: []byte("0123456789abcdef0123456789abcdef"),
		PasswordSalt: []byte("0123456789abcdef"),
		CreatedAt:    time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC),
	}
}

func TestJSONFileCreateAndGet(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, testUser("marie"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected assigned id")
	}

	byName, err := r.GetByUsername(ctx, "marie")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if byName == nil || byName.ID != created.ID {
		t.Fatalf("GetByUsername = %+v", byName)
	}

	byID, err := r.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID == nil || byID.Username != "marie" {
		t.Fatalf("GetByID = %+v", byID)
	}

	absent, err := r.GetByUsername(ctx, "nobody")
	if err != nil || absent != nil {
		t.Fatalf("absent lookup = %+v, %v, want nil, nil", absent, err)
	}
}

func TestJSONFileCreateDuplicateUsername(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	if _, err := r.Create(ctx, testUser("marie")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := r.Create(ctx, testUser("marie"))
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("err = %v, want ErrDuplicateUsername", err)
	}
}

func TestJSONFileCreateConcurrentDuplicates(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	const attempts = 8
	start := make(chan struct{})
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := r.Create(ctx, testUser("marie"))
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicateUsername):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != attempts-1 {
		t.Fatalf("got %d successes and %d duplicates, want 1 and %d", ok, dup, attempts-1)
	}
}
