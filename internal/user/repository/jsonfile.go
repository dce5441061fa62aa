package repository

import (
	"context"
	"time"

	"cinereserve/backend/internal/storage/jsonfile"
	"cinereserve/backend/internal/user/domain"
)

const usersFile = "users.json"

// userRecord is the on-disk shape of a credential record. Byte fields
// round-trip as base64 through encoding/json.
type userRecord struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash []byte    `json:"password_hash"`
	PasswordSalt []byte    `json:"password_salt"`
	CreatedAt    time.Time `json:"created_at"`
}

// JSONFileRepository stores credential records in users.json under the
// data directory.
type JSONFileRepository struct {
	store *jsonfile.Store
}

// NewJSONFileRepository returns a user repository backed by store.
func NewJSONFileRepository(store *jsonfile.Store) *JSONFileRepository {
	return &JSONFileRepository{store: store}
}

// GetByID returns the user for id, or nil if not found.
func (r *JSONFileRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var found *domain.User
	err := r.store.Do(func() error {
		records, err := r.load()
		if err != nil {
			return err
		}
		for i := range records {
			if records[i].ID == id {
				found = recordToDomain(&records[i])
				return nil
			}
		}
		return nil
	})
	return found, err
}

// GetByUsername returns the user for username, or nil if not found.
func (r *JSONFileRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var found *domain.User
	err := r.store.Do(func() error {
		records, err := r.load()
		if err != nil {
			return err
		}
		for i := range records {
			if records[i].Username == username {
				found = recordToDomain(&records[i])
				return nil
			}
		}
		return nil
	})
	return found, err
}

// Create persists the user, assigning the next free integer ID. The
// username check runs under the same store lock as the insert, so two
// concurrent Creates for one username cannot both succeed.
func (r *JSONFileRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	var created *domain.User
	err := r.store.Do(func() error {
		records, err := r.load()
		if err != nil {
			return err
		}
		nextID := int64(1)
		for i := range records {
			if records[i].Username == u.Username {
				return ErrDuplicateUsername
			}
			if records[i].ID >= nextID {
				nextID = records[i].ID + 1
			}
		}
		rec := userRecord{
			ID:           nextID,
			Username:     u.Username,
			Name:         u.Name,
			PasswordHash: u.PasswordHash,
			PasswordSalt: u.PasswordSalt,
			CreatedAt:    u.CreatedAt,
		}
		records = append(records, rec)
		if err := r.store.Write(usersFile, records); err != nil {
			return err
		}
		created = recordToDomain(&rec)
		return nil
	})
	return created, err
}

func (r *JSONFileRepository) load() ([]userRecord, error) {
	var records []userRecord
	if err := r.store.Read(usersFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func recordToDomain(rec *userRecord) *domain.User {
	return &domain.User{
		ID:           rec.ID,
		Username:     rec.Username,
		Name:         rec.Name,
		PasswordHash: rec.PasswordHash,
		PasswordSalt: rec.PasswordSalt,
		CreatedAt:    rec.CreatedAt,
	}
}
