//go:generate go run go.uber.org/mock/mockgen -source=account.go -destination=../mocks/mock_account_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"courtside/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IAccountRepository interface {
	CreateAccount(email, hashedPassword string) (string, error)
	GetAccountByEmail(email string) (Account, error)
}

// AccountRepository keeps credentials apart from public profiles so
// password hashes never travel with profile reads.
type AccountRepository struct {
	db *badger.DB
}

func NewAccountRepository(db *badger.DB) IAccountRepository {
	return &AccountRepository{db: db}
}

type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type accountRow struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    int64  `json:"created_at"`
}

// CreateAccount persists the credentials and returns the newly
// generated user id. The caller provides an already-hashed password.
func (a AccountRepository) CreateAccount(email, hashedPassword string) (string, error) {
	newID := uuid.New().String()
	row := accountRow{
		ID:           newID,
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().Unix(),
	}

	data, err := json.Marshal(row)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = a.db.Update(func(txn *badger.Txn) error {
		key := []byte("account:" + email)
		if _, err = txn.Get(key); err == nil {
			return errors.ErrEmailTaken
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return "", err
	}
	return newID, nil
}

func (a AccountRepository) GetAccountByEmail(email string) (Account, error) {
	var raw []byte
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("account:" + email))
		if err != nil {
			return errors.ErrNotFound
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return Account{}, err
	}

	var row accountRow
	if err = json.Unmarshal(raw, &row); err != nil {
		return Account{}, err
	}
	return Account{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    time.Unix(row.CreatedAt, 0).UTC(),
	}, nil
}
