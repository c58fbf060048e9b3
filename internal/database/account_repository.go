package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
)

const accountColumns = "id, name, email, password_hash, core, role, created_at, updated_at"

// AccountRepository persists back-office staff accounts.
type AccountRepository struct {
	db DatabasePool
}

func NewAccountRepository(db DatabasePool) *AccountRepository {
	return &AccountRepository{db: db}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Core, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts account, assigning an ID when it has none.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.Role == "" {
		account.Role = models.RoleStaff
	}
	if account.Core == 0 {
		account.Core = 1
	}

	query := `
		INSERT INTO accounts (id, name, email, password_hash, core, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		account.ID, account.Name, account.Email, account.PasswordHash, account.Core, account.Role,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	return classify("failed to create account", err)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	account, err := scanAccount(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, classify("failed to get account by email", err)
	}
	return account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	account, err := scanAccount(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, classify("failed to get account", err)
	}
	return account, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, classify("failed to list accounts", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, classify("failed to scan account", err)
		}
		accounts = append(accounts, *account)
	}
	return accounts, classify("failed to iterate accounts", rows.Err())
}

// Delete removes the account with the given id.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return classify("failed to delete account", err)
	}
	return requireAffected("failed to delete account", tag)
}

func (r *AccountRepository) UpdateEmail(ctx context.Context, id, newEmail string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts SET email = $1, updated_at = NOW() WHERE id = $2`,
		newEmail, id,
	)
	if err != nil {
		return classify("failed to update account email", err)
	}
	return requireAffected("failed to update account email", tag)
}

func (r *AccountRepository) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, classify("failed to check account", err)
	}
	return exists, nil
}

// EnsureAdmin creates the seed administrator unless an account with that email exists.
func (r *AccountRepository) EnsureAdmin(ctx context.Context, account *models.Account) (bool, error) {
	exists, err := r.Exists(ctx, account.Email)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	account.Role = models.RoleAdmin
	if err := r.Create(ctx, account); err != nil {
		if errors.Is(err, ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
