package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the SQLSTATE postgres reports for a duplicate key.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectAccount = `SELECT id, username, password, previous_password, role, nickname, gender,
		 active, deleted, sign_at, withdraw_at, created_at, updated_at
		 FROM accounts`

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	query :=
		`INSERT INTO accounts (username, password, role, nickname, gender)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.Username, account.Password, account.Role, account.Nickname, account.Gender).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	account.Active = true
	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := selectAccount + `
		 WHERE id = $1 AND deleted = FALSE
		 `
	return r.get(ctx, query, id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := selectAccount + `
		 WHERE username = $1 AND deleted = FALSE
		 `
	return r.get(ctx, query, username)
}

func (r *PostgresRepository) get(ctx context.Context, query string, arg any) (*models.Account, error) {
	a := &models.Account{}
	var signAt, withdrawAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.Username, &a.Password, &a.PreviousPassword, &a.Role, &a.Nickname, &a.Gender,
		&a.Active, &a.Deleted, &signAt, &withdrawAt, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if signAt.Valid {
		a.SignAt = &signAt.Time
	}
	if withdrawAt.Valid {
		a.WithdrawAt = &withdrawAt.Time
	}
	return a, nil
}

func (r *PostgresRepository) UpdateSignAt(ctx context.Context, id string, at time.Time) error {
	query :=
		`UPDATE accounts SET sign_at = $2, updated_at = now()
		 WHERE id = $1 AND deleted = FALSE
		 `
	return r.exec(ctx, query, id, at)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	query :=
		`UPDATE accounts SET previous_password = password, password = $2, updated_at = now()
		 WHERE id = $1 AND deleted = FALSE
		 `
	return r.exec(ctx, query, id, hash)
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id, nickname string, gender models.Gender) error {
	query :=
		`UPDATE accounts SET nickname = $2, gender = $3, updated_at = now()
		 WHERE id = $1 AND deleted = FALSE
		 `
	return r.exec(ctx, query, id, nickname, gender)
}

func (r *PostgresRepository) Withdraw(ctx context.Context, id string, at time.Time) error {
	query :=
		`UPDATE accounts SET deleted = TRUE, active = FALSE, withdraw_at = $2, updated_at = now()
		 WHERE id = $1 AND deleted = FALSE
		 `
	return r.exec(ctx, query, id, at)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
