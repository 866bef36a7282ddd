package accounts

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var accountColumns = []string{
	"id", "username", "password", "previous_password", "role", "nickname", "gender",
	"active", "deleted", "sign_at", "withdraw_at", "created_at", "updated_at",
}

const (
	insertQ     = `(?s)^INSERT\s+INTO\s+accounts\s*\(username,\s*password,\s*role,\s*nickname,\s*gender\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`
	byIDQ       = `(?s)^SELECT\s+id,.*FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1\s+AND\s+deleted\s*=\s*FALSE\s*$`
	byNameQ     = `(?s)^SELECT\s+id,.*FROM\s+accounts\s+WHERE\s+username\s*=\s*\$1\s+AND\s+deleted\s*=\s*FALSE\s*$`
	signAtQ     = `(?s)^UPDATE\s+accounts\s+SET\s+sign_at\s*=\s*\$2`
	passwordQ   = `(?s)^UPDATE\s+accounts\s+SET\s+previous_password\s*=\s*password,\s*password\s*=\s*\$2`
	profileQ    = `(?s)^UPDATE\s+accounts\s+SET\s+nickname\s*=\s*\$2,\s*gender\s*=\s*\$3`
	withdrawalQ = `(?s)^UPDATE\s+accounts\s+SET\s+deleted\s*=\s*TRUE,\s*active\s*=\s*FALSE,\s*withdraw_at\s*=\s*\$2`
)

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("a-1", now, now)
	mock.ExpectQuery(insertQ).
		WithArgs("alice", "hash", models.RoleUser, "Al", models.GenderFemale).
		WillReturnRows(rows)

	a := &models.Account{Username: "alice", Password: "hash", Role: models.RoleUser, Nickname: "Al", Gender: models.GenderFemale}
	got, err := repo.Create(context.Background(), a)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "a-1" || !got.Active || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected account: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.Account{Username: "alice"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("want ErrUsernameTaken, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Account{Username: "alice"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(accountColumns).
		AddRow("a-1", "alice", "h1", "h0", "USER", "Al", "FEMALE", true, false, now, nil, now, now)
	mock.ExpectQuery(byIDQ).WithArgs("a-1").WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "a-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Username != "alice" || got.PreviousPassword != "h0" || got.Role != models.RoleUser {
		t.Fatalf("unexpected account: %+v", got)
	}
	if got.SignAt == nil || !got.SignAt.Equal(now) {
		t.Fatalf("sign_at not scanned: %+v", got.SignAt)
	}
	if got.WithdrawAt != nil {
		t.Fatalf("withdraw_at should be nil, got %v", got.WithdrawAt)
	}
}

func TestGetByUsername_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byNameQ).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByUsername_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byNameQ).WithArgs("alice").WillReturnError(errors.New("db err"))

	_, err := repo.GetByUsername(context.Background(), "alice")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdates(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		query string
		args  []any
		call  func(r *PostgresRepository) error
	}{
		{
			name:  "sign at",
			query: signAtQ,
			args:  []any{"a-1", at},
			call: func(r *PostgresRepository) error {
				return r.UpdateSignAt(context.Background(), "a-1", at)
			},
		},
		{
			name:  "password",
			query: passwordQ,
			args:  []any{"a-1", "h2"},
			call: func(r *PostgresRepository) error {
				return r.UpdatePassword(context.Background(), "a-1", "h2")
			},
		},
		{
			name:  "profile",
			query: profileQ,
			args:  []any{"a-1", "Ally", models.GenderOthers},
			call: func(r *PostgresRepository) error {
				return r.UpdateProfile(context.Background(), "a-1", "Ally", models.GenderOthers)
			},
		},
		{
			name:  "withdraw",
			query: withdrawalQ,
			args:  []any{"a-1", at},
			call: func(r *PostgresRepository) error {
				return r.Withdraw(context.Background(), "a-1", at)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := make([]driver.Value, 0, len(tt.args))
			for _, a := range tt.args {
				args = append(args, a)
			}

			repo, mock, db := newRepoWithMock(t)
			defer db.Close()
			mock.ExpectExec(tt.query).WithArgs(args...).WillReturnResult(sqlmock.NewResult(0, 1))
			if err := tt.call(repo); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			repo, mock, db2 := newRepoWithMock(t)
			defer db2.Close()
			mock.ExpectExec(tt.query).WillReturnResult(sqlmock.NewResult(0, 0))
			if err := tt.call(repo); !errors.Is(err, common.ErrorNotFound) {
				t.Fatalf("want common.ErrorNotFound, got %v", err)
			}

			repo, mock, db3 := newRepoWithMock(t)
			defer db3.Close()
			mock.ExpectExec(tt.query).WillReturnError(errors.New("db err"))
			if err := tt.call(repo); err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
				t.Fatalf("expected wrapped db error, got %v", err)
			}
		})
	}
}
