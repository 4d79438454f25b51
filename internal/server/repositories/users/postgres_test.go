package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
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

const (
	insertQuery  = `(?s)^INSERT\s+INTO\s+users\s*\(email,\s*password_hash,\s*first_name,\s*last_name,\s*two_factor_enabled\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id,\s*created_at\s*$`
	byEmailQuery = `(?s)^SELECT\s+id,\s*email,\s*password_hash,\s*first_name,\s*last_name,\s*two_factor_enabled,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	byIDQuery    = `(?s)^SELECT\s+id,\s*email,\s*password_hash,\s*first_name,\s*last_name,\s*two_factor_enabled,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
)

var userColumns = []string{"id", "email", "password_hash", "first_name", "last_name", "two_factor_enabled", "created_at"}

func newUser() *models.User {
	return &models.User{
		Email:            "john.doe@email.com",
		PasswordHash:     "wonderful_hash",
		FirstName:        "John",
		LastName:         "Doe",
		TwoFactorEnabled: false,
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(insertQuery).
		WithArgs("john.doe@email.com", "wonderful_hash", "John", "Doe", false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("42", created))

	got, err := repo.Create(context.Background(), newUser())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "42" || got.Email != "john.doe@email.com" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), newUser())
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), newUser())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	if errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("generic db error must not look like a conflict")
	}
}

func TestGetUserByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byEmailQuery).
		WithArgs("john.doe@email.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u-1", "john.doe@email.com", "hash", "John", "Doe", true, time.Now()))

	got, err := repo.GetUserByEmail(context.Background(), "john.doe@email.com")
	if err != nil {
		t.Fatalf("GetUserByEmail error: %v", err)
	}
	if got.ID != "u-1" || got.PasswordHash != "hash" || !got.TwoFactorEnabled || got.FirstName != "John" || got.LastName != "Doe" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byEmailQuery).
		WithArgs("ghost@email.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByEmail(context.Background(), "ghost@email.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetUserByEmail_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byEmailQuery).
		WithArgs("john.doe@email.com").
		WillReturnError(errors.New("db err"))

	_, err := repo.GetUserByEmail(context.Background(), "john.doe@email.com")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetUserByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	const id = "5f0c9a52-3c1e-4d4e-9d8a-2b7f1e6c0a11"
	mock.ExpectQuery(byIDQuery).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(id, "john.doe@email.com", "hash", "John", "Doe", false, time.Now()))

	// upper case input is normalized to the canonical form
	got, err := repo.GetUserByID(context.Background(), strings.ToUpper(id))
	if err != nil {
		t.Fatalf("GetUserByID error: %v", err)
	}
	if got.ID != id || got.Email != "john.doe@email.com" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	const id = "0b6f3f8e-8f7a-4c47-a1a3-54c3c1c9a0d2"
	mock.ExpectQuery(byIDQuery).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByID(context.Background(), id)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetUserByID_NotAUUID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	for _, id := range []string{"1", "", "not-a-uuid", "5f0c9a52-3c1e-4d4e-9d8a"} {
		_, err := repo.GetUserByID(context.Background(), id)
		if !errors.Is(err, common.ErrorNotFound) {
			t.Fatalf("id %q: want common.ErrorNotFound, got %v", id, err)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}
