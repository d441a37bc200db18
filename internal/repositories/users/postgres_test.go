package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const testID = "6f1c1d2e-3b4a-4c5d-8e9f-0a1b2c3d4e5f"

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func withFixedID(t *testing.T) {
	t.Helper()
	orig := newID
	newID = func() string { return testID }
	t.Cleanup(func() { newID = orig })
}

const insertQ = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*username,\s*password_hash,\s*role\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*ON\s+CONFLICT\s*\(username\)\s*DO\s+NOTHING\s*RETURNING\s+id,\s*created_at\s*$`

func TestCreate_Success(t *testing.T) {
	withFixedID(t)
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(insertQ).
		WithArgs(testID, "alice", "hash", "user").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(testID, created))

	u := &models.User{Username: "alice", PasswordHash: "hash", Role: models.RoleUser}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != testID || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCreate_ConflictIsUsernameTaken(t *testing.T) {
	withFixedID(t)
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	// ON CONFLICT DO NOTHING returns no row
	mock.ExpectQuery(insertQ).
		WithArgs(testID, "alice", "hash", "user").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))

	_, err := repo.Create(context.Background(), &models.User{Username: "alice", PasswordHash: "hash", Role: models.RoleUser})
	if !errors.Is(err, common.ErrUsernameTaken) {
		t.Fatalf("want ErrUsernameTaken, got %v", err)
	}
}

func TestCreate_UniqueViolationIsUsernameTaken(t *testing.T) {
	withFixedID(t)
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs(testID, "alice", "hash", "user").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.User{Username: "alice", PasswordHash: "hash", Role: models.RoleUser})
	if !errors.Is(err, common.ErrUsernameTaken) {
		t.Fatalf("want ErrUsernameTaken, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	withFixedID(t)
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs(testID, "alice", "hash", "user").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Username: "alice", PasswordHash: "hash", Role: models.RoleUser})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

const selectByUsernameQ = `(?s)^SELECT\s+id,\s*username,\s*password_hash,\s*role,\s*created_at\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s*$`

func TestGetByUsername_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}).
		AddRow(testID, "alice", "hash", "admin", time.Now())
	mock.ExpectQuery(selectByUsernameQ).WithArgs("alice").WillReturnRows(rows)

	got, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if got.ID != testID || got.Username != "alice" || got.Role != models.RoleAdmin {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByUsername_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByUsernameQ).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestGetByID_InvalidUUIDSkipsQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.GetByID(context.Background(), "42; DROP TABLE users")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*username,\s*password_hash,\s*role,\s*created_at\s+FROM\s+users\s+ORDER\s+BY\s+created_at\s+DESC\s*$`
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}).
		AddRow("id-2", "bob", "h2", "user", now).
		AddRow("id-1", "alice", "h1", "admin", now.Add(-time.Hour))
	mock.ExpectQuery(q).WillReturnRows(rows)

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].Username != "bob" || got[1].Role != models.RoleAdmin {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestList_EmptyIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

const deleteQ = `(?s)^DELETE\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQ).WithArgs(testID).WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), testID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDelete_NoRowsIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQ).WithArgs(testID).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), testID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestDelete_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQ).WithArgs(testID).WillReturnError(errors.New("db err"))

	err := repo.Delete(context.Background(), testID)
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
