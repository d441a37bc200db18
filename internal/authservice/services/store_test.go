package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
	"github.com/dmitrijs2005/kubelearn/internal/models"
	"github.com/dmitrijs2005/kubelearn/internal/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPostgresStore_CreateRunsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc, err := NewService(NewPostgresStore(db, repomanager.NewPostgresRepositoryManager()), bcrypt.MinCost, time.Second, logging.Discard())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, username, password_hash, role, created_at FROM users`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}))
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "alice", sqlmock.AnyArg(), "user").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow("6f1c1d2e-3b4a-4c5d-8e9f-0a1b2c3d4e5f", time.Now()))
	mock.ExpectCommit()

	u, err := svc.Create(context.Background(), "alice", "secret1", models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ExistingUsernameRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc, err := NewService(NewPostgresStore(db, repomanager.NewPostgresRepositoryManager()), bcrypt.MinCost, time.Second, logging.Discard())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, username, password_hash, role, created_at FROM users`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}).
			AddRow("6f1c1d2e-3b4a-4c5d-8e9f-0a1b2c3d4e5f", "alice", "h", "user", time.Now()))
	mock.ExpectRollback()

	_, err = svc.Create(context.Background(), "alice", "secret1", models.RoleUser)
	assert.ErrorIs(t, err, common.ErrUsernameTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
