package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/kubelearn/internal/dbx"
	"github.com/dmitrijs2005/kubelearn/internal/repositories/repomanager"
	"github.com/dmitrijs2005/kubelearn/internal/repositories/users"
)

// Store gives the service access to the users repository, either directly
// or inside one transaction.
type Store interface {
	Users() users.Repository
	InTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error
}

type PostgresStore struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewPostgresStore(db *sql.DB, rm repomanager.RepositoryManager) *PostgresStore {
	return &PostgresStore{db: db, rm: rm}
}

func (s *PostgresStore) Users() users.Repository {
	return s.rm.Users(s.db)
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, s.rm.Users(tx))
	})
}

// MemoryStore runs against a users.MemoryRepository. InTx has no rollback:
// the memory repository's Create is already atomic.
type MemoryStore struct {
	repo users.Repository
}

func NewMemoryStore(repo users.Repository) *MemoryStore {
	return &MemoryStore{repo: repo}
}

func (s *MemoryStore) Users() users.Repository {
	return s.repo
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error {
	return fn(ctx, s.repo)
}
