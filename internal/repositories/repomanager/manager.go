package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/kubelearn/internal/dbx"
	"github.com/dmitrijs2005/kubelearn/internal/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
