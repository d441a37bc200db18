// Package useradd is the operator command that provisions accounts straight
// into the Credential Store. It is the only way to create an admin: the
// public signup flow always asks for the user role.
package useradd

import (
	"context"
	"fmt"
	"os"
	"time"

	authconfig "github.com/dmitrijs2005/kubelearn/internal/authservice/config"
	"github.com/dmitrijs2005/kubelearn/internal/authservice/services"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
	"github.com/dmitrijs2005/kubelearn/internal/models"
	"github.com/dmitrijs2005/kubelearn/internal/repositories/repomanager"
	"github.com/dmitrijs2005/kubelearn/internal/shared"
	"github.com/spf13/cobra"
)

type Creator interface {
	Create(ctx context.Context, username, password string, role models.Role) (*models.User, error)
}

// StoreOptions says how to reach the Credential Store.
type StoreOptions struct {
	DSN          string
	BcryptCost   int
	QueryTimeout time.Duration
	Migrate      bool
}

// Opener connects to the Credential Store. The returned func releases it.
type Opener func(ctx context.Context, opts StoreOptions) (Creator, func() error, error)

// OpenPostgres is the production Opener.
func OpenPostgres(ctx context.Context, opts StoreOptions) (Creator, func() error, error) {
	db, err := repomanager.Open(ctx, opts.DSN, repomanager.PoolOptions{MaxOpenConns: 2, ConnectTimeout: opts.QueryTimeout})
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if opts.Migrate {
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrations error: %w", err)
		}
	}

	svc, err := services.NewService(services.NewPostgresStore(db, rm), opts.BcryptCost, opts.QueryTimeout, logging.Discard())
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return svc, db.Close, nil
}

type createOptions struct {
	username      string
	role          string
	dsn           string
	cost          int
	queryTimeout  time.Duration
	migrate       bool
	passwordStdin bool
}

// NewRootCmd builds the useradd command tree. Defaults for the DSN and the
// bcrypt cost come from the same environment the Credential Verifier reads.
func NewRootCmd(open Opener) *cobra.Command {
	defaults := &authconfig.Config{}
	defaults.LoadDefaults()
	if cfg, err := authconfig.Load(nil); err == nil {
		defaults = cfg
	}

	root := &cobra.Command{
		Use:           "useradd",
		Short:         "Manage KubeLearn accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCreateCmd(open, defaults))
	return root
}

func newCreateCmd(open Opener, defaults *authconfig.Config) *cobra.Command {
	opts := &createOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Long: `Create an account directly in the Credential Store.

The password is read from the terminal twice, or once from stdin with
--password-stdin.

Examples:
  useradd create --username root --role admin
  echo "$PASS" | useradd create --username ci --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreate(cmd, open, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.username, "username", "u", "", "account name")
	f.StringVarP(&opts.role, "role", "r", string(models.RoleUser), "user or admin")
	f.StringVar(&opts.dsn, "dsn", defaults.DatabaseDSN, "PostgreSQL DSN")
	f.IntVar(&opts.cost, "bcrypt-cost", defaults.BcryptCost, "bcrypt work factor")
	f.DurationVar(&opts.queryTimeout, "query-timeout", defaults.QueryTimeout, "bound for each Credential Store call")
	f.BoolVar(&opts.migrate, "migrate", true, "apply migrations before creating")
	f.BoolVar(&opts.passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func runCreate(cmd *cobra.Command, open Opener, opts *createOptions) error {
	role, ok := models.ParseRole(opts.role)
	if !ok {
		return fmt.Errorf("unknown role %q: want user or admin", opts.role)
	}

	var (
		password []byte
		err      error
	)
	if opts.passwordStdin {
		password, err = readLine(cmd.InOrStdin())
	} else {
		password, err = promptPassword(int(os.Stdin.Fd()), cmd.ErrOrStderr())
	}
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	ctx := cmd.Context()
	creator, closeFn, err := open(ctx, StoreOptions{
		DSN:          opts.dsn,
		BcryptCost:   opts.cost,
		QueryTimeout: opts.queryTimeout,
		Migrate:      opts.migrate,
	})
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	u, err := creator.Create(ctx, opts.username, string(password), role)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.username, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", u.Role, u.Username, u.ID)
	return nil
}
