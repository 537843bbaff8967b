package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"newsportal/internal/config"
	"newsportal/internal/domain/entity"
	pgRepo "newsportal/internal/infra/adapter/persistence/postgres"
	"newsportal/internal/infra/db"
	"newsportal/internal/observability/logging"
	"newsportal/internal/repository"
	artUC "newsportal/internal/usecase/article"
	principalUC "newsportal/internal/usecase/principal"
	pubUC "newsportal/internal/usecase/publisher"
)

// backend is what the commands operate on.
type backend struct {
	db    *sql.DB // nil when the backend has no SQL database
	repos repository.Repositories
	tx    repository.Transactor
	cfg   *config.Config
	close func() error
}

type opener func(ctx context.Context) (*backend, error)

func openDatabase(_ context.Context) (*backend, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, codeError(2, "load configuration: %s", err)
	}
	if cfg.UsesMemoryStore() {
		return nil, codeError(2, "DATABASE_URL is not set")
	}
	database, err := db.Open(cfg.Database.URL, cfg.Database.Pool)
	if err != nil {
		return nil, err
	}
	return &backend{
		db:    database,
		repos: pgRepo.NewRepositories(database),
		tx:    pgRepo.NewTransactor(database),
		cfg:   cfg,
		close: database.Close,
	}, nil
}

func newRootCmd(open opener) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "portalctl",
		Short:         "Administer the news portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := "warn"
			if verbose {
				level = "debug"
			}
			ctx := logging.WithLogger(cmd.Context(), logging.NewTextLogger(cmd.ErrOrStderr(), level))
			cmd.SetContext(ctx)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	// withBackend opens the backend for one command and closes it afterwards.
	withBackend := func(run func(cmd *cobra.Command, args []string, b *backend) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			b, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = b.close() }()
			return run(cmd, args, b)
		}
	}

	root.AddCommand(
		newMigrateCmd(withBackend),
		newPublisherCmd(withBackend),
		newRoleCmd(withBackend),
		newPendingCmd(withBackend),
	)
	return root
}

type backendRunner func(run func(cmd *cobra.Command, args []string, b *backend) error) func(*cobra.Command, []string) error

func newMigrateCmd(with backendRunner) *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, _ []string, b *backend) error {
			if b.db == nil {
				return codeError(2, "migrate needs a SQL database")
			}
			if down {
				if err := db.MigrateDown(b.db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema dropped")
				return nil
			}
			if err := db.MigrateUp(b.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		}),
	}
	cmd.Flags().BoolVar(&down, "down", false, "Drop every table instead")
	return cmd
}

func newPublisherCmd(with backendRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publisher",
		Short: "Manage publishers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a publisher with no editor members",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(cmd *cobra.Command, args []string, b *backend) error {
			svc := &pubUC.Service{Tx: b.tx, Publishers: b.repos.Publishers, Principals: b.repos.Principals}
			p, err := svc.AdminCreate(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created publisher %d %q\n", p.ID, p.Name)
			return nil
		}),
	})
	return cmd
}

func newRoleCmd(with backendRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage principal roles",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <username> <reader|editor|journalist>",
		Short: "Change the role of a principal",
		Args:  cobra.ExactArgs(2),
		RunE: with(func(cmd *cobra.Command, args []string, b *backend) error {
			cost := 12
			if b.cfg != nil {
				cost = b.cfg.Auth.BcryptCost
			}
			svc := principalUC.NewService(b.repos.Principals, b.tx, cost)
			p, err := svc.AdminSetRole(cmd.Context(), args[0], args[1])
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s (group %s)\n", p.Username, p.Role, p.Group())
			return nil
		}),
	})
	return cmd
}

func newPendingCmd(with backendRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List articles waiting for approval, oldest first",
		Args:  cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, _ []string, b *backend) error {
			resolver := &artUC.Resolver{Articles: b.repos.Articles}
			articles, err := resolver.PendingArticles(cmd.Context())
			if err != nil {
				return err
			}
			return writePending(cmd.OutOrStdout(), articles)
		}),
	}
}

func writePending(w io.Writer, articles []*entity.Article) error {
	if len(articles) == 0 {
		_, err := fmt.Fprintln(w, "no pending articles")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPUBLISHER\tJOURNALIST\tCREATED\tTITLE")
	for _, a := range articles {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\n", a.ID, a.PublisherID, a.JournalistID, a.CreatedAt.UTC().Format(time.RFC3339), a.Title)
	}
	return tw.Flush()
}

// describe turns domain errors into exit code 2 with the message only.
func describe(err error) error {
	var verr *entity.ValidationError
	if errors.As(err, &verr) || errors.Is(err, entity.ErrNotFound) || errors.Is(err, entity.ErrConflict) {
		return codeError(2, "%s", err)
	}
	return err
}
