package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/config"
	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/carelink-staffing/shift-core/backend/internal/handler"
	"github.com/carelink-staffing/shift-core/backend/internal/repository"
	"github.com/carelink-staffing/shift-core/backend/internal/seed"
	"github.com/carelink-staffing/shift-core/backend/internal/utils"
	"github.com/spf13/cobra"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type rootOptions struct {
	agencyID    int64
	emailDomain string
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "seed",
		Short:         "Load development and import data into the shift database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Int64Var(&opts.agencyID, "agency-id", cfg.Seed.AgencyID, "agency that owns the inserted records")
	root.PersistentFlags().StringVar(&opts.emailDomain, "email-domain", "example.com", "domain for generated email addresses")

	root.AddCommand(
		newStaffCommand(cfg, opts),
		newClientsCommand(cfg, opts),
		newShiftsCommand(cfg, opts),
		newImportCommand(cfg, opts),
		newTokenCommand(cfg, opts),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// openRepository connects to the database. The returned func closes the pool.
func openRepository(cfg *config.Config) (*repository.Repository, func(), error) {
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		dbpool.Close()
		return nil, nil, err
	}

	return repository.NewRepository(cfg, dbpool), func() { dbpool.Close() }, nil
}

func newStaffCommand(cfg *config.Config, opts *rootOptions) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Insert random active staff",
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 {
				return errors.New("--count must be positive")
			}

			repo, closeDB, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			cnt := 0
			for i := 0; i < n; i++ {
				staff := utils.GenerateRandomStaff(opts.agencyID, opts.emailDomain)
				if err := repo.CreateStaff(cmd.Context(), staff); err != nil {
					slog.Error("failed to insert staff", slog.String("error", err.Error()))
					continue
				}
				cnt++
			}

			slog.Info("staff inserted", slog.Int("count", cnt))
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 5, "number of staff to insert")

	return cmd
}

func newClientsCommand(cfg *config.Config, opts *rootOptions) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Insert random client care homes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 {
				return errors.New("--count must be positive")
			}

			repo, closeDB, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			cnt := 0
			for i := 0; i < n; i++ {
				client := utils.GenerateRandomClient(opts.agencyID, opts.emailDomain)
				if err := repo.CreateClient(cmd.Context(), client); err != nil {
					slog.Error("failed to insert client", slog.String("error", err.Error()))
					continue
				}
				cnt++
			}

			slog.Info("clients inserted", slog.Int("count", cnt))
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 3, "number of clients to insert")

	return cmd
}

func newShiftsCommand(cfg *config.Config, opts *rootOptions) *cobra.Command {
	var (
		n        int
		clientID int64
	)

	cmd := &cobra.Command{
		Use:   "shifts",
		Short: "Insert random open shifts for a client over the next two weeks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 || clientID <= 0 {
				return errors.New("--count and --client-id must be positive")
			}

			repo, closeDB, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			cnt := 0
			for i := 0; i < n; i++ {
				shift := utils.GenerateRandomShift(opts.agencyID, clientID, time.Now())
				if err := repo.CreateShift(cmd.Context(), shift); err != nil {
					slog.Error("failed to insert shift", slog.String("error", err.Error()))
					continue
				}
				cnt++
			}

			slog.Info("shifts inserted", slog.Int("count", cnt))
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 10, "number of shifts to insert")
	cmd.Flags().Int64Var(&clientID, "client-id", 0, "client the shifts belong to")

	return cmd
}

func newImportCommand(cfg *config.Config, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <staff|shifts> <file.csv>",
		Short: "Import staff or shifts from a CSV file with a header row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer file.Close()

			repo, closeDB, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			var sum seed.Summary
			switch args[0] {
			case "staff":
				sum, err = seed.ImportStaff(cmd.Context(), repo, file, opts.agencyID)
			case "shifts":
				sum, err = seed.ImportShifts(cmd.Context(), repo, file, opts.agencyID)
			default:
				return fmt.Errorf("unknown import kind %q", args[0])
			}
			if err != nil {
				return err
			}

			slog.Info("import finished", "kind", args[0], "imported", sum.Imported, "skipped", sum.Skipped)
			return nil
		},
	}

	return cmd
}

func newTokenCommand(cfg *config.Config, opts *rootOptions) *cobra.Command {
	var (
		userID int64
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed access token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch domain.UserRole(role) {
			case domain.UserRoleAgencyAdmin, domain.UserRoleManager, domain.UserRoleStaff:
			default:
				return fmt.Errorf("unknown role %q", role)
			}

			token, err := handler.NewAccessToken(cfg.JWT.Secret, userID, domain.UserRole(role), opts.agencyID, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user-id", 1, "subject of the token")
	cmd.Flags().StringVar(&role, "role", string(domain.UserRoleAgencyAdmin), "agency_admin, manager or staff")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")

	return cmd
}
