package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	appRepos "github.com/yigit/swimdesk/internal/app/repositories"
	"github.com/yigit/swimdesk/internal/bootstrap"
	"github.com/yigit/swimdesk/internal/config"
	"github.com/yigit/swimdesk/internal/db"
	"github.com/yigit/swimdesk/internal/domain"
	"github.com/yigit/swimdesk/internal/pkg/logger"
	"github.com/yigit/swimdesk/internal/seed"
)

// app carries the pieces commands swap out in tests
type app struct {
	configPath   string
	out          io.Writer
	readPassword func(fd int) ([]byte, error)
	openDatabase func(ctx context.Context, configPath string) (*config.Config, *db.PostgresDB, error)
	adminStore   func(database *db.PostgresDB) seed.AdminStore
}

func defaultApp() *app {
	return &app{
		out:          os.Stdout,
		readPassword: term.ReadPassword,
		openDatabase: openDatabase,
		adminStore: func(database *db.PostgresDB) seed.AdminStore {
			return appRepos.NewUserRepository(database.Pool)
		},
	}
}

func openDatabase(ctx context.Context, configPath string) (*config.Config, *db.PostgresDB, error) {
	cfg, _, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, nil, err
	}
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, database, nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "swimdesk-admin",
		Short: "Operator tasks for the swim school API",
		Long: `swimdesk-admin runs maintenance tasks against the swim school database.

Environment Variables:
  CONFIG_PATH  YAML config file (default: configs/config.yaml)`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", config.GetEnv("CONFIG_PATH", bootstrap.DefaultConfigPath), "Path to the YAML config file")

	root.AddCommand(newMigrateCmd(a), newCreateAdminCmd(a), newUsageCmd(a))
	root.SetOut(a.out)
	return root
}

func newMigrateCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, database, err := a.openDatabase(ctx, a.configPath)
			if err != nil {
				return err
			}
			defer database.Close()

			if dir == "" {
				dir = cfg.Database.MigrationsDir
			}
			return bootstrap.RunMigrations(ctx, database, dir, logger.Get())
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Migrations directory (defaults to database.migrations_dir)")
	return cmd
}

func newCreateAdminCmd(a *app) *cobra.Command {
	var email, firstName, lastName string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account, or promote and reactivate an existing one",
		Long: `Create an admin account. The password is prompted for and never taken from flags.

An existing account with the same email is promoted to ADMIN, reactivated and given the new password.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(email) == "" {
				return errors.New("--email is required")
			}

			fmt.Fprint(a.out, "Enter password: ")
			pwd, err := a.readPassword(int(syscall.Stdin))
			fmt.Fprintln(a.out)
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}
			if len(pwd) == 0 {
				return errors.New("password must not be empty")
			}

			ctx := cmd.Context()
			_, database, err := a.openDatabase(ctx, a.configPath)
			if err != nil {
				return err
			}
			defer database.Close()

			user, err := seed.UpsertAdmin(ctx, a.adminStore(database), seed.AdminAccount{
				Email:     email,
				Password:  string(pwd),
				FirstName: firstName,
				LastName:  lastName,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Admin %s ready (id %d)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Admin email")
	cmd.Flags().StringVar(&firstName, "first-name", "School", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "Admin", "Last name")
	return cmd
}

func newUsageCmd(a *app) *cobra.Command {
	var (
		base        float64
		instructors int
		ratios      []string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Compute the seat usage of a hypothetical class",
		Long: `Compute filled seats, effective capacity and open seats for a class.

Each --ratio adds one enrollment. Unknown or empty ratios count as 3:1.`,
		Example: "  swimdesk-admin usage --base 4 --instructors 2 --ratio 1:1 --ratio 3:1",
		RunE: func(_ *cobra.Command, _ []string) error {
			if base < 0 {
				return errors.New("--base cannot be negative")
			}
			if instructors < 0 {
				return errors.New("--instructors cannot be negative")
			}

			result := domain.ComputeUsageForRatios(ratios, instructors, base)
			if jsonOutput {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Fprintf(a.out, "Filled:             %g\n", result.Filled)
			fmt.Fprintf(a.out, "Effective capacity: %g\n", result.EffectiveCapacity)
			fmt.Fprintf(a.out, "Open seats:         %d\n", result.OpenSeats)
			return nil
		},
	}
	cmd.Flags().Float64Var(&base, "base", 0, "Base capacity of the class")
	cmd.Flags().IntVar(&instructors, "instructors", 1, "Number of assigned instructors")
	cmd.Flags().StringArrayVar(&ratios, "ratio", nil, "Class ratio of one enrollment (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	return cmd
}
