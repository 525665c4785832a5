package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/pkg/auth"
)

// AdminStore is the user persistence the seeder needs
type AdminStore interface {
	ExistsWithRole(ctx context.Context, role appModels.RoleType) (bool, error)
	UpsertAdmin(ctx context.Context, user *appModels.User) error
}

// AdminAccount describes the bootstrap admin
type AdminAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ErrAdminNotConfigured is returned when no admin exists and none is configured
var ErrAdminNotConfigured = errors.New("no active admin and no admin credentials configured")

// CreateDefaultAdmin makes sure the school has at least one active admin.
// Nothing is changed when one already exists.
func CreateDefaultAdmin(ctx context.Context, users AdminStore, account AdminAccount, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking for an active admin account...")

	exists, err := users.ExistsWithRole(ctx, appModels.RoleAdmin)
	if err != nil {
		return fmt.Errorf("checking admin accounts: %w", err)
	}
	if exists {
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return nil
	}

	if strings.TrimSpace(account.Email) == "" || account.Password == "" {
		lgr.Warn().Msg("No admin account exists; set ADMIN_EMAIL and ADMIN_PASSWORD or run the create-admin command")
		return ErrAdminNotConfigured
	}

	user, err := UpsertAdmin(ctx, users, account)
	if err != nil {
		return err
	}

	lgr.Info().Int64("adminID", user.ID).Str("email", user.Email).Msg("Default admin user created successfully")
	return nil
}

// UpsertAdmin hashes the password and creates or promotes the account to an active admin
func UpsertAdmin(ctx context.Context, users AdminStore, account AdminAccount) (*appModels.User, error) {
	if len(account.Password) < 8 {
		return nil, fmt.Errorf("admin password must be at least 8 characters")
	}

	hashedPassword, err := auth.HashPassword(account.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing admin password: %w", err)
	}

	user := &appModels.User{
		Email:     strings.ToLower(strings.TrimSpace(account.Email)),
		Password:  hashedPassword,
		FirstName: account.FirstName,
		LastName:  account.LastName,
	}
	if err := users.UpsertAdmin(ctx, user); err != nil {
		return nil, fmt.Errorf("creating admin user: %w", err)
	}
	return user, nil
}
