// Command setup-admin provisions an ADMIN account: an external identity plus
// an ACTIVE user row. Running it for an existing email promotes and
// activates that user instead.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/synergia/erp-api/internal/app"
	"github.com/synergia/erp-api/internal/core/domain"
	"github.com/synergia/erp-api/internal/core/ports"
	"github.com/synergia/erp-api/internal/infrastructure/config"
	"github.com/synergia/erp-api/pkg/logger"
)

func main() {
	email := pflag.StringP("email", "e", "", "admin email (required)")
	name := pflag.StringP("name", "n", "Administrator", "display name")
	password := pflag.StringP("password", "p", "", "initial password; falls back to ADMIN_PASSWORD, then a generated one")
	envFile := pflag.String("env-file", ".env", "optional dotenv file to load first")
	pflag.Parse()

	_ = godotenv.Load(*envFile)

	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(os.Stderr, "setup-admin: --email is required")
		pflag.Usage()
		os.Exit(2)
	}
	if *password == "" {
		*password = os.Getenv("ADMIN_PASSWORD")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "setup-admin"})

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer store.Close(context.WithoutCancel(ctx))

	ident, err := app.OpenIdentity(ctx, cfg, store, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open identity provider")
	}
	defer ident.Close()

	svcs := app.NewServices(store, ident.Provider, log)
	user, generated, err := provision(ctx, store.Users, svcs.Users, *email, *name, *password)
	if err != nil {
		log.Fatal().Err(err).Str("email", *email).Msg("setup failed")
	}

	log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("admin ready")
	if generated != "" {
		fmt.Printf("temporary password for %s: %s\n", user.Email, generated)
	}
}

// provision invites the admin when the email is new, then makes sure the row
// is an ACTIVE ADMIN.
func provision(ctx context.Context, users ports.UserRepository, svc ports.UserService, email, name, password string) (*domain.User, string, error) {
	var generated string
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUserNotFound):
		res, err := svc.Invite(ctx, ports.InviteUserInput{
			Email:    email,
			Name:     name,
			Role:     domain.RoleAdmin,
			Password: password,
		})
		if err != nil {
			return nil, "", err
		}
		existing, generated = res.User, res.TemporaryPassword
	default:
		return nil, "", err
	}

	user, err := svc.Update(ctx, existing.ID, domain.UserPatch{
		Role:   domain.Some(domain.RoleAdmin),
		Status: domain.Some(domain.UserActive),
	})
	if err != nil {
		return nil, "", err
	}
	return user, generated, nil
}
