// Command useradm manages the accounts allowed to call the anime service.
//
//	useradm add [-name NAME] [-roles ROLE_USER,ROLE_ADMIN] USERNAME PASSWORD
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mkrupp/homecase-anime/internal/domain"
	"github.com/mkrupp/homecase-anime/internal/infra/config"
	"github.com/mkrupp/homecase-anime/internal/infra/logging"
	"github.com/mkrupp/homecase-anime/internal/repo/database"
	"github.com/mkrupp/homecase-anime/internal/repo/user"
	"github.com/mkrupp/homecase-anime/internal/svc/authsvc"
)

const (
	appName = "anime"
	svcName = "useradm"
)

var errUsage = errors.New("usage: useradm add [-name NAME] [-roles ROLES] USERNAME PASSWORD")

type Config struct {
	config.EnvConfig

	Log  logging.LoggerConfig  `envPrefix:"LOG_"`
	DB   database.SQLiteConfig `envPrefix:"DB_"`
	Auth authsvc.AuthConfig    `envPrefix:"AUTH_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.LoadDotenv(".env"); err != nil {
		panic(err)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, args []string) error {
	if len(args) == 0 || args[0] != "add" {
		return errUsage
	}

	flags := flag.NewFlagSet("add", flag.ContinueOnError)
	name := flags.String("name", "", "display name (defaults to USERNAME)")
	roles := flags.String("roles", string(domain.RoleUser), "comma-separated authorities")

	if err := flags.Parse(args[1:]); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	if flags.NArg() != 2 { //nolint:mnd
		return errUsage
	}

	username, password := flags.Arg(0), flags.Arg(1)
	if *name == "" {
		*name = username
	}

	db, err := database.OpenSQLite(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	authSvc, err := authsvc.NewAuthService(user.SQLiteUserRepositoryFactory(db), cfg.Auth)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}

	created, err := authSvc.RegisterUser(ctx, *name, username, password, domain.ParseAuthorities(*roles))
	if err != nil {
		return fmt.Errorf("add user: %w", err)
	}

	fmt.Printf("added %s (id %d) with %s\n", created.Username, created.ID, created.Authorities)

	return nil
}
