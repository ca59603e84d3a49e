package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrupp/homecase-anime/internal/infra/config"
	"github.com/mkrupp/homecase-anime/internal/infra/logging"
	"github.com/mkrupp/homecase-anime/internal/infra/transport/http"
	"github.com/mkrupp/homecase-anime/internal/repo/anime"
	"github.com/mkrupp/homecase-anime/internal/repo/database"
	"github.com/mkrupp/homecase-anime/internal/repo/user"
	"github.com/mkrupp/homecase-anime/internal/svc/animesvc"
	"github.com/mkrupp/homecase-anime/internal/svc/authsvc"
)

const (
	appName = "anime"
	svcName = "animesvc"
)

type Config struct {
	config.EnvConfig

	Log   logging.LoggerConfig         `envPrefix:"LOG_"`
	HTTP  animesvc.HTTPTransportConfig `envPrefix:"HTTP_"`
	DB    database.SQLiteConfig        `envPrefix:"DB_"`
	Auth  authsvc.AuthConfig           `envPrefix:"AUTH_"`
	Anime animesvc.AnimeConfig         `envPrefix:"ANIME_"`
}

func main() {
	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotenv(".env"); err != nil {
		panic(err)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	defer func() {
		log := logging.GetLogger("cmd.animesvc")

		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)

			return
		}

		log.InfoContext(ctx, "shutdown")
	}()

	db, err := database.OpenSQLite(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	authSvc, err := authsvc.NewAuthService(user.SQLiteUserRepositoryFactory(db), cfg.Auth)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}

	animeSvc, err := animesvc.NewAnimeService(anime.SQLiteAnimeRepositoryFactory(db), cfg.Anime)
	if err != nil {
		return fmt.Errorf("new anime service: %w", err)
	}

	httpTransport := animesvc.NewHTTPTransport(animeSvc, authSvc, cfg.HTTP)

	if err := http.ListenAndServe(ctx, httpTransport, cfg.HTTP.HTTPTransportConfig); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
