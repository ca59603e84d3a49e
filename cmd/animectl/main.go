// Command animectl talks to a running anime service.
//
//	animectl [-url URL] [-user USER] [-password PASSWORD] COMMAND [ARGS]
//
// Commands: list [-page N] [-size N], all, get ID, find NAME, create NAME,
// replace ID NAME, delete ID, admin-delete ID, demo.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/mkrupp/homecase-anime/internal/domain"
	"github.com/mkrupp/homecase-anime/internal/infra/config"
	"github.com/mkrupp/homecase-anime/internal/infra/logging"
	"github.com/mkrupp/homecase-anime/internal/svc/animesvc/animeclient"
)

const (
	appName = "anime"
	svcName = "animectl"
)

var (
	errUsage   = errors.New("usage: animectl [-url URL] [-user USER] [-password PASSWORD] COMMAND [ARGS]")
	errUnknown = errors.New("unknown command")
	errDemo    = errors.New("demo failed")
)

type Config struct {
	config.EnvConfig

	Log    logging.LoggerConfig         `envPrefix:"LOG_"`
	Client animeclient.HTTPClientConfig `envPrefix:"CLIENT_"`
}

func main() {
	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := config.LoadDotenv(".env"); err != nil {
		panic(err)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, args []string, out io.Writer) error {
	flags := flag.NewFlagSet(svcName, flag.ContinueOnError)
	flags.StringVar(&cfg.Client.BaseURL, "url", cfg.Client.BaseURL, "service base URL")
	flags.StringVar(&cfg.Client.Username, "user", cfg.Client.Username, "basic auth username")
	flags.StringVar(&cfg.Client.Password, "password", cfg.Client.Password, "basic auth password")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	if flags.NArg() == 0 {
		return errUsage
	}

	client := animeclient.NewHTTPClient(cfg.Client, nil)
	cmd, cmdArgs := flags.Arg(0), flags.Args()[1:]

	result, err := dispatch(ctx, client, cmd, cmdArgs, out)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}

	if result == nil {
		return nil
	}

	return printJSON(out, result)
}

//nolint:cyclop
func dispatch(ctx context.Context, client animeclient.AnimeClient, cmd string, args []string, out io.Writer) (any, error) {
	switch cmd {
	case "list":
		flags := flag.NewFlagSet("list", flag.ContinueOnError)
		page := flags.Int("page", 0, "zero-based page number")
		size := flags.Int("size", 0, "page size (server default when 0)")

		if err := flags.Parse(args); err != nil {
			return nil, fmt.Errorf("parse flags: %w", err)
		}

		return client.List(ctx, domain.PageRequest{Page: *page, Size: *size})
	case "all":
		return client.ListAll(ctx)
	case "get":
		id, err := argID(args)
		if err != nil {
			return nil, err
		}

		return client.Get(ctx, id)
	case "find":
		if len(args) != 1 {
			return nil, errUsage
		}

		return client.Find(ctx, args[0])
	case "create":
		if len(args) != 1 {
			return nil, errUsage
		}

		return client.Create(ctx, args[0])
	case "replace":
		if len(args) != 2 { //nolint:mnd
			return nil, errUsage
		}

		id, err := argID(args[:1])
		if err != nil {
			return nil, err
		}

		return nil, client.Replace(ctx, domain.Anime{ID: id, Name: args[1]})
	case "delete", "admin-delete":
		id, err := argID(args)
		if err != nil {
			return nil, err
		}

		if cmd == "admin-delete" {
			return nil, client.AdminDelete(ctx, id)
		}

		return nil, client.Delete(ctx, id)
	case "demo":
		return nil, demo(ctx, client, out)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknown, cmd)
	}
}

// demo walks through create, replace, fetch and delete of a single anime.
func demo(ctx context.Context, client animeclient.AnimeClient, out io.Writer) error {
	created, err := client.Create(ctx, "Samurai X")
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	fmt.Fprintf(out, "created %d %q\n", created.ID, created.Name)

	created.Name = "Samurai X 2"
	if err := client.Replace(ctx, created); err != nil {
		return fmt.Errorf("replace: %w", err)
	}

	replaced, err := client.Get(ctx, created.ID)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}

	fmt.Fprintf(out, "replaced %d %q\n", replaced.ID, replaced.Name)

	if err := client.Delete(ctx, created.ID); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	fmt.Fprintf(out, "deleted %d\n", created.ID)

	_, err = client.Get(ctx, created.ID)

	switch {
	case errors.Is(err, domain.ErrAnimeNotFound):
		fmt.Fprintf(out, "anime %d is gone\n", created.ID)
	case err != nil:
		return fmt.Errorf("get after delete: %w", err)
	default:
		return fmt.Errorf("%w: anime %d still present after delete", errDemo, created.ID)
	}

	return nil
}

func argID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsage
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse id: %w", err)
	}

	return id, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	return nil
}
