package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/sabbir-tanvir/storefront/backend"
	"github.com/sabbir-tanvir/storefront/cache"
)

const version = "storefront v0.1.0"

func main() {
	os.Exit(realMain(context.Background(), os.Args, os.Stdout))
}

func realMain(ctx context.Context, args []string, out io.Writer) int {
	if err := newApp(out).Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "storefront",
		Usage:     "query the storefront backend",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend",
				Usage:   "backend base URL",
				Value:   backend.DefaultBaseURL,
				Sources: cli.EnvVars("STOREFRONT_BACKEND_URL"),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "backend request timeout",
				Value: 15 * time.Second,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log backend traffic to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "products",
				Usage: "list products",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "maximum number of products (negative for all)",
						Value: cache.NoLimit,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "bypass the cache",
					},
				},
				Action: productsAction,
			},
			{
				Name:  "shops",
				Usage: "list shops",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "page number",
						Value: 1,
					},
				},
				Action: shopsAction,
			},
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, err := fmt.Fprintln(cmd.Root().Writer, version)
					return err
				},
			},
		},
	}
}

func newLogger(cmd *cli.Command) zerolog.Logger {
	if !cmd.Bool("debug") {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func newClient(cmd *cli.Command, logger zerolog.Logger) (*backend.Client, error) {
	return backend.New(
		backend.WithBaseURL(cmd.String("backend")),
		backend.WithHTTPClient(&http.Client{Timeout: cmd.Duration("timeout")}),
		backend.WithLogger(logger),
	)
}

func productsAction(ctx context.Context, cmd *cli.Command) error {
	logger := newLogger(cmd)
	client, err := newClient(cmd, logger)
	if err != nil {
		return err
	}

	var fetchErr error
	products := cache.NewShared(client.ListProducts,
		cache.WithName("products"),
		cache.WithLogger(logger),
		cache.WithErrorObserver(func(err error) { fetchErr = err }),
	)

	items := products.Get(ctx, cmd.Int("limit"), cmd.Bool("force"))
	// a one-shot run has nothing stale to fall back on
	if fetchErr != nil {
		return fmt.Errorf("list products: %w", fetchErr)
	}
	return printProducts(cmd.Root().Writer, items, products.FetchedAt(), time.Now())
}

func shopsAction(ctx context.Context, cmd *cli.Command) error {
	page := cmd.Int("page")
	if page < 1 {
		return fmt.Errorf("page must be at least 1, got %d", page)
	}
	client, err := newClient(cmd, newLogger(cmd))
	if err != nil {
		return err
	}
	shops, err := client.ListShops(ctx, page)
	if err != nil {
		return fmt.Errorf("list shops: %w", err)
	}
	return printShops(cmd.Root().Writer, shops, page)
}
