// Package main provides the entry point for Planilha Festas.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"

	"github.com/pvsaraivar/Planilha-festas/internal/api"
	"github.com/pvsaraivar/Planilha-festas/internal/app"
	"github.com/pvsaraivar/Planilha-festas/internal/appinfo"
	"github.com/pvsaraivar/Planilha-festas/internal/catalog"
	"github.com/pvsaraivar/Planilha-festas/internal/config"
	"github.com/pvsaraivar/Planilha-festas/internal/event"
	"github.com/pvsaraivar/Planilha-festas/internal/fetch"
	"github.com/pvsaraivar/Planilha-festas/internal/refresh"
	"github.com/pvsaraivar/Planilha-festas/internal/schedule"
	"github.com/pvsaraivar/Planilha-festas/internal/sheet"
	"github.com/pvsaraivar/Planilha-festas/internal/singleinstance"
	"github.com/pvsaraivar/Planilha-festas/internal/store"
	"github.com/pvsaraivar/Planilha-festas/internal/version"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	cliApp := &cli.App{
		Name:    appinfo.AppName,
		Usage:   "Companion service for the party-listing spreadsheet.",
		Version: version.String(),
		Commands: []*cli.Command{
			serveCommand(),
			fetchCommand(),
			favoritesCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// loadConfig resolves the effective configuration: file, env overrides,
// then command-line flags.
func loadConfig(c *cli.Context) config.Config {
	cfg, _ := config.LoadConfig()
	cfg = config.ApplyEnvOverrides(cfg)

	if c.IsSet("port") {
		cfg.Port = c.Int("port")
	}
	if c.IsSet("sheet-url") {
		cfg.SheetURL = c.String("sheet-url")
	}
	return cfg
}

func openStore() (*store.Store, error) {
	dataDir, err := config.EnsureDataDir()
	if err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}
	return store.Open(filepath.Join(dataDir, appinfo.DatabaseFileName))
}

func buildNormalizer(cfg config.Config) (*event.Normalizer, error) {
	path := cfg.OverridesFile
	if path == "" {
		p, err := config.OverridesPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	overrides, err := config.LoadOverrides(path)
	if err != nil {
		return nil, err
	}
	return event.NewNormalizer(overrides), nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API with periodic sheet refreshes.",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Usage: "HTTP server port (overrides config)"},
			&cli.StringFlag{Name: "sheet-url", Usage: "CSV export URL (overrides config)"},
			&cli.BoolFlag{Name: "lan", Usage: "Bind to all interfaces instead of loopback"},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	release, ok, err := singleinstance.AcquireLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another instance is already running")
	}
	defer release()

	cfg := loadConfig(c)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	normalizer, err := buildNormalizer(cfg)
	if err != nil {
		return fmt.Errorf("load image overrides: %w", err)
	}

	cat := catalog.New()

	hub := api.NewHub()
	go hub.Run()

	fetcher := fetch.New(cfg.CSVURL(), db)
	refresher := refresh.New(fetcher, cat, normalizer,
		refresh.WithClock(refresh.LocationClock(loc)),
		refresh.WithRetry(3, refresh.DefaultBackoffConfig),
		refresh.WithOnReplace(func(count int, checksum string) {
			hub.Publish(&api.Notice{
				Events:    count,
				Checksum:  checksum,
				UpdatedAt: time.Now().In(loc),
			})
		}),
	)

	// Initial refresh so the API has data before the first cron tick.
	// A failure here is not fatal; the cache or a later tick fills in.
	initCtx, initCancel := context.WithTimeout(c.Context, time.Minute)
	if err := refresher.Refresh(initCtx); err != nil {
		log.Printf("Warning: initial refresh failed: %v", err)
	}
	initCancel()

	runner := cron.New(cron.WithLocation(loc))
	if _, err := refresher.Schedule(runner, cfg.RefreshCron); err != nil {
		return fmt.Errorf("schedule refresh %q: %w", cfg.RefreshCron, err)
	}
	runner.Start()

	clock := refresh.LocationClock(loc)
	health := app.HealthService{Version: version.String(), Catalog: cat}
	events := &app.EventsService{Catalog: cat, Favorites: db, Clock: clock}
	favorites := &app.FavoritesService{Store: db}

	host := "127.0.0.1"
	if c.Bool("lan") {
		host = "0.0.0.0"
	}
	addr := fmt.Sprintf("%s:%d", host, cfg.Port)

	server := api.NewServer(addr, health,
		api.WithEventsUsecase(events),
		api.WithFavoritesUsecase(favorites),
		api.WithHub(hub),
		api.WithCatalogStatus(cat),
		api.WithCORS(cfg.CORSOrigins),
		api.WithToggleRateLimit(api.DefaultRateLimiterConfig()),
		api.WithLocation(loc),
	)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting %s v%s on %s", appinfo.AppName, version.String(), addr)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-done:
		log.Println("Shutting down...")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Stop scheduling first, then the hub, then drain HTTP.
	cronCtx := runner.Stop()
	<-cronCtx.Done()

	hub.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	return nil
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch and normalize the sheet once, printing the result.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "sheet-url", Usage: "CSV export URL (overrides config)"},
			&cli.BoolFlag{Name: "no-cache", Usage: "Skip the local sheet cache"},
		},
		Action: func(c *cli.Context) error {
			cfg := loadConfig(c)

			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			var cache fetch.Cache
			if !c.Bool("no-cache") {
				db, err := openStore()
				if err != nil {
					return fmt.Errorf("open database: %w", err)
				}
				defer db.Close()
				cache = db
			}

			normalizer, err := buildNormalizer(cfg)
			if err != nil {
				return fmt.Errorf("load image overrides: %w", err)
			}

			res, err := fetch.New(cfg.CSVURL(), cache).Fetch(c.Context)
			if err != nil {
				return fmt.Errorf("fetch sheet: %w", err)
			}

			events := normalizer.Normalize(sheet.Parse(string(res.Body)))
			schedule.Sort(events, loc)

			now := time.Now().In(loc)
			for _, ev := range events {
				marker := " "
				if schedule.IsOver(ev, now) {
					marker = "x"
				}
				fmt.Printf("[%s] %-12s %-40s %s\n", marker, ev.Date, ev.Name, ev.Location)
			}
			fmt.Printf("%d events (from cache: %v)\n", len(events), res.FromCache)
			return nil
		},
	}
}

func favoritesCommand() *cli.Command {
	return &cli.Command{
		Name:  "favorites",
		Usage: "Inspect or toggle favorites.",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List favorited event slugs.",
				Action: func(c *cli.Context) error {
					db, err := openStore()
					if err != nil {
						return fmt.Errorf("open database: %w", err)
					}
					defer db.Close()

					slugs, err := db.ListFavorites(c.Context)
					if err != nil {
						return err
					}
					for _, slug := range slugs {
						fmt.Println(slug)
					}
					return nil
				},
			},
			{
				Name:      "toggle",
				Usage:     "Toggle the favorite state of an event slug.",
				ArgsUsage: "<slug>",
				Action: func(c *cli.Context) error {
					slug := c.Args().First()
					if slug == "" {
						return fmt.Errorf("usage: favorites toggle <slug>")
					}

					db, err := openStore()
					if err != nil {
						return fmt.Errorf("open database: %w", err)
					}
					defer db.Close()

					favorited, err := db.ToggleFavorite(c.Context, slug)
					if err != nil {
						return err
					}
					if favorited {
						fmt.Printf("%s favorited\n", slug)
					} else {
						fmt.Printf("%s unfavorited\n", slug)
					}
					return nil
				},
			},
		},
	}
}
