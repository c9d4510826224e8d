// Command shuttle serves the campus shuttle board over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"shuttle.campusbus.org/internal/appconf"
	"shuttle.campusbus.org/internal/buildinfo"
	"shuttle.campusbus.org/internal/logging"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to a JSON config file; other flags are ignored when set")
		envFile    = flag.String("env-file", ".env", "Path to a .env file (ignored when missing)")
		port       = flag.Int("port", appconf.DefaultPort, "API server port")
		env        = flag.String("env", "development", "Environment (development|test|production)")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
		rateLimit  = flag.Int("rate-limit", appconf.DefaultRateLimit, "Requests per second per client")
		schedule   = flag.String("schedule", "", "Path to a schedule YAML file (built-in schedule when empty)")
		prefsPath  = flag.String("prefs", appconf.DefaultPrefsPath, "Path to the SQLite preference database")
		natsURL    = flag.String("nats-url", "", "NATS server to publish live snapshots to (disabled when empty)")
		lang       = flag.String("lang", appconf.DefaultLang, "Default language (en|zh)")
		version    = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("shuttle %s (%s)\n", buildinfo.Version, buildinfo.ShortCommit())
		return
	}

	if err := appconf.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var cfg appconf.Config
	if *configFile != "" {
		jsonConfig, err := appconf.LoadFromFile(*configFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg, err = jsonConfig.ToAppConfig()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	} else {
		cfg = appconf.ApplyEnv(appconf.Default())
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "port":
				cfg.Port = *port
			case "env":
				cfg.Env = appconf.ParseEnvironment(*env)
			case "verbose":
				cfg.Verbose = *verbose
			case "rate-limit":
				cfg.RateLimit = *rateLimit
			case "schedule":
				cfg.SchedulePath = *schedule
			case "prefs":
				cfg.PrefsPath = *prefsPath
			case "nats-url":
				cfg.NatsURL = *natsURL
			case "lang":
				cfg.DefaultLang = *lang
			}
		})
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	coreApp, err := BuildApplication(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	srv, api, err := CreateServer(coreApp, cfg)
	if err != nil {
		logging.LogError(coreApp.Logger, "failed to create server", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, srv, coreApp, api); err != nil {
		logging.LogError(coreApp.Logger, "server exited with error", err, slog.String("version", buildinfo.Version))
		os.Exit(1)
	}
}
