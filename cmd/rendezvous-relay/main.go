// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/rendezvous/lib/assets"
	"github.com/bureau-foundation/rendezvous/lib/clock"
	"github.com/bureau-foundation/rendezvous/lib/config"
	"github.com/bureau-foundation/rendezvous/lib/mailbox"
	"github.com/bureau-foundation/rendezvous/lib/process"
	"github.com/bureau-foundation/rendezvous/lib/relay"
	"github.com/bureau-foundation/rendezvous/lib/server"
	"github.com/bureau-foundation/rendezvous/lib/service"
	"github.com/bureau-foundation/rendezvous/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

// flags are the parsed command line. Only flags the user actually set
// override the config file.
type flags struct {
	configPath  string
	host        string
	port        int
	logLevel    string
	logFormat   string
	showVersion bool
	showHelp    bool

	set *pflag.FlagSet
}

func parseFlags(args []string, output io.Writer) (*flags, error) {
	parsed := &flags{}
	flagSet := pflag.NewFlagSet("rendezvous-relay", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.StringVar(&parsed.configPath, "config", "", "config file (YAML, or JSON/JSONC by extension); overrides "+config.EnvironmentVariable)
	flagSet.StringVar(&parsed.host, "host", "", "listen host")
	flagSet.IntVar(&parsed.port, "port", 0, "listen port")
	flagSet.StringVar(&parsed.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flagSet.StringVar(&parsed.logFormat, "log-format", "", "log format: json or text")
	flagSet.BoolVar(&parsed.showVersion, "version", false, "print version information and exit")
	flagSet.BoolVarP(&parsed.showHelp, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			parsed.showHelp = true
			parsed.set = flagSet
			return parsed, nil
		}
		return nil, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	parsed.set = flagSet
	return parsed, nil
}

// loadConfig reads the config file, if any, and applies flag overrides.
func (f *flags) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if f.set.Changed("host") {
		cfg.Listen.Host = f.host
	}
	if f.set.Changed("port") {
		cfg.Listen.Port = f.port
	}
	if f.set.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if f.set.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run() error {
	parsed, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		return err
	}
	if parsed.showHelp {
		fmt.Fprintf(os.Stderr, "Usage: rendezvous-relay [flags]\n\n%s", parsed.set.FlagUsages())
		return nil
	}
	if parsed.showVersion {
		fmt.Printf("rendezvous-relay %s\n", version.Full())
		return nil
	}

	cfg, err := parsed.loadConfig()
	if err != nil {
		return err
	}

	logger, err := service.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	logger.Info("starting rendezvous relay",
		"version", version.Info(),
		"address", cfg.Listen.Address(),
		"queue_capacity", cfg.Mailbox.QueueCapacity,
		"idle_expiry", cfg.Mailbox.IdleExpiry,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bundle, err := assets.Load()
	if err != nil {
		return fmt.Errorf("loading client assets: %w", err)
	}

	registry := mailbox.NewRegistry(mailbox.RegistryConfig{
		Capacity: cfg.Mailbox.QueueCapacity,
		Clock:    clock.Real(),
		Logger:   logger,
	})
	relayHandler := relay.NewHandler(registry, relay.Options{
		Logger:            logger,
		ResetTimeout:      cfg.Relay.ResetTimeout,
		MessagesPerSecond: cfg.Relay.MessagesPerSecond,
		MessageBurst:      cfg.Relay.MessageBurst,
	})
	httpServer := service.NewHTTPServer(service.HTTPServerConfig{
		Address: cfg.Listen.Address(),
		Handler: server.New(server.Options{
			Relay:             relayHandler,
			Registry:          registry,
			Assets:            bundle,
			Logger:            logger,
			AllowedOrigins:    cfg.Relay.AllowedOrigins,
			MaxMessageBytes:   cfg.Relay.MaxMessageBytes,
			TrustProxyHeaders: cfg.Listen.TrustProxyHeaders,
		}),
		Logger: logger,
	})

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		// Upgraded connections outlive Shutdown; closing the registry
		// once the listener has drained ends them.
		defer registry.Close()
		return httpServer.Serve(groupCtx)
	})
	group.Go(func() error {
		return registry.RunExpiry(groupCtx, cfg.Mailbox.SweepInterval, cfg.Mailbox.IdleExpiry)
	})

	if err := group.Wait(); err != nil {
		return err
	}
	logger.Info("rendezvous relay stopped")
	return nil
}
