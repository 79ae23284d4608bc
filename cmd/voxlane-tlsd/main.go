// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

// Voxlane-tlsd terminates TLS for SIP traffic and relays the
// cleartext to the proxy core. It serves an admin socket for
// voxlanectl and reloads its configuration on SIGHUP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/voxlane/voxlane/admin"
	"github.com/voxlane/voxlane/config"
	"github.com/voxlane/voxlane/keylog"
	"github.com/voxlane/voxlane/lib/clock"
	"github.com/voxlane/voxlane/lib/shmem"
	"github.com/voxlane/voxlane/lib/version"
	"github.com/voxlane/voxlane/tlscfg"
	"github.com/voxlane/voxlane/tlserr"
	"github.com/voxlane/voxlane/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var logLevel string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "path to config file (required)")
	flag.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("voxlane-tlsd %s\n", version.Info())
		return nil
	}

	if configPath == "" {
		return fmt.Errorf("-config is required")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid -log-level %q: %w", logLevel, err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	configuration, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := configuration.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	sweepInterval, err := configuration.ParseSweepInterval()
	if err != nil {
		return err
	}

	logger.Info("starting voxlane-tlsd",
		"version", version.Info(),
	)
	logger.Info("loaded configuration",
		"listen_address", configuration.ListenAddress,
		"upstream_address", configuration.UpstreamAddress,
		"domains", len(configuration.Domains),
		"keylog_mode", configuration.Keylog.Mode,
	)

	arena, err := shmem.NewArena(configuration.SharedArenaBytes)
	if err != nil {
		return fmt.Errorf("failed to create shared arena: %w", err)
	}
	defer arena.Close()

	keylogSettings, err := configuration.KeylogSettings()
	if err != nil {
		return err
	}
	exporter := keylog.NewExporter(keylogSettings, logger)
	if err := exporter.Init(); err != nil {
		return fmt.Errorf("failed to initialize keylog export: %w", err)
	}
	defer exporter.Close()
	if exporter.Enabled() {
		logger.Info("keylog export enabled",
			"file", configuration.Keylog.File,
			"peer", configuration.Keylog.Peer,
		)
	}

	domains, err := config.BuildDomainSet(configuration.Domains, exporter, arena)
	if err != nil {
		return fmt.Errorf("failed to build TLS domains: %w", err)
	}
	registry := tlscfg.NewRegistry(domains, func(old *config.DomainSet) {
		logger.Info("destroyed stale configuration generation", "domains", old.Names())
	})

	errorQueue := tlserr.NewRingQueue(64)

	daemon := &daemon{
		configPath: configPath,
		registry:   registry,
		exporter:   exporter,
		arena:      arena,
		logger:     logger,
	}

	adminServer := admin.NewServer(configuration.AdminSocketPath, daemon, logger)
	if err := adminServer.Listen(); err != nil {
		return err
	}
	defer adminServer.Close()

	server, err := transport.NewServer(transport.ServerConfig{
		ListenAddress:   configuration.ListenAddress,
		UpstreamAddress: configuration.UpstreamAddress,
		Registry:        registry,
		ErrorQueue:      errorQueue,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	if err := server.Listen(); err != nil {
		return err
	}
	defer server.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var workers sync.WaitGroup
	workers.Add(1)
	go func() {
		defer workers.Done()
		tlscfg.RunSweeper(ctx, registry, clock.Real(), sweepInterval, logger)
	}()
	workers.Add(1)
	go func() {
		defer workers.Done()
		if err := adminServer.Serve(ctx); err != nil {
			logger.Error("admin server failed", "error", err)
		}
	}()
	workers.Add(1)
	go func() {
		defer workers.Done()
		daemon.handleReloadSignals(ctx)
	}()

	logger.Info("listening", "address", server.Address().String(), "admin_socket", configuration.AdminSocketPath)

	err = server.Serve(ctx)
	stop()
	workers.Wait()
	if err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}

// daemon wires the admin surface to the running components.
type daemon struct {
	configPath string
	registry   *tlscfg.Registry[*config.DomainSet]
	exporter   *keylog.Exporter
	arena      *shmem.Arena
	logger     *slog.Logger

	// reloadMu serializes reloads from the admin socket and SIGHUP.
	reloadMu sync.Mutex
}

func (d *daemon) Status() admin.Status {
	stats := d.registry.Stats()
	domains := d.registry.Checkout()
	defer domains.Checkin()

	return admin.Status{
		Version:          version.Info(),
		Generations:      stats.Generations,
		StaleGenerations: stats.Stale,
		HeadRefs:         stats.HeadRefs,
		Domains:          domains.Payload().Names(),
		KeylogEnabled:    d.exporter.Enabled(),
	}
}

func (d *daemon) Collect() int {
	return d.registry.Collect()
}

// Reload re-reads the configuration file and installs the new domain
// set as a fresh generation. Established connections keep their
// snapshot; only the domain list is reloadable, the listen addresses
// and keylog settings stay as started.
func (d *daemon) Reload() (int, error) {
	d.reloadMu.Lock()
	defer d.reloadMu.Unlock()

	configuration, err := config.LoadFile(d.configPath)
	if err != nil {
		return 0, fmt.Errorf("reloading config: %w", err)
	}
	if err := configuration.Validate(); err != nil {
		return 0, fmt.Errorf("invalid config on reload: %w", err)
	}

	domains, err := config.BuildDomainSet(configuration.Domains, d.exporter, d.arena)
	if err != nil {
		return 0, fmt.Errorf("rebuilding TLS domains: %w", err)
	}

	d.registry.Install(domains)
	collected := d.registry.Collect()
	d.logger.Info("configuration reloaded",
		"domains", domains.Names(),
		"collected", collected,
	)
	return collected, nil
}

// handleReloadSignals reloads the configuration on each SIGHUP until
// ctx is cancelled. A failed reload keeps the current generation.
func (d *daemon) handleReloadSignals(ctx context.Context) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP)
	defer signal.Stop(signals)

	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
			if _, err := d.Reload(); err != nil {
				d.logger.Error("SIGHUP reload failed", "error", err)
			}
		}
	}
}
