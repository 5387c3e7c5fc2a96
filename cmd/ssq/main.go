// main is the entry point of the ssq command.
// It queries the given game servers once and prints one JSON line per target,
// or serves the HTTP API when a listen address is configured.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/ssq/internal/config"
	"github.com/woozymasta/ssq/internal/geoip"
	"github.com/woozymasta/ssq/internal/logger"
	"github.com/woozymasta/ssq/internal/probe"
	"github.com/woozymasta/ssq/internal/server"
	"github.com/woozymasta/ssq/internal/storage"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Parse()

	logger.Setup(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	var store *storage.Repository
	if cfg.Storage.Path != "" {
		var err error
		store, err = storage.New(cfg.Storage.Path)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize database")
			return 1
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing database")
			}
		}()
	}

	if cfg.Storage.PruneOlder > 0 {
		if !prune(store, cfg.Storage.PruneOlder) {
			return 1
		}
		return 0
	}

	// GeoIP
	var geoProvider *geoip.Provider
	if cfg.GeoIP.Path != "" {
		if err := geoip.EnsureDB(ctx, cfg.GeoIP.Path, cfg.GeoIP.URL, cfg.GeoIP.Interval); err != nil {
			log.Error().Err(err).Msg("Failed to download GeoIP database")
		}

		provider, err := geoip.Open(cfg.GeoIP.Path)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open GeoIP database, country detection disabled")
		} else {
			geoProvider = provider
			defer func() {
				if err := geoProvider.Close(); err != nil {
					log.Error().Err(err).Msg("Error closing GeoIP provider")
				}
			}()
		}
	}

	prober := probe.New(cfg.Query, geoProvider)

	if cfg.Server.Address != "" {
		serve(ctx, cfg, prober, store)
		return 0
	}

	if !query(ctx, prober, store, cfg.Args.Targets) {
		return 1
	}

	return 0
}

// query probes targets and prints one JSON snapshot per line.
// It reports whether every target answered.
func query(ctx context.Context, prober *probe.Prober, store *storage.Repository, targets []string) bool {
	enc := json.NewEncoder(os.Stdout)
	ok := true

	for _, res := range prober.Batch(ctx, targets) {
		if res.Err != nil {
			ok = false
			log.Error().Err(res.Err).Str("target", res.Input).Msg("Target skipped")
			continue
		}

		snap := res.Snapshot
		if !snap.Online {
			ok = false
		}

		if store != nil {
			if err := store.InsertSnapshot(snap); err != nil {
				log.Error().Err(err).Str("target", snap.Target).Msg("Failed to save snapshot")
			}
		}

		if err := enc.Encode(snap); err != nil {
			log.Error().Err(err).Msg("Failed to write snapshot")
			return false
		}
	}

	return ok
}

func serve(ctx context.Context, cfg *config.Config, prober *probe.Prober, store *storage.Repository) {
	srvHandler := server.New(prober, store, cfg)
	defer srvHandler.Close()

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srvHandler.Run(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Query.SendTimeout + 3*cfg.Query.ReceiveTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func prune(store *storage.Repository, olderThan time.Duration) bool {
	cutoff := time.Now().UTC().Add(-olderThan)

	deleted, err := store.PruneBefore(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune snapshots")
		return false
	}

	log.Info().Int64("deleted", deleted).Time("before", cutoff).Msg("Snapshots pruned")
	return true
}
