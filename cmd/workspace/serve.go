package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/workspace-planner/internal/application"
	httptransport "github.com/example/workspace-planner/internal/http"
	"github.com/example/workspace-planner/internal/persistence/badger"
)

const (
	shutdownTimeout  = 10 * time.Second
	badgerGCInterval = 5 * time.Minute
	badgerGCRatio    = 0.5
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), os.Stdout)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); cerr != nil {
					a.logger.Error("failed to close storage", "error", cerr)
				}
			}()
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) handler() (http.Handler, error) {
	users, err := a.directory()
	if err != nil {
		return nil, err
	}

	deps := application.Deps{
		Store:    a.store,
		Recorder: a.metrics,
		Now:      time.Now,
		Logger:   a.logger,
		Attempts: a.cfg.CommitAttempts,
	}
	floorPlans := application.NewFloorPlanService(deps)
	bookings := application.NewBookingService(deps)
	checkIns := application.NewCheckInService(deps)

	return httptransport.NewRouter(httptransport.RouterConfig{
		FloorPlans: httptransport.NewFloorPlanHandler(floorPlans, a.store, a.metrics, a.logger),
		Bookings:   httptransport.NewBookingHandler(bookings, a.logger),
		CheckIns:   httptransport.NewCheckInHandler(checkIns, a.logger),
		Users:      httptransport.NewUserHandler(application.NewUserService(users, a.logger), a.logger),
		Auth:       users,
		Metrics:    a.metrics.Handler(),
		Logger:     a.logger,
	}), nil
}

func (a *app) serve(ctx context.Context) error {
	handler, err := a.handler()
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// No WriteTimeout: /floorplan/stream connections are long lived.
		IdleTimeout: 60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("workspace API listening", "addr", server.Addr, "driver", a.cfg.StorageDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("failed to shutdown server", "error", err)
			return err
		}
		return nil
	})
	g.Go(func() error {
		return a.store.Watch(ctx, a.cfg.PollInterval)
	})
	if gc, ok := a.repo.(*badger.DocumentStore); ok {
		g.Go(func() error {
			a.runBadgerGC(ctx, gc)
			return nil
		})
	}
	return g.Wait()
}

func (a *app) runBadgerGC(ctx context.Context, db *badger.DocumentStore) {
	ticker := time.NewTicker(badgerGCInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := db.RunGC(badgerGCRatio); err != nil {
				a.logger.Warn("badger value log gc failed", "error", err)
			}
		}
	}
}
