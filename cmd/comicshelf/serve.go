package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	apihttp "github.com/veikko/comicshelf/internal/http"
	"github.com/veikko/comicshelf/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the mirrored library over HTTP and sync in the background",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		app := apihttp.NewServer(a.cfg, apihttp.Deps{
			DB:     a.db,
			Engine: a.engine,
			Comics: a.comics,
			Images: a.images,
		})

		schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
		defer schedulerCancel()
		syncScheduler := scheduler.New(a.engine, a.notifier, scheduler.Config{
			Interval: time.Duration(a.cfg.SyncMinutes) * time.Minute,
		}, a.logger)
		if a.cfg.SyncEnabled {
			syncScheduler.Start(schedulerCtx)
		}

		go func() {
			if err := app.Listen(":" + a.cfg.Port); err != nil {
				a.logger.Error("server stopped", "error", err)
			}
		}()

		a.logger.Info("comicshelf serving", "port", a.cfg.Port, "env", a.cfg.Environment)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		a.logger.Info("shutting down")
		schedulerCancel()
		if a.cfg.SyncEnabled {
			syncScheduler.StopWait(2 * time.Second)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			a.logger.Error("shutdown error", "error", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
