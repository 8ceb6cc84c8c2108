// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aumos-ai/keri-agent/api"
	"github.com/aumos-ai/keri-agent/identity"
	"github.com/aumos-ai/keri-agent/metrics"
)

func newServeCmd(g *globals) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the driver HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if addr != "" {
				cfg.Server.Addr = addr
			}

			promReg := prometheus.NewRegistry()
			if err := promReg.Register(collectors.NewGoCollector()); err != nil {
				return fmt.Errorf("register go collector: %w", err)
			}
			rec := metrics.NewPrometheus()
			if err := rec.Register(promReg); err != nil {
				return fmt.Errorf("register metrics: %w", err)
			}

			reg, err := identity.NewRegistry(identity.Options{
				DigestCode: cfg.Digest(),
				Logger:     log,
				Metrics:    rec,
			})
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close() }()

			h, err := api.NewHandler(api.Options{
				Registry: reg,
				Logger:   log.Named("http"),
				Metrics:  rec,
				Gatherer: promReg,
				Version:  version,
			})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      h,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info("listening",
					zap.String("addr", cfg.Server.Addr),
					zap.String("env", cfg.App.Env),
					zap.String("digest", cfg.KERI.DigestCode),
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}
