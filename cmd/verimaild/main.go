// verimaild serves the email validation API over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/verimail/verimail"
	"github.com/verimail/verimail/cache"
	"github.com/verimail/verimail/server"
)

func main() {
	app := &cli.App{
		Name:  "verimaild",
		Usage: "email validation service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "listen",
				Value:   ":8080",
				Usage:   "address to serve HTTP on",
				EnvVars: []string{"VERIMAIL_LISTEN"},
			},
			&cli.StringFlag{
				Name:    "smtp-from-domain",
				Value:   verimail.DefaultSMTPFromDomain,
				Usage:   "domain presented in HELO and MAIL FROM",
				EnvVars: []string{"VERIMAIL_SMTP_FROM_DOMAIN"},
			},
			&cli.DurationFlag{
				Name:    "smtp-timeout",
				Value:   verimail.DefaultSMTPTimeout,
				Usage:   "whole-dialogue deadline for one SMTP probe",
				EnvVars: []string{"VERIMAIL_SMTP_TIMEOUT"},
			},
			&cli.StringFlag{
				Name:    "smtp-proxy",
				Usage:   "SOCKS5 proxy (host:port) for SMTP probes",
				EnvVars: []string{"VERIMAIL_SMTP_PROXY"},
			},
			&cli.StringFlag{
				Name:    "disposable-list",
				Usage:   "path to an extra line-delimited disposable domain list",
				EnvVars: []string{"VERIMAIL_DISPOSABLE_LIST"},
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for a shared bulk result cache (optional)",
				EnvVars: []string{"VERIMAIL_REDIS_ADDR"},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				EnvVars: []string{"VERIMAIL_REDIS_PASSWORD"},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				EnvVars: []string{"VERIMAIL_REDIS_DB"},
			},
			&cli.IntFlag{
				Name:    "batch-size",
				Value:   verimail.DefaultBatchSize,
				Usage:   "bulk chunk size",
				EnvVars: []string{"VERIMAIL_BATCH_SIZE"},
			},
			&cli.DurationFlag{
				Name:    "batch-delay",
				Value:   verimail.DefaultBatchDelay,
				Usage:   "pause between bulk chunks",
				EnvVars: []string{"VERIMAIL_BATCH_DELAY"},
			},
			&cli.IntFlag{
				Name:    "max-concurrent",
				Value:   verimail.DefaultMaxConcurrent,
				Usage:   "in-flight validations per bulk chunk",
				EnvVars: []string{"VERIMAIL_MAX_CONCURRENT"},
			},
			&cli.IntFlag{
				Name:    "max-bulk",
				Value:   server.DefaultMaxBulk,
				Usage:   "largest accepted bulk request",
				EnvVars: []string{"VERIMAIL_MAX_BULK"},
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "verbose development logging",
				EnvVars: []string{"VERIMAIL_DEBUG"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger, err := buildLogger(c.Bool("debug"))
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v := verimail.New().WithConfig(verimail.Config{
		SMTPFromDomain: c.String("smtp-from-domain"),
		SMTPTimeout:    c.Duration("smtp-timeout"),
		ProxyAddr:      c.String("smtp-proxy"),
		BatchSize:      c.Int("batch-size"),
		BatchDelay:     c.Duration("batch-delay"),
		MaxConcurrent:  c.Int("max-concurrent"),
	})

	if path := c.String("disposable-list"); path != "" {
		if v, err = v.WithDisposableList(path); err != nil {
			logger.Warn("disposable list not loaded, using bundled corpus", zap.Error(err))
		} else {
			logger.Info("disposable list loaded", zap.String("path", path))
		}
	}

	if addr := c.String("redis-addr"); addr != "" {
		redisCache, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:     addr,
			Password: c.String("redis-password"),
			DB:       c.Int("redis-db"),
		})
		if err != nil {
			return err
		}
		defer redisCache.Close()
		v.WithResultCache(redisCache)
		logger.Info("redis result cache enabled", zap.String("addr", addr))
	}

	srv := &http.Server{
		Addr:              c.String("listen"),
		Handler:           server.New(v, logger, server.Config{MaxBulk: c.Int("max-bulk")}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
