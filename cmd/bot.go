package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	telegram "edge-lab-bot/internal/api"
	"edge-lab-bot/internal/container"
	"edge-lab-bot/internal/infrastructure/metrics"
	"edge-lab-bot/internal/infrastructure/storage"
	"edge-lab-bot/internal/infrastructure/vision"
)

func newBotCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.runBot(ctx)
		},
	}
}

func (c *cli) runBot(ctx context.Context) error {
	if c.cfg.TelegramToken == "" {
		return errors.New("TELEGRAM_TOKEN is required")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	if c.cfg.MetricsAddr != "" {
		srv := c.serveMetrics(reg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// Пользователи и их изображения живут только в памяти процесса
	appContainer := container.New(
		storage.NewMemoryUserRepository(),
		storage.NewMemoryImageRepository(),
		collector.InstrumentDetector(vision.NewGoCVDetector()),
		collector.InstrumentCodec(c.newCodec()),
		c.log,
	)

	bot, err := telegram.NewBot(c.cfg.TelegramToken, appContainer, c.log)
	if err != nil {
		return err
	}

	c.log.Info().Msg("bot is running")
	return bot.Run(ctx)
}

func (c *cli) serveMetrics(reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))

	srv := &http.Server{
		Addr:              c.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		c.log.Info().Str("addr", srv.Addr).Msg("metrics endpoint started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.log.Error().Err(err).Msg("metrics endpoint stopped")
		}
	}()

	return srv
}
