package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/andy6609/niochat/internal/chat"
	"github.com/andy6609/niochat/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (defaults only when empty)")
	addr := flag.String("addr", "", "chat listen address (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "metrics listen address (overrides config and enables metrics)")
	wsAddr := flag.String("ws-addr", "", "websocket gateway listen address (overrides config)")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = *metricsAddr
	}
	if *wsAddr != "" {
		cfg.Server.WSAddr = *wsAddr
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	framing, err := chat.ParseFraming(cfg.Server.Framing)
	if err != nil {
		return err
	}

	tcp, err := chat.ListenTCP(cfg.Server.Addr)
	if err != nil {
		return err
	}
	listeners := []chat.Listener{tcp}

	var servers []*http.Server
	var wsLn net.Listener
	if cfg.Server.WSAddr != "" {
		wsLn, err = net.Listen("tcp", cfg.Server.WSAddr)
		if err != nil {
			_ = tcp.Close()
			return err
		}
		gateway := chat.NewWebSocketListener(wsLn.Addr(), cfg.Server.ReadBufferSize, cfg.Server.AllowedOrigins, logger)
		listeners = append(listeners, gateway)

		mux := http.NewServeMux()
		mux.Handle(cfg.Server.WSPath, gateway)
		servers = append(servers, newHTTPServer(mux))
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsSrv = newHTTPServer(mux)
		metricsSrv.Addr = cfg.Metrics.Addr
		servers = append(servers, metricsSrv)
	}

	srv := chat.NewServer(logger, chat.Options{
		Framing:        framing,
		ReadBufferSize: cfg.Server.ReadBufferSize,
		WriteTimeout:   cfg.Server.WriteTimeout,
		EventBuffer:    cfg.Server.EventBuffer,
	}, listeners...)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Run)

	if wsLn != nil {
		wsSrv := servers[0]
		g.Go(func() error {
			logger.Info("websocket gateway listening", "addr", wsLn.Addr().String(), "path", cfg.Server.WSPath)
			if err := wsSrv.Serve(wsLn); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	if metricsSrv != nil {
		g.Go(func() error {
			logger.Info("metrics listening", "addr", metricsSrv.Addr, "path", cfg.Metrics.Path)
			if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		if err := srv.Close(); err != nil {
			logger.Error("closing chat listeners", "error", err)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, s := range servers {
			_ = s.Shutdown(shutdownCtx)
		}
		return nil
	})

	return g.Wait()
}

func newHTTPServer(h http.Handler) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
