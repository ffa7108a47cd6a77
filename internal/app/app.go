package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	server "duskhollow/server"
	servernet "duskhollow/server/internal/net"
	"duskhollow/server/internal/storage"
	"duskhollow/server/logging"
	loggingSinks "duskhollow/server/logging/sinks"
)

// Config carries the process-level knobs. Environment variables fill the
// gaps: ADDR, LOG_SINKS, LOG_JSON_PATH, SESSION_SECRET, SESSION_TTL_MINUTES,
// WORLD_SEED, ALLOW_ANY_ORIGIN.
type Config struct {
	Addr   string
	Logger *log.Logger
}

// Run wires storage, logging, the hub and the HTTP surface, then blocks
// until the context is cancelled or the server fails.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	addr := cfg.Addr
	if addr == "" {
		addr = os.Getenv("ADDR")
	}
	if addr == "" {
		addr = ":8080"
	}

	logConfig := logging.DefaultConfig()
	if raw := os.Getenv("LOG_SINKS"); raw != "" {
		logConfig.EnabledSinks = strings.Split(raw, ",")
	}
	if path := os.Getenv("LOG_JSON_PATH"); path != "" {
		logConfig.JSON.FilePath = path
	}

	var namedSinks []logging.NamedSink
	if logConfig.HasSink("console") {
		namedSinks = append(namedSinks, logging.NamedSink{Name: "console", Sink: loggingSinks.NewConsole(os.Stdout)})
	}
	if logConfig.HasSink("json") && logConfig.JSON.FilePath != "" {
		jsonSink, err := loggingSinks.NewJSONFile(logConfig.JSON.FilePath)
		if err != nil {
			return fmt.Errorf("open json sink: %w", err)
		}
		namedSinks = append(namedSinks, logging.NamedSink{Name: "json", Sink: jsonSink})
	}

	router, err := logging.NewRouter(logConfig, logging.SystemClock{}, namedSinks)
	if err != nil {
		return fmt.Errorf("construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			logger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	tokenTTL := time.Duration(0)
	if raw := os.Getenv("SESSION_TTL_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			tokenTTL = time.Duration(minutes) * time.Minute
		} else {
			logger.Printf("invalid SESSION_TTL_MINUTES=%q", raw)
		}
	}
	var seed int64
	if raw := os.Getenv("WORLD_SEED"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			seed = parsed
		} else {
			logger.Printf("invalid WORLD_SEED=%q", raw)
		}
	}

	hub := server.NewHub(server.HubConfig{
		Logger:      logger,
		Publisher:   router,
		Store:       storage.NewMemoryStore(),
		TokenSecret: []byte(os.Getenv("SESSION_SECRET")),
		TokenTTL:    tokenTTL,
		Seed:        seed,
	})

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		Logger:         logger,
		AllowAnyOrigin: os.Getenv("ALLOW_ANY_ORIGIN") == "1",
	})
	srv := &http.Server{Addr: addr, Handler: handler}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return hub.RunWorldBroadcast(groupCtx) })
	group.Go(func() error { return hub.RunRegen(groupCtx) })
	group.Go(func() error { return hub.RunAI(groupCtx) })
	group.Go(func() error { return hub.RunLootSweep(groupCtx) })
	group.Go(func() error {
		logger.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
