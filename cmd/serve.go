package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Rorical/MediBot/internal/cache"
	"github.com/Rorical/MediBot/internal/config"
	"github.com/Rorical/MediBot/internal/knowledge"
	"github.com/Rorical/MediBot/internal/llm"
	"github.com/Rorical/MediBot/internal/logging"
	"github.com/Rorical/MediBot/internal/server"
)

const defaultRedisTTL = time.Hour

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MediBot backend",
	Long: `Serve /api/health and /api/chat. Answers come from Gemini or an OpenAI
compatible model, grounded in the local knowledge base built with "medibot kb ingest".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loadDotEnv()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logging.SetupConsole(cfg.LogLevel, os.Stderr)
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv, cleanup, err := buildServer(ctx, cfg.Server)
		if err != nil {
			return err
		}
		defer cleanup()

		return runHTTP(ctx, cfg.Server.Addr, srv.Router())
	},
}

// loadDotEnv reads .env.local, then .env. Variables already set win.
func loadDotEnv() {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("failed to load env file")
		}
	}
}

func buildServer(ctx context.Context, sc config.ServerConfig) (*server.Server, func(), error) {
	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Debug().Err(err).Msg("cleanup failed")
			}
		}
	}

	opts := []server.Option{
		server.WithTopK(sc.TopK),
		server.WithRateLimit(sc.RatePerMinute),
		server.WithTrustProxy(sc.TrustProxy),
	}

	responder, err := llm.New(ctx, sc)
	if err != nil {
		return nil, cleanup, errors.Wrap(err, "failed to set up model")
	}
	if responder == nil {
		log.Warn().Msg("no model configured, set GEMINI_API or OPENAI_API_KEY")
	} else {
		closers = append(closers, responder.Close)
		log.Info().Str("model", responder.Name()).Msg("model ready")
	}

	store, err := openKnowledgeBase(sc)
	if err != nil {
		log.Warn().Err(err).Msg("knowledge base unavailable")
	} else {
		closers = append(closers, store.Close)
		st, err := store.Stats(ctx)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("knowledge base unreadable")
		case st.Passages == 0:
			log.Warn().Msg("knowledge base is empty, run `medibot kb ingest`")
		default:
			log.Info().Int("passages", st.Passages).Int("sources", st.Sources).Msg("knowledge base ready")
			opts = append(opts, server.WithRetriever(store))
		}
	}

	if c := answerCache(ctx, sc, &closers); c != nil {
		opts = append(opts, server.WithCache(c))
	}

	return server.New(responder, opts...), cleanup, nil
}

func openKnowledgeBase(sc config.ServerConfig) (*knowledge.Store, error) {
	path := sc.KBPath
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "knowledge.db")
	}
	return knowledge.Open(path)
}

func answerCache(ctx context.Context, sc config.ServerConfig, closers *[]func() error) cache.Cache {
	ttl := time.Duration(sc.CacheTTLSeconds) * time.Second
	if sc.RedisURL != "" {
		if ttl <= 0 {
			ttl = defaultRedisTTL
		}
		rc, err := cache.NewRedis(ctx, sc.RedisURL, ttl)
		if err == nil {
			*closers = append(*closers, rc.Close)
			log.Info().Dur("ttl", ttl).Msg("caching answers in redis")
			return rc
		}
		log.Warn().Err(err).Msg("redis unavailable, caching in memory")
	}
	if ttl <= 0 {
		return nil
	}
	return cache.NewMemory(ttl)
}

func runHTTP(ctx context.Context, addr string, handler http.Handler) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		log.Info().Str("addr", addr).Msg("MediBot backend listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server error")
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :5000)")
	rootCmd.AddCommand(serveCmd)
}
