package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/seqlab/counterseq/internal/server"
	"github.com/seqlab/counterseq/pkg/cache"
	apperrors "github.com/seqlab/counterseq/pkg/errors"
	"github.com/seqlab/counterseq/pkg/store"
)

const (
	storeMemory = "memory"
	storeRedis  = "redis"
	storeMongo  = "mongo"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		storeKind string
		redisAddr string
		mongoURI  string
		mongoDB   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the counterseq HTTP API",
		Long: `Serve runs the HTTP API for registering studies and generating participant
assignments. The memory store keeps everything in-process and is lost on
exit; Redis and MongoDB persist studies across restarts.

Backend addresses may also come from the REDIS_ADDR and MONGO_URI
environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := c.openStore(ctx, storeKind, redisAddr, mongoURI, mongoDB)
			if err != nil {
				return err
			}
			defer st.Close()

			if storeKind == storeMemory {
				printWarning("Memory store: studies are lost when the server exits")
			}
			printInfo("Serving on %s (store: %s)", addr, storeKind)
			srv := server.New(st, server.WithLogger(c.Logger))
			if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&storeKind, "store", storeMemory, "persistence backend: memory, redis, mongo")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", envOr("REDIS_ADDR", "localhost:6379"), "redis address (with --store redis)")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", envOr("MONGO_URI", "mongodb://localhost:27017"), "mongodb URI (with --store mongo)")
	cmd.Flags().StringVar(&mongoDB, "mongo-db", "", "mongodb database name (default counterseq)")

	return cmd
}

// openStore connects the requested backend. Backend dials are retried with
// backoff so the server can start alongside a database that is still
// coming up.
func (c *CLI) openStore(ctx context.Context, kind, redisAddr, mongoURI, mongoDB string) (store.Store, error) {
	switch kind {
	case storeMemory:
		return store.NewMemory(), nil

	case storeRedis:
		var s *store.Redis
		err := cache.RetryWithBackoff(ctx, func() error {
			rs, err := store.NewRedis(ctx, store.RedisConfig{Addr: redisAddr})
			if err != nil {
				c.Logger.Warn("redis not ready", "addr", redisAddr, "err", err)
				return cache.Retryable(err)
			}
			s = rs
			return nil
		})
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeStoreUnavailable, err, "connecting to redis at %s", redisAddr)
		}
		return s, nil

	case storeMongo:
		var s *store.Mongo
		err := cache.RetryWithBackoff(ctx, func() error {
			ms, err := store.NewMongo(ctx, store.MongoConfig{URI: mongoURI, Database: mongoDB})
			if err != nil {
				c.Logger.Warn("mongodb not ready", "uri", mongoURI, "err", err)
				return cache.Retryable(err)
			}
			s = ms
			return nil
		})
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeStoreUnavailable, err, "connecting to mongodb")
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store: %s (must be 'memory', 'redis', or 'mongo')", kind)
}

// envOr returns the environment variable's value, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
