package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	"golang.org/x/sync/errgroup"

	authhandler "familytree/internal/auth/handler"
	authservice "familytree/internal/auth/service"
	"familytree/internal/auth/store/revocation"
	userstore "familytree/internal/auth/store/user"
	familyhandler "familytree/internal/family/handler"
	familyservice "familytree/internal/family/service"
	personstore "familytree/internal/family/store/person"
	relationshipstore "familytree/internal/family/store/relationship"
	jwttoken "familytree/internal/jwt_token"
	"familytree/internal/photo"
	"familytree/internal/platform/config"
	"familytree/internal/platform/httpserver"
	"familytree/internal/platform/logger"
	"familytree/internal/platform/metrics"
	"familytree/internal/platform/postgres"
	"familytree/internal/platform/redis"
	ratelimit "familytree/internal/ratelimit/middleware"
	ratelimitmodels "familytree/internal/ratelimit/models"
	"familytree/internal/ratelimit/store/bucket"
	httptransport "familytree/internal/transport/http"
)

// revocationList is satisfied by both the Redis and in-memory lists.
type revocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	health := map[string]httptransport.HealthCheck{}

	var (
		familyTx familyservice.StoreTx
		users    authservice.UserStore
	)
	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer closeDB(db, log)
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		familyTx = newFamilyPostgresTx(db, cfg.Server.TxTimeout)
		users = userstore.NewPostgres(db)
		health["database"] = db.PingContext
		log.Info("using postgres stores")
	} else {
		familyTx = familyservice.NewInMemoryTx(personstore.NewInMemory(), relationshipstore.NewInMemory())
		users = userstore.New()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	var (
		trl     revocationList
		buckets ratelimit.BucketStore
	)
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		trl = revocation.NewRedisTRL(redisClient.Client)
		buckets = bucket.NewRedisBucketStore(redisClient.Client)
		health["redis"] = redisClient.Health
		log.Info("using redis for token revocation and rate limits")
	} else {
		trl = revocation.NewInMemoryTRL()
		buckets = bucket.NewInMemoryBucketStore()
		log.Warn("REDIS_URL not set, using in-memory token revocation and rate limits")
	}
	limiter := ratelimit.New(buckets, map[ratelimitmodels.EndpointClass]ratelimitmodels.Limit{
		ratelimitmodels.ClassAuth:  {Requests: cfg.RateLimit.AuthPerMinute, Window: time.Minute},
		ratelimitmodels.ClassWrite: {Requests: cfg.RateLimit.WritePerMinute, Window: time.Minute},
		ratelimitmodels.ClassRead:  {Requests: cfg.RateLimit.ReadPerMinute, Window: time.Minute},
	}, log,
		ratelimit.WithMetrics(m),
		ratelimit.WithDisabled(cfg.RateLimit.Disabled),
	)

	photoBucket, err := blob.OpenBucket(ctx, cfg.Photo.BucketURL)
	if err != nil {
		return fmt.Errorf("open photo bucket: %w", err)
	}
	defer photoBucket.Close()
	photos := photo.NewStore(photoBucket, cfg.Photo.PublicBaseURL, photo.WithMaxBytes(cfg.Photo.MaxUploadBytes))

	tokens := jwttoken.NewJWTService(jwttoken.Config{
		AccessKey:  cfg.Auth.AccessTokenSecret,
		RefreshKey: cfg.Auth.RefreshTokenSecret,
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		AccessTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTTL: cfg.Auth.RefreshTokenTTL,
	})
	auth := authservice.New(users, tokens, trl,
		authservice.WithLogger(log),
		authservice.WithMetrics(m),
	)
	family := familyservice.New(familyTx, photos,
		familyservice.WithLogger(log),
		familyservice.WithMetrics(m),
		familyservice.WithPhotoPrefix(cfg.Photo.CanonicalPrefix),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        m,
		Gatherer:       reg,
		MetricsToken:   cfg.Server.MetricsToken,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Public: []httptransport.Registrar{
			authhandler.New(auth, log, cfg.Auth.SecureCookies),
		},
		Protected: []httptransport.Registrar{
			familyhandler.New(family, log),
			photo.NewHandler(photos, log, m),
		},
		Validator:   jwttoken.NewJWTServiceAdapter(tokens),
		Revocations: trl,
		RateLimiter: limiter,
		Health:      health,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting familytree", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func closeDB(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Warn("failed to close database", "error", err)
	}
}
