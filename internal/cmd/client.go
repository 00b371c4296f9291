package cmd

import (
	"context"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/bselens/bselens/internal/config"
	"github.com/bselens/bselens/internal/exchange"
	"github.com/bselens/bselens/internal/observability"
	"github.com/bselens/bselens/internal/store"
	"github.com/bselens/bselens/internal/throttle"
)

// session bundles the exchange client with the optional scrip cache store.
type session struct {
	cfg    *config.Config
	client *exchange.Client
	store  *store.Store
}

func (s *session) Close() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil && observability.CLILogger != nil {
		observability.CLILogger.Warn("failed to close store", zap.Error(err))
	}
}

// newSession builds an exchange client from the loaded config. The scrip
// cache is attached when cache.lookup_ttl is positive and the store opens;
// a store failure only disables caching.
func newSession(ctx context.Context, logger *logging.Logger) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	th := throttle.New(cfg.ThrottleSettings(),
		throttle.WithWaitHook(exchange.ThrottleWaitHook(logger)))

	opts := []exchange.Option{
		exchange.WithBaseURL(cfg.Exchange.BaseURL),
		exchange.WithAPIURL(cfg.Exchange.APIURL),
		exchange.WithUserAgent(cfg.Exchange.UserAgent),
		exchange.WithTimeout(cfg.Exchange.Timeout),
		exchange.WithThrottle(th),
		exchange.WithLogger(logger),
	}

	s := &session{cfg: cfg}
	if cfg.Cache.LookupTTL > 0 {
		db, err := openStore(ctx, cfg.Store)
		if err != nil {
			if logger != nil {
				logger.Warn("scrip cache disabled", zap.Error(err))
			}
		} else {
			s.store = db
			opts = append(opts, exchange.WithScripCache(db, cfg.Cache.LookupTTL))
		}
	}

	s.client = exchange.New(opts...)
	return s, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (*store.Store, error) {
	db, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
