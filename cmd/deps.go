package cmd

import (
	"fmt"

	"github.com/salimhm/zillow-scraper/internal/config"
	"github.com/salimhm/zillow-scraper/internal/coordination"
	"github.com/salimhm/zillow-scraper/internal/fetch"
	"github.com/salimhm/zillow-scraper/internal/identity"
	"github.com/salimhm/zillow-scraper/internal/logger"
	"github.com/salimhm/zillow-scraper/internal/proxy"
	"github.com/salimhm/zillow-scraper/internal/ratelimit"
	"github.com/salimhm/zillow-scraper/internal/scrape"
)

// deps holds the wired service graph shared by the subcommands.
type deps struct {
	Config   *config.Config
	Logger   logger.Interface
	Store    coordination.Store
	Listings *scrape.Listings
	Agents   *scrape.Agents
	Limiter  *ratelimit.Limiter
}

// newDeps builds the full dependency graph from configuration. The
// coordination store is Redis when enabled, otherwise in-process.
func newDeps() (*deps, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Development: cfg.Logger.Development,
	}
	if debug {
		logCfg.Level = "debug"
		logCfg.Encoding = "console"
		logCfg.Development = true
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	var store coordination.Store
	if cfg.Redis.Enabled {
		redisStore, storeErr := coordination.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if storeErr != nil {
			return nil, fmt.Errorf("connect redis: %w", storeErr)
		}
		store = redisStore
		log.Info("using redis coordination store", "addr", cfg.Redis.Addr)
	} else {
		store = coordination.NewMemoryStore()
		log.Info("using in-process coordination store")
	}

	identities := identity.NewRotator(cfg.Scraper.UserAgents, cfg.Scraper.UserAgentServiceURL, log)
	proxies := proxySupplier(cfg.Scraper.Proxies, store, log)

	client := fetch.NewClient(identities, proxies, fetch.Config{
		Timeout:    cfg.Scraper.Timeout,
		MaxRetries: cfg.Scraper.MaxRetries,
		DelayMin:   cfg.Scraper.DelayMin,
		DelayMax:   cfg.Scraper.DelayMax,
	}, log)

	return &deps{
		Config:   cfg,
		Logger:   log,
		Store:    store,
		Listings: scrape.NewListings(client, log),
		Agents:   scrape.NewAgents(client, log),
		Limiter:  ratelimit.NewLimiter(store, log, cfg.Scraper.RatePerMinute, cfg.Scraper.RatePerHour),
	}, nil
}

// proxySupplier picks the supplier for the configured pool: empty means
// direct requests, one entry is a fixed endpoint, more rotate with
// failure tracking.
func proxySupplier(endpoints []string, store coordination.Store, log logger.Interface) proxy.Supplier {
	switch len(endpoints) {
	case 0:
		return proxy.NewPassThrough("")
	case 1:
		return proxy.NewPassThrough(endpoints[0])
	default:
		return proxy.NewRotator(endpoints, store, log)
	}
}
