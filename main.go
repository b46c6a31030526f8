package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/gokaycavdar/go-ipreputation/pkg/api"
	"github.com/gokaycavdar/go-ipreputation/pkg/config"
	"github.com/gokaycavdar/go-ipreputation/pkg/engine"
	"github.com/gokaycavdar/go-ipreputation/pkg/geoip"
	"github.com/gokaycavdar/go-ipreputation/pkg/logging"
	"github.com/gokaycavdar/go-ipreputation/pkg/rules"
	"github.com/gokaycavdar/go-ipreputation/pkg/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.InitLogger(cfg); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if logging.ParseLevel(cfg.Log.Level) < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// 1. Geolocation provider
	provider, closeProvider, err := newProvider(cfg)
	if err != nil {
		logrus.Fatalf("GeoIP provider: %v", err)
	}
	defer closeProvider()

	// 2. Rules
	ruleSet, err := loadRuleSet(cfg)
	if err != nil {
		logrus.Fatalf("Rules: %v", err)
	}

	// 3. Blacklist
	store, err := newBlacklistStore(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Blacklist: %v", err)
	}

	scorer := engine.NewFromRuleSet(ruleSet, store)

	// 4. Web server
	server, err := api.NewServer(scorer, provider, cfg.Server.TrustedProxies)
	if err != nil {
		logrus.Fatalf("Server: %v", err)
	}

	logrus.Infof("IP reputation server listening on %s (%d rules)", cfg.Server.Addr, ruleSet.Len())
	if err := server.Run(cfg.Server.Addr); err != nil {
		logrus.Fatalf("Server stopped: %v", err)
	}
}

func newProvider(cfg *config.Config) (geoip.Provider, func(), error) {
	switch cfg.GeoIP.Provider {
	case config.ProviderMaxMind:
		p, err := geoip.NewMaxMindProvider(cfg.GeoIP.CityDB, cfg.GeoIP.ASNDB)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	default:
		return geoip.NewIPWhoisProvider(cfg.GeoIP.BaseURL, cfg.GeoIP.Timeout), func() {}, nil
	}
}

func loadRuleSet(cfg *config.Config) (*rules.RuleSet, error) {
	rs := rules.NewRuleSet()

	if cfg.Rules.File != "" {
		_, err := rs.LoadFromJSON(cfg.Rules.File)
		switch {
		case errors.Is(err, rules.ErrFileNotFound):
			logrus.Warnf("Rule file %s not found, starting without file rules", cfg.Rules.File)
		case err != nil:
			return nil, err
		}
	}

	if cfg.Rules.DataCenterPoints > 0 {
		rs.DataCenterPreset(cfg.Rules.DataCenterPoints)
	}
	return rs, rs.Err()
}

func newBlacklistStore(ctx context.Context, cfg *config.Config) (storage.BlacklistStore, error) {
	var store storage.BlacklistStore = storage.NewMemoryStore()
	if cfg.Blacklist.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Blacklist.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis %s: %w", cfg.Blacklist.RedisAddr, err)
		}
		store = storage.NewRedisStore(client, cfg.Blacklist.RedisPrefix)
	}

	if cfg.Blacklist.File != "" {
		if _, err := storage.LoadBlacklistFile(ctx, store, cfg.Blacklist.File, cfg.Blacklist.Reason); err != nil {
			return nil, err
		}
	}
	return store, nil
}
