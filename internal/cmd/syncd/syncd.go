// Package syncd parses syncd command flags and launches the sync runtime.
package syncd

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/bountynet/bounties-sync/internal/platform/cmd"
	"github.com/bountynet/bounties-sync/internal/sync/app"
)

// Config holds syncd command configuration.
type Config struct {
	FeedPath           string        `env:"BOUNTIES_SYNC_FEED_PATH" envDefault:"-"`
	DBPath             string        `env:"BOUNTIES_SYNC_DB_PATH" envDefault:"data/sync.db"`
	GatewayURL         string        `env:"BOUNTIES_SYNC_GATEWAY_URL"`
	GatewayTimeout     time.Duration `env:"BOUNTIES_SYNC_GATEWAY_TIMEOUT" envDefault:"15s"`
	TokenSeedPath      string        `env:"BOUNTIES_SYNC_TOKEN_SEED_PATH"`
	IngestWorkers      int           `env:"BOUNTIES_SYNC_INGEST_WORKERS" envDefault:"4"`
	NotifyPollInterval time.Duration `env:"BOUNTIES_SYNC_NOTIFY_POLL_INTERVAL" envDefault:"5s"`
	NotifyBatchSize    int           `env:"BOUNTIES_SYNC_NOTIFY_BATCH_SIZE" envDefault:"50"`
	NotifyMaxAttempts  int           `env:"BOUNTIES_SYNC_NOTIFY_MAX_ATTEMPTS" envDefault:"5"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.FeedPath, "feed", cfg.FeedPath, "NDJSON event feed path (- for stdin)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The sync SQLite database path")
	fs.StringVar(&cfg.GatewayURL, "gateway-url", cfg.GatewayURL, "IPFS gateway base URL for metadata enrichment")
	fs.DurationVar(&cfg.GatewayTimeout, "gateway-timeout", cfg.GatewayTimeout, "IPFS gateway request timeout")
	fs.StringVar(&cfg.TokenSeedPath, "token-seed", cfg.TokenSeedPath, "Token seed file registered at startup")
	fs.IntVar(&cfg.IngestWorkers, "ingest-workers", cfg.IngestWorkers, "Feed ingestion worker count")
	fs.DurationVar(&cfg.NotifyPollInterval, "notify-poll-interval", cfg.NotifyPollInterval, "Notification outbox poll interval")
	fs.IntVar(&cfg.NotifyBatchSize, "notify-batch-size", cfg.NotifyBatchSize, "Notification rows drained per round")
	fs.IntVar(&cfg.NotifyMaxAttempts, "notify-max-attempts", cfg.NotifyMaxAttempts, "Delivery attempts before dead-letter")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the sync runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSyncd, func(ctx context.Context) error {
		return app.Run(ctx, app.RuntimeConfig{
			FeedPath:           cfg.FeedPath,
			DBPath:             cfg.DBPath,
			GatewayURL:         cfg.GatewayURL,
			GatewayTimeout:     cfg.GatewayTimeout,
			TokenSeedPath:      cfg.TokenSeedPath,
			IngestWorkers:      cfg.IngestWorkers,
			NotifyPollInterval: cfg.NotifyPollInterval,
			NotifyBatchSize:    cfg.NotifyBatchSize,
			NotifyMaxAttempts:  cfg.NotifyMaxAttempts,
		})
	})
}
