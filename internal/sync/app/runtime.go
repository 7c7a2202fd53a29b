// Package app wires the sync engine runtime: storage, token registry,
// event router, metadata enrichment, and the notification dispatcher behind
// one NDJSON feed ingestion loop.
package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bountynet/bounties-sync/internal/sync/domain/event"
	"github.com/bountynet/bounties-sync/internal/sync/metadata"
	"github.com/bountynet/bounties-sync/internal/sync/notify"
	"github.com/bountynet/bounties-sync/internal/sync/projection"
	"github.com/bountynet/bounties-sync/internal/sync/registry"
	"github.com/bountynet/bounties-sync/internal/sync/storage/sqlite"
)

// RuntimeConfig controls syncd startup, dependencies, and loop behavior.
type RuntimeConfig struct {
	// FeedPath is the NDJSON event feed; "-" reads standard input.
	FeedPath string
	DBPath   string
	// GatewayURL enables metadata enrichment when set.
	GatewayURL     string
	GatewayTimeout time.Duration
	// TokenSeedPath optionally pre-registers tokens at startup.
	TokenSeedPath string
	// IngestWorkers sets feed parallelism; events for one bounty always
	// land on the same worker, so per-bounty order is preserved.
	IngestWorkers      int
	NotifyPollInterval time.Duration
	NotifyBatchSize    int
	NotifyMaxAttempts  int
}

const (
	defaultSyncDB        = "data/sync.db"
	defaultIngestWorkers = 4
	// maxFeedLineBytes bounds scanner buffers; payloads are small JSON blobs.
	maxFeedLineBytes = 1 << 20
)

var tracer = otel.Tracer("github.com/bountynet/bounties-sync/internal/sync/app")

// Run starts syncd dependencies and ingests the feed until it ends or ctx is
// canceled. Pending notifications are drained before returning.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(cfg.FeedPath) == "" {
		return fmt.Errorf("feed path is required")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultSyncDB
	}
	if cfg.IngestWorkers <= 0 {
		cfg.IngestWorkers = defaultIngestWorkers
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create sync storage dir: %w", err)
		}
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open sync sqlite store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close sync sqlite store: %v", closeErr)
		}
	}()

	reg := registry.New(store)
	if strings.TrimSpace(cfg.TokenSeedPath) != "" {
		seeds, err := LoadTokenSeeds(cfg.TokenSeedPath)
		if err != nil {
			return err
		}
		if err := SeedTokens(ctx, reg, seeds); err != nil {
			return err
		}
		log.Printf("seeded %d tokens from %s", len(seeds), cfg.TokenSeedPath)
	}

	router := projection.NewRouter(store, reg)

	var enricher *metadata.Enricher
	if strings.TrimSpace(cfg.GatewayURL) != "" {
		resolver, err := metadata.NewGatewayClient(cfg.GatewayURL, cfg.GatewayTimeout)
		if err != nil {
			return err
		}
		enricher = metadata.NewEnricher(store, resolver)
	}

	dispatcher := notify.NewDispatcher(store, notify.LogNotifier{}, notify.DispatcherConfig{
		PollInterval: cfg.NotifyPollInterval,
		BatchSize:    cfg.NotifyBatchSize,
		MaxAttempts:  cfg.NotifyMaxAttempts,
	})
	dispatcherCtx, stopDispatcher := context.WithCancel(ctx)
	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		if err := dispatcher.Run(dispatcherCtx); err != nil && dispatcherCtx.Err() == nil {
			log.Printf("notification dispatcher stopped: %v", err)
		}
	}()
	defer func() {
		stopDispatcher()
		<-dispatcherDone
		// Announce whatever the last events enqueued before exiting.
		if delivered, err := dispatcher.DrainOnce(context.WithoutCancel(ctx)); err == nil && delivered > 0 {
			log.Printf("drained %d notifications on shutdown", delivered)
		}
	}()

	feed, closeFeed, err := openFeed(cfg.FeedPath)
	if err != nil {
		return err
	}
	defer closeFeed()

	return ingest(ctx, feed, router, enricher, cfg.IngestWorkers)
}

func openFeed(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open feed: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// ingest reads feed lines and dispatches them across workers sharded by
// bounty id, keeping each aggregate's events in feed order.
func ingest(ctx context.Context, feed io.Reader, router *projection.Router, enricher *metadata.Enricher, workers int) error {
	shards := make([]chan event.Event, workers)
	var wg sync.WaitGroup
	for i := range shards {
		shards[i] = make(chan event.Event, 16)
		wg.Add(1)
		go func(events <-chan event.Event) {
			defer wg.Done()
			for evt := range events {
				dispatchOne(ctx, router, enricher, evt)
			}
		}(shards[i])
	}
	defer func() {
		for _, shard := range shards {
			close(shard)
		}
		wg.Wait()
	}()

	scanner := bufio.NewScanner(feed)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFeedLineBytes)
	lines := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines++

		evt, err := ParseFeedLine([]byte(line))
		if err != nil {
			log.Printf("skip feed line %d: %v", lines, err)
			continue
		}
		shard := shards[int(evt.BountyID%int64(workers))]
		select {
		case shard <- evt:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read feed: %w", err)
	}
	return nil
}

func dispatchOne(ctx context.Context, router *projection.Router, enricher *metadata.Enricher, evt event.Event) {
	ctx, span := tracer.Start(ctx, "sync.dispatch", trace.WithAttributes(
		attribute.String("event.kind", string(evt.Kind)),
		attribute.Int64("bounty.id", evt.BountyID),
	))
	defer span.End()

	change, err := router.Dispatch(ctx, evt)
	if err != nil {
		span.RecordError(err)
		log.Printf("dispatch %s for bounty %d: %v", evt.Kind, evt.BountyID, err)
		return
	}
	span.SetAttributes(attribute.String("sync.outcome", string(change.Outcome)))

	if enricher != nil {
		if err := enricher.Apply(ctx, change); err != nil {
			log.Printf("enrich bounty %d after %s: %v", evt.BountyID, evt.Kind, err)
		}
	}
}
