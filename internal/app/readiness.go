package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/raisa-rms/raisa-backend/internal/config"
)

// Pinger is the minimal interface for a database pool capable of Ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checks holds the readiness probes exposed via /readyz.
type Checks struct {
	DB     func(ctx context.Context) error
	Redis  func(ctx context.Context) error
	Broker func(ctx context.Context) error
	Tika   func(ctx context.Context) error
}

// BuildReadinessChecks returns the readiness probes for the server's
// dependencies. Nil inputs produce checks that report the dependency as not
// configured.
func BuildReadinessChecks(cfg config.Config, pool Pinger, rdb *redis.Client) Checks {
	return Checks{
		DB: func(ctx context.Context) error {
			if pool == nil {
				return fmt.Errorf("db not configured")
			}
			return pool.Ping(ctx)
		},
		Redis: func(ctx context.Context) error {
			if rdb == nil {
				return fmt.Errorf("redis not configured")
			}
			return rdb.Ping(ctx).Err()
		},
		Broker: func(ctx context.Context) error {
			if len(cfg.KafkaBrokers) == 0 {
				return fmt.Errorf("brokers not configured")
			}
			cl, err := kgo.NewClient(kgo.SeedBrokers(cfg.KafkaBrokers...))
			if err != nil {
				return err
			}
			defer cl.Close()
			return cl.Ping(ctx)
		},
		Tika: func(ctx context.Context) error {
			if cfg.TikaURL == "" {
				return fmt.Errorf("tika url not configured")
			}
			client := &http.Client{Timeout: 2 * time.Second}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.TikaURL+"/version", nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
			return fmt.Errorf("tika status %d", resp.StatusCode)
		},
	}
}
