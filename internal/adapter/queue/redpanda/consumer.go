package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/raisa-rms/raisa-backend/internal/adapter/observability"
	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// Consumer polls the analysis topic and processes jobs with a bounded worker
// pool. Offsets are marked after a record is handled; a job that fails its
// pipeline is marked failed in the database and not redelivered.
type Consumer struct {
	client      *kgo.Client
	jobs        domain.AnalysisJobRepository
	consultants domain.ConsultantRepository
	results     domain.AnalysisResultRepository
	ai          domain.AIClient

	groupID string
	topic   string
	workers int
}

// NewConsumer constructs a Consumer on the default topic.
func NewConsumer(brokers []string, groupID string, jobs domain.AnalysisJobRepository, consultants domain.ConsultantRepository, results domain.AnalysisResultRepository, aicl domain.AIClient) (*Consumer, error) {
	return NewConsumerWithTopic(brokers, groupID, TopicAnalyze, 4, jobs, consultants, results, aicl)
}

// NewConsumerWithTopic constructs a Consumer with a custom topic and worker
// count, which keeps parallel tests isolated.
func NewConsumerWithTopic(brokers []string, groupID, topic string, workers int, jobs domain.AnalysisJobRepository, consultants domain.ConsultantRepository, results domain.AnalysisResultRepository, aicl domain.AIClient) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if groupID == "" {
		return nil, fmt.Errorf("missing required group ID")
	}
	if workers <= 0 {
		workers = 4
	}

	if err := ensureTopic(brokers, topic); err != nil {
		slog.Warn("topic creation failed, it may already exist",
			slog.String("topic", topic), slog.Any("error", err))
	}

	kotelService := kotel.NewKotel(
		kotel.WithTracer(kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider()))),
	)

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		kgo.FetchIsolationLevel(kgo.ReadCommitted()),
		kgo.WithHooks(kotelService.Hooks()...),
		kgo.DialTimeout(10*time.Second),
		kgo.SessionTimeout(30*time.Second),
		kgo.HeartbeatInterval(3*time.Second),
		kgo.AutoCommitMarks(),
		kgo.AutoCommitInterval(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda consumer client: %w", err)
	}

	return &Consumer{
		client:      client,
		jobs:        jobs,
		consultants: consultants,
		results:     results,
		ai:          aicl,
		groupID:     groupID,
		topic:       topic,
		workers:     workers,
	}, nil
}

func ensureTopic(brokers []string, topic string) error {
	tempClient, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return fmt.Errorf("temp client: %w", err)
	}
	defer tempClient.Close()
	return createTopicIfNotExists(context.Background(), tempClient, topic, 1, 1)
}

// Start polls until ctx is done. Records of one poll are processed by a
// bounded worker pool; offsets are marked only after processRecord returns.
func (c *Consumer) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "redpanda consumer starting",
		slog.String("group_id", c.groupID),
		slog.String("topic", c.topic),
		slog.Int("workers", c.workers))

	sem := make(chan struct{}, c.workers)
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			slog.InfoContext(ctx, "redpanda consumer shutting down")
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			slog.ErrorContext(ctx, "fetch error",
				slog.String("topic", topic),
				slog.Int("partition", int(partition)),
				slog.Any("error", err))
		})
		fetches.EachRecord(func(record *kgo.Record) {
			sem <- struct{}{}
			go func(record *kgo.Record) {
				defer func() { <-sem }()
				if err := c.processRecord(ctx, record); err != nil {
					slog.ErrorContext(ctx, "record processing failed",
						slog.String("topic", record.Topic),
						slog.Int64("offset", record.Offset),
						slog.Any("error", err))
				}
				c.client.MarkCommitRecords(record)
			}(record)
		})
	}
}

func (c *Consumer) processRecord(ctx context.Context, record *kgo.Record) error {
	tracer := otel.Tracer("queue.consumer")
	ctx, span := tracer.Start(ctx, "ProcessAnalysisJob")
	defer span.End()

	var payload domain.AnalysisTaskPayload
	if err := json.Unmarshal(record.Value, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	lg := observability.LoggerFromContext(ctx).With(slog.String("job_id", payload.JobID))
	ctx = observability.ContextWithLogger(ctx, lg)

	return HandleAnalysis(ctx, c.jobs, c.consultants, c.results, c.ai, payload)
}

// Close closes the underlying client.
func (c *Consumer) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}
