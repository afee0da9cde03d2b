package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/xpanvictor/xarvis/internal/apperrors"
	"github.com/xpanvictor/xarvis/pkg/Logger"
)

// envelope is the wire payload asynq carries; it lets every consumer read
// the event ID and occurrence time without topic-specific framing.
type envelope struct {
	ID         uuid.UUID       `json:"id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// AsynqConfig configures the Redis-backed bus.
type AsynqConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
	Queue         string
}

// AsynqBus is the production Bus, backed by hibiken/asynq atop Redis. Topics
// map 1:1 to asynq task types; a single server/mux pair serves every topic
// this process subscribes to.
type AsynqBus struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	queue  string
	logger *Logger.Logger
}

func NewAsynqBus(cfg AsynqConfig, logger *Logger.Logger) *AsynqBus {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	queue := cfg.Queue
	if queue == "" {
		queue = "default"
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	client := asynq.NewClient(redisOpt)
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
		Logger:      newAsynqLogger(logger),
	})
	return &AsynqBus{
		client: client,
		server: server,
		mux:    asynq.NewServeMux(),
		queue:  queue,
		logger: logger,
	}
}

func (b *AsynqBus) Publish(ctx context.Context, topic string, payload []byte) error {
	env := envelope{ID: uuid.New(), OccurredAt: time.Now(), Payload: payload}
	data, err := json.Marshal(env)
	if err != nil {
		return apperrors.UpstreamPermanent(err)
	}
	t := asynq.NewTask(topic, data)
	if _, err := b.client.EnqueueContext(ctx, t, asynq.Queue(b.queue)); err != nil {
		return apperrors.UpstreamTransient(err)
	}
	return nil
}

func (b *AsynqBus) Subscribe(topic, consumerName string, h Handler) {
	b.mux.HandleFunc(topic, func(ctx context.Context, t *asynq.Task) error {
		var env envelope
		if err := json.Unmarshal(t.Payload(), &env); err != nil {
			return fmt.Errorf("%s: malformed envelope: %w", consumerName, err)
		}
		evt := Event{ID: env.ID, Topic: topic, OccurredAt: env.OccurredAt, Payload: env.Payload}
		err := h(ctx, evt)
		if apperrors.Is(err, apperrors.KindUpstreamTransient) {
			return err // asynq retries with backoff
		}
		if err != nil {
			b.logger.Errorw("event handler failed permanently, dropping", "consumer", consumerName, "topic", topic, "error", err)
			return nil
		}
		return nil
	})
}

// PublishAt schedules delivery for a future time. It is specific to
// AsynqBus, is not part of Bus, and has no caller in this repository.
func (b *AsynqBus) PublishAt(ctx context.Context, topic string, payload []byte, at time.Time) error {
	env := envelope{ID: uuid.New(), OccurredAt: time.Now(), Payload: payload}
	data, err := json.Marshal(env)
	if err != nil {
		return apperrors.UpstreamPermanent(err)
	}
	t := asynq.NewTask(topic, data)
	if _, err := b.client.EnqueueContext(ctx, t, asynq.Queue(b.queue), asynq.ProcessAt(at)); err != nil {
		return apperrors.UpstreamTransient(err)
	}
	return nil
}

func (b *AsynqBus) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- b.server.Run(b.mux) }()
	select {
	case <-ctx.Done():
		b.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (b *AsynqBus) Close() error {
	b.client.Close()
	return nil
}
