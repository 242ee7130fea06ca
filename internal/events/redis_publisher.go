package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds configuration for RedisPublisher
type Config struct {
	PublishTimeout   time.Duration
	SubscribeTimeout time.Duration
	EventBufferSize  int
}

// DefaultConfig returns default configuration values
func DefaultConfig() Config {
	return Config{
		PublishTimeout:   5 * time.Second,
		SubscribeTimeout: 10 * time.Second,
		EventBufferSize:  100,
	}
}

type metrics struct {
	publishLatency    prometheus.Histogram
	errorCount        *prometheus.CounterVec
	eventCount        *prometheus.CounterVec
	activeSubscribers prometheus.Gauge
}

var (
	metricsInstance *metrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

func newMetrics() *metrics {
	metricsOnce.Do(func() {
		metricsInstance = &metrics{
			publishLatency: promauto.With(defaultRegistry).NewHistogram(prometheus.HistogramOpts{
				Name:    "event_publish_duration_seconds",
				Help:    "Time taken to publish events",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			}),
			errorCount: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "event_errors_total",
				Help: "Total number of event-related errors",
			}, []string{"operation", "type"}),
			eventCount: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "events_total",
				Help: "Total number of events by operation and type",
			}, []string{"operation", "type"}),
			activeSubscribers: promauto.With(defaultRegistry).NewGauge(prometheus.GaugeOpts{
				Name: "event_active_subscribers",
				Help: "Current number of active subscribers",
			}),
		}
	})
	return metricsInstance
}

func resetMetricsForTesting() {
	defaultRegistry = prometheus.NewRegistry()
	metricsInstance = nil
	metricsOnce = sync.Once{}
}

// ChannelName is the Redis channel carrying a trip's events.
func ChannelName(tripID int64) string {
	return fmt.Sprintf("trip:%d", tripID)
}

func subscriptionKey(tripID, userID int64) string {
	return fmt.Sprintf("%d:%d", tripID, userID)
}

// RedisPublisher implements types.EventPublisher using Redis Pub/Sub
type RedisPublisher struct {
	rdb     *redis.Client
	log     *zap.SugaredLogger
	metrics *metrics
	config  Config
	mu      sync.RWMutex
	subs    map[string]*subscription
	wg      sync.WaitGroup
}

var _ types.EventPublisher = (*RedisPublisher)(nil)

type subscription struct {
	pubsub    *redis.PubSub
	cancelCtx context.CancelFunc
	closeOnce sync.Once
}

func (s *subscription) close(log *zap.SugaredLogger, key string) {
	s.closeOnce.Do(func() {
		if err := s.pubsub.Close(); err != nil {
			log.Errorw("Error closing pubsub", "error", err, "subKey", key)
		}
	})
}

func NewRedisPublisher(rdb *redis.Client, cfg ...Config) *RedisPublisher {
	config := DefaultConfig()
	if len(cfg) > 0 {
		config = cfg[0]
	}

	return &RedisPublisher{
		rdb:     rdb,
		log:     logger.GetLogger().Named("events"),
		metrics: newMetrics(),
		config:  config,
		subs:    make(map[string]*subscription),
	}
}

// prepare fills in missing identity fields and validates the event.
func prepare(tripID int64, event *types.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Version == 0 {
		event.Version = 1
	}
	if event.TripID == 0 {
		event.TripID = tripID
	}
	if event.TripID != tripID {
		return fmt.Errorf("event trip %d does not match channel trip %d", event.TripID, tripID)
	}
	return event.Validate()
}

func (p *RedisPublisher) Publish(ctx context.Context, tripID int64, event types.Event) error {
	start := time.Now()
	defer func() {
		p.metrics.publishLatency.Observe(time.Since(start).Seconds())
	}()

	if err := prepare(tripID, &event); err != nil {
		p.metrics.errorCount.WithLabelValues("publish", "validation").Inc()
		return fmt.Errorf("invalid event: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.metrics.errorCount.WithLabelValues("publish", "marshal").Inc()
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
	defer cancel()

	if err := p.rdb.Publish(ctx, ChannelName(tripID), string(data)).Err(); err != nil {
		p.metrics.errorCount.WithLabelValues("publish", "redis").Inc()
		return fmt.Errorf("redis publish: %w", err)
	}

	p.metrics.eventCount.WithLabelValues("publish", string(event.Type)).Inc()
	return nil
}

// Subscribe opens a filtered event stream for one user on one trip. A user
// holds at most one stream per trip; a new one replaces the old.
func (p *RedisPublisher) Subscribe(ctx context.Context, tripID int64, userID int64, filters ...types.EventType) (<-chan types.Event, error) {
	subKey := subscriptionKey(tripID, userID)

	p.mu.Lock()
	if old, exists := p.subs[subKey]; exists {
		old.cancelCtx()
		old.close(p.log, subKey)
		delete(p.subs, subKey)
		p.log.Infow("Replacing existing subscription", "subKey", subKey)
	}

	pubsub := p.rdb.Subscribe(ctx, ChannelName(tripID))
	subCtx, cancel := context.WithCancel(context.Background())
	sub := &subscription{pubsub: pubsub, cancelCtx: cancel}
	p.subs[subKey] = sub
	p.mu.Unlock()

	// wait for the SUBSCRIBE confirmation so no early event is missed
	recvCtx, recvCancel := context.WithTimeout(ctx, p.config.SubscribeTimeout)
	defer recvCancel()
	if _, err := pubsub.Receive(recvCtx); err != nil {
		p.mu.Lock()
		if p.subs[subKey] == sub {
			delete(p.subs, subKey)
		}
		p.mu.Unlock()
		cancel()
		sub.close(p.log, subKey)
		p.metrics.errorCount.WithLabelValues("subscribe", "redis").Inc()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	p.metrics.activeSubscribers.Inc()
	events := make(chan types.Event, p.config.EventBufferSize)

	p.wg.Add(1)
	go p.processMessages(subCtx, sub, events, filters, subKey)

	return events, nil
}

func (p *RedisPublisher) processMessages(ctx context.Context, sub *subscription, events chan<- types.Event, filters []types.EventType, subKey string) {
	defer p.wg.Done()
	defer func() {
		sub.close(p.log, subKey)
		close(events)
		p.metrics.activeSubscribers.Dec()
		p.log.Debugw("Subscription closed", "subKey", subKey)
	}()

	ch := sub.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event types.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				p.metrics.errorCount.WithLabelValues("process", "unmarshal").Inc()
				p.log.Errorw("Failed to unmarshal event", "error", err, "subKey", subKey)
				continue
			}

			if !matchesFilters(event.Type, filters) {
				continue
			}

			// Slow consumers lose events rather than stalling the reader.
			select {
			case events <- event:
				p.metrics.eventCount.WithLabelValues("receive", string(event.Type)).Inc()
			default:
				p.metrics.errorCount.WithLabelValues("process", "channel_full").Inc()
				p.log.Warnw("Dropped event due to full channel", "subKey", subKey, "eventType", event.Type)
			}
		}
	}
}

func matchesFilters(t types.EventType, filters []types.EventType) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if f == t {
			return true
		}
	}
	return false
}

func (p *RedisPublisher) Unsubscribe(ctx context.Context, tripID int64, userID int64) error {
	subKey := subscriptionKey(tripID, userID)

	p.mu.Lock()
	sub, exists := p.subs[subKey]
	if !exists {
		p.mu.Unlock()
		return fmt.Errorf("no subscription found for trip %d and user %d", tripID, userID)
	}
	delete(p.subs, subKey)
	p.mu.Unlock()

	sub.cancelCtx()
	sub.close(p.log, subKey)
	return nil
}

// PublishBatch publishes several events through one pipeline round trip.
func (p *RedisPublisher) PublishBatch(ctx context.Context, tripID int64, events []types.Event) error {
	if len(events) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
	defer cancel()

	channel := ChannelName(tripID)
	pipe := p.rdb.Pipeline()

	for i := range events {
		event := events[i]
		if err := prepare(tripID, &event); err != nil {
			p.metrics.errorCount.WithLabelValues("publish_batch", "validation").Inc()
			return fmt.Errorf("invalid event in batch: %w", err)
		}
		data, err := json.Marshal(event)
		if err != nil {
			p.metrics.errorCount.WithLabelValues("publish_batch", "marshal").Inc()
			return fmt.Errorf("marshal event in batch: %w", err)
		}
		pipe.Publish(ctx, channel, string(data))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		p.metrics.errorCount.WithLabelValues("publish_batch", "redis").Inc()
		return fmt.Errorf("execute batch publish: %w", err)
	}

	for _, event := range events {
		p.metrics.eventCount.WithLabelValues("publish", string(event.Type)).Inc()
	}
	return nil
}

// Shutdown cancels every subscription and waits for their readers to exit.
func (p *RedisPublisher) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	localSubs := p.subs
	p.subs = make(map[string]*subscription)
	p.mu.Unlock()

	p.log.Infow("Shutting down RedisPublisher", "subscriptions", len(localSubs))
	for _, sub := range localSubs {
		sub.cancelCtx()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
