package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// SpinEvent represents a spin outcome published on the spin topic
type SpinEvent struct {
	SpinID    string    `json:"spin_id"`
	PlayerID  string    `json:"player_id"`
	ClubID    string    `json:"club_id"`
	PrizeID   string    `json:"prize_id"`
	PrizeName string    `json:"prize_name"`
	Cost      int64     `json:"cost"`
	Timestamp time.Time `json:"timestamp"`
}

// SpinCache keeps the newest spin event per club. Events can arrive
// more than once (redeliveries, rebalances); Set rejects an event whose
// spin id was already recorded for the club.
type SpinCache struct {
	mu     sync.RWMutex
	spins  map[string]SpinEvent
	logger zerolog.Logger
}

const allClubsKey = "*"

// NewSpinCache creates a new spin cache
func NewSpinCache(logger zerolog.Logger) *SpinCache {
	return &SpinCache{
		spins:  make(map[string]SpinEvent),
		logger: logger,
	}
}

// Get retrieves the latest spin for a club
func (sc *SpinCache) Get(clubID string) (SpinEvent, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	event, exists := sc.spins[clubID]
	return event, exists
}

// Set stores a spin event unless it was already seen. Returns false for
// duplicates.
func (sc *SpinCache) Set(event SpinEvent) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if current, exists := sc.spins[event.ClubID]; exists && current.SpinID == event.SpinID {
		return false
	}

	sc.spins[event.ClubID] = event
	sc.logger.Debug().
		Str("club_id", event.ClubID).
		Str("spin_id", event.SpinID).
		Msg("Spin cache updated")
	return true
}

// Subscription represents a client subscription for spin events
type Subscription struct {
	ID      string
	ClubID  string
	Channel chan SpinEvent
}

// ClubFilter decides whether events for a club should be processed.
// Returns true to process, false to skip.
type ClubFilter func(clubID string) bool

// Consumer reads spin events from Kafka and fans them out to venue
// display bridges
type Consumer struct {
	reader    *kafka.Reader
	spinCache *SpinCache
	logger    zerolog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	mu          sync.RWMutex
	subscribers map[string][]*Subscription
	clubFilter  ClubFilter
}

// ConsumerConfig holds Kafka consumer configuration
type ConsumerConfig struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
	Logger        zerolog.Logger
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(config ConsumerConfig, spinCache *SpinCache) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Brokers,
		Topic:          config.Topic,
		GroupID:        config.ConsumerGroup,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	return &Consumer{
		reader:      reader,
		spinCache:   spinCache,
		logger:      config.Logger,
		ctx:         ctx,
		cancel:      cancel,
		subscribers: make(map[string][]*Subscription),
	}
}

// Start begins consuming messages
func (c *Consumer) Start() error {
	c.wg.Add(1)
	go c.consume()
	c.logger.Info().Msg("Kafka consumer started")
	return nil
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() error {
	c.logger.Info().Msg("Stopping Kafka consumer...")
	c.cancel()
	c.wg.Wait()

	if err := c.reader.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Error closing Kafka reader")
		return err
	}

	c.logger.Info().Msg("Kafka consumer stopped")
	return nil
}

func (c *Consumer) consume() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			msg, err := c.reader.FetchMessage(c.ctx)
			if err != nil {
				if err == context.Canceled {
					return
				}
				c.logger.Error().Err(err).Msg("Error fetching message from Kafka")
				time.Sleep(time.Second)
				continue
			}

			if err := c.handleMessage(msg); err != nil {
				c.logger.Error().
					Err(err).
					Str("topic", msg.Topic).
					Int("partition", msg.Partition).
					Int64("offset", msg.Offset).
					Msg("Error handling message")
			}

			if err := c.reader.CommitMessages(c.ctx, msg); err != nil {
				c.logger.Error().Err(err).Msg("Error committing message")
			}
		}
	}
}

func (c *Consumer) handleMessage(msg kafka.Message) error {
	var event SpinEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return err
	}

	c.mu.RLock()
	shouldProcess := c.clubFilter == nil || c.clubFilter(event.ClubID)
	c.mu.RUnlock()

	if !shouldProcess {
		c.logger.Debug().
			Str("club_id", event.ClubID).
			Msg("Skipping spin event (not for this venue)")
		return nil
	}

	// Redelivered outcomes must not re-animate the wheel downstream.
	if !c.spinCache.Set(event) {
		c.logger.Debug().
			Str("club_id", event.ClubID).
			Str("spin_id", event.SpinID).
			Msg("Duplicate spin event dropped")
		return nil
	}

	c.mu.RLock()
	c.deliver(event.ClubID, event)
	c.deliver(allClubsKey, event)
	c.mu.RUnlock()

	return nil
}

// deliver pushes an event to a subscriber group; callers hold the read
// lock
func (c *Consumer) deliver(key string, event SpinEvent) {
	subs, exists := c.subscribers[key]
	if !exists {
		return
	}
	for _, sub := range subs {
		select {
		case sub.Channel <- event:
		default:
			c.logger.Warn().
				Str("sub_id", sub.ID).
				Str("club_id", event.ClubID).
				Msg("Subscriber channel full, dropping event")
		}
	}
}

// GetSpinCache returns the spin cache
func (c *Consumer) GetSpinCache() *SpinCache {
	return c.spinCache
}

// SetClubFilter sets a filter to skip events for clubs this instance
// does not serve. A nil filter processes everything.
func (c *Consumer) SetClubFilter(filter ClubFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clubFilter = filter
}

// Subscribe subscribes to spin events for a specific club
func (c *Consumer) Subscribe(clubID string) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := &Subscription{
		ID:      uuid.New().String(),
		ClubID:  clubID,
		Channel: make(chan SpinEvent, 10),
	}

	c.subscribers[clubID] = append(c.subscribers[clubID], sub)

	c.logger.Debug().
		Str("club_id", clubID).
		Str("sub_id", sub.ID).
		Msg("New subscription added")

	return sub
}

// SubscribeAll subscribes to spin events for every club
func (c *Consumer) SubscribeAll() *Subscription {
	return c.Subscribe(allClubsKey)
}

// Unsubscribe removes a subscription and closes its channel
func (c *Consumer) Unsubscribe(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	subs, exists := c.subscribers[sub.ClubID]
	if !exists {
		return
	}

	remaining := make([]*Subscription, 0, len(subs))
	for _, s := range subs {
		if s.ID != sub.ID {
			remaining = append(remaining, s)
		}
	}
	c.subscribers[sub.ClubID] = remaining
	close(sub.Channel)
}
