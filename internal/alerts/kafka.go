// Package alerts forwards system alerts to a Kafka topic for consumers
// outside the chat, such as patrol dispatch.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/johndosdos/atalaia/internal/model"
)

// Dispatcher publishes alerts.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg model.ChatMessage) error
	Close() error
}

// Event is the record written to the alert topic.
type Event struct {
	ID             uuid.UUID       `json:"id"`
	NeighborhoodID *uuid.UUID      `json:"neighborhood_id"`
	UserID         uuid.UUID       `json:"user_id"`
	UserName       string          `json:"user_name"`
	UserRole       model.Role      `json:"user_role"`
	AlertType      model.AlertType `json:"alert_type"`
	Text           string          `json:"text"`
	Image          string          `json:"image,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func NewEvent(msg model.ChatMessage) Event {
	return Event{
		ID:             msg.ID,
		NeighborhoodID: msg.NeighborhoodID,
		UserID:         msg.UserID,
		UserName:       msg.Username,
		UserRole:       msg.UserRole,
		AlertType:      msg.AlertType,
		Text:           msg.Content,
		Image:          msg.Image,
		CreatedAt:      msg.CreatedAt,
	}
}

// PartitionKey keeps the alerts of one neighborhood on one partition.
func PartitionKey(hood *uuid.UUID) string {
	if hood == nil {
		return "global"
	}
	return hood.String()
}

// Config selects the brokers, topic and SASL credentials.
type Config struct {
	Brokers   []string
	Topic     string
	User      string
	Password  string
	Mechanism string
}

// NewSaramaConfig returns a producer config that waits for all replicas.
func NewSaramaConfig(cfg Config) *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V2_8_0_0
	config.ClientID = "atalaia"

	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true
	config.Producer.Partitioner = sarama.NewHashPartitioner

	if cfg.User == "" {
		return config
	}

	config.Net.SASL.Enable = true
	config.Net.SASL.User = cfg.User
	config.Net.SASL.Password = cfg.Password
	config.Net.SASL.Handshake = true

	switch strings.ToUpper(cfg.Mechanism) {
	case sarama.SASLTypeSCRAMSHA256:
		config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		config.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
			return &XDGSCRAMClient{HashGeneratorFcn: SHA256}
		}
	case sarama.SASLTypeSCRAMSHA512:
		config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
		config.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
			return &XDGSCRAMClient{HashGeneratorFcn: SHA512}
		}
	default:
		config.Net.SASL.Mechanism = sarama.SASLTypePlaintext
	}

	return config
}

// Kafka writes alerts with a synchronous producer.
type Kafka struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafka connects a producer to cfg.Brokers.
func NewKafka(cfg Config) (*Kafka, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaWithProducer(producer, cfg.Topic), nil
}

func NewKafkaWithProducer(producer sarama.SyncProducer, topic string) *Kafka {
	return &Kafka{producer: producer, topic: topic}
}

func (k *Kafka) Dispatch(ctx context.Context, msg model.ChatMessage) error {
	value, err := json.Marshal(NewEvent(msg))
	if err != nil {
		return fmt.Errorf("could not encode alert: %w", err)
	}

	partition, offset, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(PartitionKey(msg.NeighborhoodID)),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("alert_type"), Value: []byte(msg.AlertType)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send alert to %s: %w", k.topic, err)
	}

	slog.DebugContext(ctx, "alert dispatched",
		"topic", k.topic,
		"partition", partition,
		"offset", offset,
		"alert_type", msg.AlertType)
	return nil
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}

// Nop drops every alert. It is used when no brokers are configured.
type Nop struct{}

func (Nop) Dispatch(context.Context, model.ChatMessage) error { return nil }
func (Nop) Close() error                                      { return nil }
