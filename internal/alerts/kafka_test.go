package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johndosdos/atalaia/internal/model"
)

func alert(hood *uuid.UUID) model.ChatMessage {
	return model.ChatMessage{
		ID:             uuid.New(),
		NeighborhoodID: hood,
		UserID:         uuid.New(),
		Username:       "ana",
		UserRole:       model.RoleSCR,
		Content:        model.AlertPanic.DefaultText(),
		CreatedAt:      time.Now().UTC(),
		IsSystemAlert:  true,
		AlertType:      model.AlertPanic,
	}
}

func TestKafkaDispatch(t *testing.T) {
	hood := uuid.New()
	msg := alert(&hood)

	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(pm *sarama.ProducerMessage) error {
		key, err := pm.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != hood.String() {
			return errors.New("unexpected partition key " + string(key))
		}

		value, err := pm.Value.Encode()
		if err != nil {
			return err
		}
		var ev Event
		if err := json.Unmarshal(value, &ev); err != nil {
			return err
		}
		if ev.AlertType != model.AlertPanic || ev.ID != msg.ID {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	k := NewKafkaWithProducer(producer, "neighborhood-alerts")
	require.NoError(t, k.Dispatch(context.Background(), msg))
	require.NoError(t, k.Close())
}

func TestKafkaDispatchError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	k := NewKafkaWithProducer(producer, "neighborhood-alerts")
	err := k.Dispatch(context.Background(), alert(nil))

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, k.Close())
}

func TestPartitionKey(t *testing.T) {
	hood := uuid.New()
	assert.Equal(t, "global", PartitionKey(nil))
	assert.Equal(t, hood.String(), PartitionKey(&hood))
}

func TestNewSaramaConfig(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantSASL  bool
		mechanism sarama.SASLMechanism
	}{
		{"no_credentials", Config{}, false, ""},
		{"plain", Config{User: "u", Password: "p"}, true, sarama.SASLTypePlaintext},
		{"scram_256", Config{User: "u", Password: "p", Mechanism: "scram-sha-256"}, true, sarama.SASLTypeSCRAMSHA256},
		{"scram_512", Config{User: "u", Password: "p", Mechanism: "SCRAM-SHA-512"}, true, sarama.SASLTypeSCRAMSHA512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewSaramaConfig(tt.cfg)

			assert.Equal(t, sarama.WaitForAll, config.Producer.RequiredAcks)
			assert.True(t, config.Producer.Return.Successes)
			assert.Equal(t, tt.wantSASL, config.Net.SASL.Enable)
			if tt.wantSASL {
				assert.Equal(t, tt.mechanism, config.Net.SASL.Mechanism)
				require.NoError(t, config.Validate())
			}
		})
	}
}

func TestXDGSCRAMClientBegin(t *testing.T) {
	c := &XDGSCRAMClient{HashGeneratorFcn: SHA256}
	require.NoError(t, c.Begin("user", "pencil", ""))

	first, err := c.Step("")
	require.NoError(t, err)
	assert.Contains(t, first, "n=user")
	assert.False(t, c.Done())
}

func TestNop(t *testing.T) {
	var d Dispatcher = Nop{}
	assert.NoError(t, d.Dispatch(context.Background(), alert(nil)))
	assert.NoError(t, d.Close())
}
