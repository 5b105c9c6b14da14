// Package outbox holds the integration events written in the same transaction
// as the domain change they announce, and later relayed to the message broker.
package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

const (
	TopicOrderStatusChanged = "orders.status_changed"
	TopicTransferCompleted  = "transfers.completed"
)

var ErrMessageIsNotConstructed = errors.New("Message must be created via NewMessage or RestoreMessage")

// Message is one pending or relayed outbox row.
type Message struct {
	id        kernel.UUID
	topic     string
	key       string
	payload   []byte
	createdAt time.Time
	sentAt    *time.Time
	retries   int

	isConstructed bool
}

// NewMessage encodes payload as JSON. key selects the broker partition, so
// events of one aggregate stay ordered.
func NewMessage(topic, key string, payload any, now time.Time) (*Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", topic, err)
	}
	return RestoreMessage(kernel.NewUUID(), topic, key, body, now, nil, 0)
}

func RestoreMessage(
	id kernel.UUID,
	topic, key string,
	payload []byte,
	createdAt time.Time,
	sentAt *time.Time,
	retries int,
) (*Message, error) {
	var topicErr error
	if topic == "" {
		topicErr = errs.NewValueIsRequiredError("topic")
	}
	if err := errors.Join(id.Validate(), topicErr); err != nil {
		return nil, err
	}
	return &Message{
		id:            id,
		topic:         topic,
		key:           key,
		payload:       payload,
		createdAt:     createdAt,
		sentAt:        sentAt,
		retries:       retries,
		isConstructed: true,
	}, nil
}

func (m *Message) Validate() error {
	if m == nil || !m.isConstructed {
		return ErrMessageIsNotConstructed
	}
	return nil
}

func (m *Message) ID() kernel.UUID      { return m.id }
func (m *Message) Topic() string        { return m.topic }
func (m *Message) Key() string          { return m.key }
func (m *Message) Payload() []byte      { return m.payload }
func (m *Message) CreatedAt() time.Time { return m.createdAt }
func (m *Message) SentAt() *time.Time   { return m.sentAt }
func (m *Message) Retries() int         { return m.retries }
