package outbox_test

import (
	"encoding/json"
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/outbox"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	t.Run("encodes the payload", func(t *testing.T) {
		now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
		event := outbox.OrderStatusChanged{OrderID: "o-1", From: "pending", To: "on_hold", OccurredAt: now}

		msg, err := outbox.NewMessage(outbox.TopicOrderStatusChanged, "o-1", event, now)

		require.NoError(t, err)
		require.NoError(t, msg.Validate())
		assert.Equal(t, "o-1", msg.Key())
		assert.Nil(t, msg.SentAt())

		var decoded outbox.OrderStatusChanged
		require.NoError(t, json.Unmarshal(msg.Payload(), &decoded))
		assert.Equal(t, event, decoded)
	})

	t.Run("requires a topic", func(t *testing.T) {
		_, err := outbox.NewMessage("", "k", struct{}{}, time.Now())

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("unencodable payload", func(t *testing.T) {
		_, err := outbox.NewMessage(outbox.TopicTransferCompleted, "k", make(chan int), time.Now())

		require.Error(t, err)
	})
}
