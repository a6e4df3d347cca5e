package messaging_test

import (
	"context"
	"testing"

	"github.com/egannguyen/go-kafka-marketplace/internal/messaging"
	"github.com/stretchr/testify/assert"
)

func TestLogPublisher(t *testing.T) {
	var p messaging.Publisher = messaging.LogPublisher{}

	assert.NoError(t, p.PublishEvent(context.Background(), "orders.placed", "o-1", map[string]string{"order_id": "o-1"}))
	assert.Error(t, p.PublishEvent(context.Background(), "orders.placed", "o-1", make(chan int)))
}
