package pubsub_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"subtitle-credit/infrastructure/pubsub"
)

func TestNewEventPublisher(t *testing.T) {
	publisher := pubsub.NewEventPublisher(nil, "subtitle-credit-events")
	assert.NotNil(t, publisher)
}
