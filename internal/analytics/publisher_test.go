package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicon/internal/config"
)

func TestLookupEventJSON(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	body, err := json.Marshal(LookupEvent{Word: "apple", Found: true, At: at})
	require.NoError(t, err)
	assert.JSONEq(t, `{"word":"apple","found":true,"cached":false,"at":"2024-03-01T12:00:00Z"}`, string(body))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), LookupEvent{Word: "apple"}))
	assert.NoError(t, p.Close())
}

func TestNewKafkaPublisher(t *testing.T) {
	p := NewKafkaPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "lookup-events"})
	assert.Equal(t, "lookup-events", p.writer.Topic)
	assert.True(t, p.writer.Async)
	require.NoError(t, p.Close())
}
