package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/wx-station/internal/config"
	"github.com/couchcryptid/wx-station/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToKafkaMessage(t *testing.T) {
	msg := domain.Message{
		Topic: "wxWind",
		Key:   []byte("station-1"),
		Value: []byte(`{"speed":3}`),
		Headers: map[string]string{
			"produced_at": "2024-04-26T15:10:00Z",
			"kind":        "wind",
		},
	}

	out := toKafkaMessage(msg)

	assert.Equal(t, "wxWind", out.Topic)
	assert.Equal(t, []byte("station-1"), out.Key)
	assert.JSONEq(t, `{"speed":3}`, string(out.Value))
	require.Len(t, out.Headers, 2)
	assert.Equal(t, "kind", out.Headers[0].Key)
	assert.Equal(t, []byte("wind"), out.Headers[0].Value)
	assert.Equal(t, "produced_at", out.Headers[1].Key)
}

func TestWriter_PublishNothing(t *testing.T) {
	cfg := &config.RelayConfig{KafkaBrokers: []string{"localhost:9092"}}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.Publish(context.Background()))
}
