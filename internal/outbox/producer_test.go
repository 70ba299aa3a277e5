package outbox

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestParseRequiredAcks(t *testing.T) {
	cases := []struct {
		value string
		want  kafka.RequiredAcks
	}{
		{"all", kafka.RequireAll},
		{"one", kafka.RequireOne},
		{"none", kafka.RequireNone},
		{" ONE ", kafka.RequireOne},
		{"", kafka.RequireAll},
		{"quorum", kafka.RequireAll},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, parseRequiredAcks(tc.value), "value %q", tc.value)
	}
}

func TestWriterForAppliesConfigAndCaches(t *testing.T) {
	producer := NewKafkaProducer(ProducerConfig{
		Brokers:      []string{"kafka-1:9092", "kafka-2:9092"},
		RequiredAcks: "one",
		BatchTimeout: 250 * time.Millisecond,
	})
	t.Cleanup(func() { _ = producer.Close() })

	writer := producer.writerFor("activity_events")
	require.Equal(t, kafka.RequireOne, writer.RequiredAcks)
	require.Equal(t, 250*time.Millisecond, writer.BatchTimeout)
	require.IsType(t, &kafka.Hash{}, writer.Balancer)

	require.Same(t, writer, producer.writerFor("activity_events"))
	require.NotSame(t, writer, producer.writerFor("other_topic"))
}

func TestProducerDefaultsBatchTimeout(t *testing.T) {
	producer := NewKafkaProducer(ProducerConfig{Brokers: []string{"kafka:9092"}})
	t.Cleanup(func() { _ = producer.Close() })

	require.Equal(t, time.Second, producer.writerFor("activity_events").BatchTimeout)
}
