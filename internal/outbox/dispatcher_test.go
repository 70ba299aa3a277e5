package outbox

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupByTopicSetsKeyAndHeaders(t *testing.T) {
	messages := []Message{
		{
			EventID:      1,
			UserID:       "user-1",
			AggregateID:  "act-1",
			EventType:    "activity.logged",
			Topic:        "activity_events",
			PartitionKey: "user-1",
			Payload:      json.RawMessage(`{"activity_id":"act-1"}`),
		},
		{
			EventID:      2,
			UserID:       "user-1",
			AggregateID:  "act-1",
			EventType:    "activity.deleted",
			Topic:        "activity_events",
			PartitionKey: "user-1",
			Payload:      json.RawMessage(`{"activity_id":"act-1"}`),
		},
	}

	batches := groupByTopic(messages)
	require.Len(t, batches, 1)

	records := batches["activity_events"]
	require.Len(t, records, 2)

	first := records[0]
	require.Equal(t, []byte("user-1"), first.Key)
	require.JSONEq(t, `{"activity_id":"act-1"}`, string(first.Value))

	headers := make(map[string]string, len(first.Headers))
	for _, h := range first.Headers {
		headers[h.Key] = string(h.Value)
	}
	require.Equal(t, "activity.logged", headers["event_type"])
	require.Equal(t, "user-1", headers["user_id"])
}

func TestGroupByTopicSplitsTopics(t *testing.T) {
	messages := []Message{
		{EventID: 1, Topic: "activity_events", EventType: "activity.logged"},
		{EventID: 2, Topic: "audit_events", EventType: "activity.deleted"},
	}

	batches := groupByTopic(messages)
	require.Len(t, batches, 2)
	require.Len(t, batches["activity_events"], 1)
	require.Len(t, batches["audit_events"], 1)
}
