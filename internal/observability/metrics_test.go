package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordActivityPersisted(t *testing.T) {
	loggedBefore := testutil.ToFloat64(activitiesLogged.WithLabelValues("transport"))
	emissionBefore := testutil.ToFloat64(emissionLogged.WithLabelValues("transport"))

	ts := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
	RecordActivityPersisted("transport", 2.5, ts)

	require.Equal(t, loggedBefore+1, testutil.ToFloat64(activitiesLogged.WithLabelValues("transport")))
	require.InDelta(t, emissionBefore+2.5, testutil.ToFloat64(emissionLogged.WithLabelValues("transport")), 1e-9)
	require.Equal(t, float64(ts.Unix()), testutil.ToFloat64(lastActivityPersisted))
}

func TestRecordActivityPersistedZeroTimeKeepsWatermark(t *testing.T) {
	ts := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
	RecordActivityPersisted("energy", 1, ts)
	RecordActivityPersisted("energy", 1, time.Time{})

	require.Equal(t, float64(ts.Unix()), testutil.ToFloat64(lastActivityPersisted))
}
