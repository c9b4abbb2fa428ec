package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrementPerSensor(t *testing.T) {
	r := New()
	r.Produced("imu")
	r.Produced("imu")
	r.Dropped("camera")
	r.Enqueued("imu")
	r.SetTotalBytes(42)

	require.Equal(t, float64(2), testutil.ToFloat64(r.produced.WithLabelValues("imu")))
	require.Equal(t, float64(1), testutil.ToFloat64(r.dropped.WithLabelValues("camera")))
	require.Equal(t, float64(1), testutil.ToFloat64(r.enqueued.WithLabelValues("imu")))
	require.Equal(t, float64(42), testutil.ToFloat64(r.totalBytes))
}

func TestServeNoopOnEmptyAddr(t *testing.T) {
	r := New()
	r.Serve(nil, "") // must return immediately, never touch a nil ctx
}
