package reader

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tinyskpub/internal/config"
	"tinyskpub/internal/schema"
)

func newTestLidarReader(t *testing.T) *LidarReader {
	t.Helper()
	cfg, err := config.Load(writeTempYAML(t, `
sensors: [lidar]
lidar:
  type: PointCloud
  topic: /tinysk/lidar
  rate: 10
  port: /dev/ttyUSB1
  cloud_size: 3000
  device:
    frequency_modulation: 1
    HDR: 0
    imgType: 2
    cloud_coord: 0
    int1: 1
    int2: 2
    int3: 3
    intgs: 1
    minLSB: 10
    cut_corner: 0
    maxfps: 10
  filter:
    medianSize: 0
    kalmanEnable: false
    kalmanFactor: 0
    kalmanThreshold: 0
    edgeEnable: false
    edgeThreshold: 0
    dustEnable: false
    dustThreshold: 0
    dustFrames: 0
`))
	require.NoError(t, err)

	r, err := NewLidarReader("lidar", cfg)
	require.NoError(t, err)
	return r.(*LidarReader)
}

// TestLidarReaderDedupesAndSizesCloud exercises scenario S4: first read
// after the synthetic SDK connects returns a frame; an immediate second
// read returns none (pointer-equality dedup); every decoded cloud has
// exactly cloud_size points.
func TestLidarReaderDedupesAndSizesCloud(t *testing.T) {
	r := newTestLidarReader(t)
	defer r.Close()

	var found bool
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f, err := r.Read(context.Background())
		require.NoError(t, err)
		if f != nil {
			msg, err := schema.UnmarshalPacked(f.Body)
			require.NoError(t, err)
			pc, err := schema.ReadRootPointCloud(msg)
			require.NoError(t, err)
			pts, err := pc.Points()
			require.NoError(t, err)
			require.Equal(t, 3000, pts.Len())
			found = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, found, "expected a frame within 2s of SDK connect")

	f2, err := r.Read(context.Background())
	require.NoError(t, err)
	require.Nil(t, f2)
}

// TestLidarReaderSteadyRate exercises property 8: over 2s at ~10Hz,
// expect at least half the nominal frame count decoded, with no two
// consecutive frames sharing a timestamp.
func TestLidarReaderSteadyRate(t *testing.T) {
	r := newTestLidarReader(t)
	defer r.Close()

	var count int
	var lastTs uint64
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f, err := r.Read(context.Background())
		require.NoError(t, err)
		if f != nil {
			if count > 0 {
				require.NotEqual(t, lastTs, f.TimestampNs)
			}
			lastTs = f.TimestampNs
			count++
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.GreaterOrEqual(t, count, 10)
}
