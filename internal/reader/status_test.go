package reader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"tinyskpub/internal/config"
	"tinyskpub/internal/schema"
)

func newTestStatusReader(t *testing.T, cmd string) *StatusReader {
	t.Helper()
	cfg, err := config.Load(writeTempYAML(t, `
sensors: [status]
status:
  type: Status
  topic: /tinysk/status
  rate: 1
  cmd: "`+cmd+`"
`))
	require.NoError(t, err)

	r, err := NewStatusReader("status", cfg)
	require.NoError(t, err)
	return r.(*StatusReader)
}

func TestStatusReaderDecodesSixFields(t *testing.T) {
	r := newTestStatusReader(t, `echo '0.1;45.2;0.3;12.1;0.8;10.0.0.1'`)

	f, err := r.Read(context.Background())
	require.NoError(t, err)
	require.NotNil(t, f)
	require.Equal(t, "status", f.SensorName)

	msg, err := schema.UnmarshalPacked(f.Body)
	require.NoError(t, err)
	st, err := schema.ReadRootStatus(msg)
	require.NoError(t, err)
	require.InDelta(t, 0.1, st.CpuUsage(), 1e-9)
	ip, err := st.Ip()
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1", ip)
}

func TestStatusReaderWrongFieldCountReturnsNil(t *testing.T) {
	r := newTestStatusReader(t, `echo 'only;three;fields'`)

	f, err := r.Read(context.Background())
	require.NoError(t, err)
	require.Nil(t, f)
}

// TestTotalReadBytesResetsOnEmission covers property 3: StatusReader
// swaps the process-wide counter to zero on each emission.
func TestTotalReadBytesResetsOnEmission(t *testing.T) {
	TotalReadBytes.Store(123)
	r := newTestStatusReader(t, `echo '0.1;45.2;0.3;12.1;0.8;10.0.0.1'`)

	f, err := r.Read(context.Background())
	require.NoError(t, err)
	require.NotNil(t, f)

	msg, err := schema.UnmarshalPacked(f.Body)
	require.NoError(t, err)
	st, err := schema.ReadRootStatus(msg)
	require.NoError(t, err)
	require.EqualValues(t, 123, st.TotalReadBytes())
	require.EqualValues(t, 0, TotalReadBytes.Load())
}
