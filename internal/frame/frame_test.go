package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodePrefixesSensorName(t *testing.T) {
	body := []byte{0x01, 0x02, 0x03}
	out := Encode("imu0", body, len(body))
	require.Equal(t, "imu0", string(out[:4]))
	require.Equal(t, body, out[4:])
	require.Len(t, out, 4+len(body))
}

func TestEncodePanicsOnOverrun(t *testing.T) {
	require.Panics(t, func() {
		Encode("s", make([]byte, 10), 4)
	})
}

func TestFrameBytes(t *testing.T) {
	f := Frame{SensorName: "status", Topic: "/tinysk/status", TimestampNs: 1, Body: []byte("abc")}
	out := f.Bytes()
	require.Equal(t, "statusabc", string(out))
}
