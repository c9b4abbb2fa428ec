package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusRoundTrip(t *testing.T) {
	st, msg, err := NewRootStatus()
	require.NoError(t, err)
	require.NoError(t, st.SetTopic("/tinysk/status"))
	st.SetTimestamp(42)
	st.SetCpuUsage(0.1)
	require.NoError(t, st.SetIp("10.0.0.1"))
	st.SetTotalReadBytes(128)

	data, err := MarshalPacked(msg)
	require.NoError(t, err)

	back, err := UnmarshalPacked(data)
	require.NoError(t, err)
	got, err := ReadRootStatus(back)
	require.NoError(t, err)

	topic, err := got.Topic()
	require.NoError(t, err)
	require.Equal(t, "/tinysk/status", topic)
	require.EqualValues(t, 42, got.Timestamp())
	require.InDelta(t, 0.1, got.CpuUsage(), 1e-9)
	ip, err := got.Ip()
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1", ip)
	require.EqualValues(t, 128, got.TotalReadBytes())
}

func TestImuRoundTrip(t *testing.T) {
	values := make([]float64, 17)
	for i := range values {
		values[i] = float64(i)
	}

	st, msg, err := NewRootImu()
	require.NoError(t, err)
	st.SetTimestamp(7)
	st.SetAccX(values[0] * 9.8)
	st.SetAccY(values[1] * 9.8)
	st.SetAccZ(values[2] * 9.8)
	st.SetGyrX(values[3])
	st.SetGyrY(values[4])
	st.SetGyrZ(values[5])
	st.SetQuatW(values[12])
	st.SetQuatX(values[13])
	st.SetQuatY(values[14])
	st.SetQuatZ(values[15])

	data, err := MarshalPacked(msg)
	require.NoError(t, err)
	back, err := UnmarshalPacked(data)
	require.NoError(t, err)
	got, err := ReadRootImu(back)
	require.NoError(t, err)

	require.InDelta(t, values[0]*9.8, got.AccX(), 1e-9)
	require.InDelta(t, values[1]*9.8, got.AccY(), 1e-9)
	require.InDelta(t, values[2]*9.8, got.AccZ(), 1e-9)
	require.InDelta(t, values[3], got.GyrX(), 1e-9)
	require.InDelta(t, values[12], got.QuatW(), 1e-9)
	require.InDelta(t, values[15], got.QuatZ(), 1e-9)
}

func TestPointCloudRoundTrip(t *testing.T) {
	st, msg, err := NewRootPointCloud()
	require.NoError(t, err)
	require.NoError(t, st.SetTopic("/tinysk/lidar"))
	st.SetTimestamp(99)

	pts, err := st.NewPoints(3)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		p := pts.At(i)
		p.SetX(float32(i))
		p.SetY(float32(i) * 2)
		p.SetZ(float32(i) * 3)
		p.SetIntensity(0.5)
	}

	data, err := MarshalPacked(msg)
	require.NoError(t, err)
	back, err := UnmarshalPacked(data)
	require.NoError(t, err)
	got, err := ReadRootPointCloud(back)
	require.NoError(t, err)

	gotPts, err := got.Points()
	require.NoError(t, err)
	require.Equal(t, 3, gotPts.Len())
	require.EqualValues(t, 2, gotPts.At(1).X())
}
