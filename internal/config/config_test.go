package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleYAML = `
log:
  filename: stdout
  level: 1
  pattern: "%v"
app:
  address: "*"
  port: 5555
  max_message_size: 4096
  checking_rate: 100
sensors: [status, imu]
status:
  type: Status
  topic: /tinysk/status
  rate: 1
  cmd: "cat /tmp/status.sh"
imu:
  type: Imu
  topic: /tinysk/imu
  rate: 100
  port: /dev/ttyUSB0
  baud_rate: 115200
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadParsesSensorsAndExtras(t *testing.T) {
	path := writeTemp(t, sampleYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "stdout", cfg.Log.Filename)
	require.Equal(t, 5555, cfg.App.Port)
	require.ElementsMatch(t, []string{"status", "imu"}, cfg.Sensors)

	status, ok := cfg.Sensor("status")
	require.True(t, ok)
	require.Equal(t, "Status", status.Type)
	cmd, ok := status.String("cmd")
	require.True(t, ok)
	require.Equal(t, "cat /tmp/status.sh", cmd)

	imu, ok := cfg.Sensor("imu")
	require.True(t, ok)
	baud, ok := imu.Int("baud_rate")
	require.True(t, ok)
	require.Equal(t, 115200, baud)
}

func TestSensorAbsentSubtree(t *testing.T) {
	path := writeTemp(t, `
sensors: [ghost]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	_, ok := cfg.Sensor("ghost")
	require.False(t, ok)
}

func TestMissingExtraKey(t *testing.T) {
	path := writeTemp(t, sampleYAML)
	cfg, err := Load(path)
	require.NoError(t, err)
	status, _ := cfg.Sensor("status")
	_, ok := status.String("no_such_key")
	require.False(t, ok)
}
