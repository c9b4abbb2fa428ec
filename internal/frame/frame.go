// Package frame implements the wire framing contract (§3, §4.3): a
// sensor-name prefix followed by a packed schema body, with no length
// delimiter — downstream consumers match known prefixes or rely on
// out-of-band topic mapping.
package frame

import "fmt"

// Frame is the unit of output (§3).
type Frame struct {
	SensorName  string
	Topic       string
	TimestampNs uint64
	Body        []byte
}

// Bytes returns the encoded wire representation: sensor name bytes
// followed by the packed schema body, with no separator.
func (f Frame) Bytes() []byte {
	return Encode(f.SensorName, f.Body, len(f.Body))
}

// Encode builds the framed byte buffer for one sample (§4.3).
//
// It allocates a buffer of capacity len(sensorName)+maxSize, writes the
// sensor name verbatim at offset 0, writes body into the remainder, and
// truncates to the actual written length. maxSize is an upper bound the
// caller must honor to size scratch space; a body that overruns it is a
// programmer error, not a runtime condition to recover from, matching
// §4.3's "overrun is treated as a programmer error".
func Encode(sensorName string, body []byte, maxSize int) []byte {
	if len(body) > maxSize {
		panic(fmt.Sprintf("frame: body of %d bytes exceeds max_size %d for sensor %q", len(body), maxSize, sensorName))
	}

	buf := make([]byte, 0, len(sensorName)+maxSize)
	buf = append(buf, sensorName...)
	buf = append(buf, body...)
	return buf
}
