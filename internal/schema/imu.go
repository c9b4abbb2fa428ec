package schema

import "capnproto.org/go/capnp/v3"

// Imu is the root message IMUReader emits (§3, §4.6). Only acceleration,
// angular velocity, and orientation are populated — mag/euler/pressure
// are decoded from the vendor frame but deliberately not forwarded onto
// the wire (§4.6).
//
// Data section layout (offsets in bytes):
//
//	0  timestamp          uint64
//	8  acc.x, acc.y, acc.z                float64 × 3  (m/s², post g*9.8)
//	32 gyr.x, gyr.y, gyr.z                float64 × 3  (rad/s)
//	56 quat.w, quat.x, quat.y, quat.z     float64 × 4
//
// No pointer section is used besides topic.
type Imu capnp.Struct

var imuSize = capnp.ObjectSize{DataSize: 88, PointerCount: 1}

func NewRootImu() (Imu, *capnp.Message, error) {
	msg, seg, err := newMessage()
	if err != nil {
		return Imu{}, nil, err
	}
	st, err := capnp.NewRootStruct(seg, imuSize)
	if err != nil {
		return Imu{}, nil, err
	}
	return Imu(st), msg, nil
}

func ReadRootImu(msg *capnp.Message) (Imu, error) {
	root, err := msg.Root()
	if err != nil {
		return Imu{}, err
	}
	return Imu(root.Struct()), nil
}

func (s Imu) Timestamp() uint64     { return capnp.Struct(s).Uint64(0) }
func (s Imu) SetTimestamp(v uint64) { capnp.Struct(s).SetUint64(0, v) }

func (s Imu) AccX() float64     { return capnp.Struct(s).Float64(8) }
func (s Imu) SetAccX(v float64) { capnp.Struct(s).SetFloat64(8, v) }
func (s Imu) AccY() float64     { return capnp.Struct(s).Float64(16) }
func (s Imu) SetAccY(v float64) { capnp.Struct(s).SetFloat64(16, v) }
func (s Imu) AccZ() float64     { return capnp.Struct(s).Float64(24) }
func (s Imu) SetAccZ(v float64) { capnp.Struct(s).SetFloat64(24, v) }

func (s Imu) GyrX() float64     { return capnp.Struct(s).Float64(32) }
func (s Imu) SetGyrX(v float64) { capnp.Struct(s).SetFloat64(32, v) }
func (s Imu) GyrY() float64     { return capnp.Struct(s).Float64(40) }
func (s Imu) SetGyrY(v float64) { capnp.Struct(s).SetFloat64(40, v) }
func (s Imu) GyrZ() float64     { return capnp.Struct(s).Float64(48) }
func (s Imu) SetGyrZ(v float64) { capnp.Struct(s).SetFloat64(48, v) }

func (s Imu) QuatW() float64     { return capnp.Struct(s).Float64(56) }
func (s Imu) SetQuatW(v float64) { capnp.Struct(s).SetFloat64(56, v) }
func (s Imu) QuatX() float64     { return capnp.Struct(s).Float64(64) }
func (s Imu) SetQuatX(v float64) { capnp.Struct(s).SetFloat64(64, v) }
func (s Imu) QuatY() float64     { return capnp.Struct(s).Float64(72) }
func (s Imu) SetQuatY(v float64) { capnp.Struct(s).SetFloat64(72, v) }
func (s Imu) QuatZ() float64     { return capnp.Struct(s).Float64(80) }
func (s Imu) SetQuatZ(v float64) { capnp.Struct(s).SetFloat64(80, v) }

func (s Imu) Topic() (string, error)     { return capnp.Struct(s).Text(0) }
func (s Imu) SetTopic(v string) error    { return capnp.Struct(s).SetText(0, v) }
