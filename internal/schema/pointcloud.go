package schema

import "capnproto.org/go/capnp/v3"

// Point is one element of a PointCloud's point list (§3, §4.8): x, y, z,
// intensity, each a 32-bit float, packed into a 16-byte struct with no
// pointer section.
type Point capnp.Struct

var pointSize = capnp.ObjectSize{DataSize: 16, PointerCount: 0}

func (p Point) X() float32         { return capnp.Struct(p).Float32(0) }
func (p Point) SetX(v float32)     { capnp.Struct(p).SetFloat32(0, v) }
func (p Point) Y() float32         { return capnp.Struct(p).Float32(4) }
func (p Point) SetY(v float32)     { capnp.Struct(p).SetFloat32(4, v) }
func (p Point) Z() float32         { return capnp.Struct(p).Float32(8) }
func (p Point) SetZ(v float32)     { capnp.Struct(p).SetFloat32(8, v) }
func (p Point) Intensity() float32 { return capnp.Struct(p).Float32(12) }
func (p Point) SetIntensity(v float32) {
	capnp.Struct(p).SetFloat32(12, v)
}

// PointList is a list of Point, built as a Cap'n Proto composite list.
type PointList struct{ capnp.List }

func (l PointList) At(i int) Point { return Point(l.List.Struct(i)) }
func (l PointList) Len() int       { return l.List.Len() }

// PointCloud is the root message LidarReader emits (§3, §4.8).
//
// Data section layout: 0=timestamp uint64. Pointer section: 0=topic
// (text), 1=points (composite list of Point).
type PointCloud capnp.Struct

var pointCloudSize = capnp.ObjectSize{DataSize: 8, PointerCount: 2}

func NewRootPointCloud() (PointCloud, *capnp.Message, error) {
	msg, seg, err := newMessage()
	if err != nil {
		return PointCloud{}, nil, err
	}
	st, err := capnp.NewRootStruct(seg, pointCloudSize)
	if err != nil {
		return PointCloud{}, nil, err
	}
	return PointCloud(st), msg, nil
}

func ReadRootPointCloud(msg *capnp.Message) (PointCloud, error) {
	root, err := msg.Root()
	if err != nil {
		return PointCloud{}, err
	}
	return PointCloud(root.Struct()), nil
}

func (s PointCloud) Timestamp() uint64     { return capnp.Struct(s).Uint64(0) }
func (s PointCloud) SetTimestamp(v uint64) { capnp.Struct(s).SetUint64(0, v) }

func (s PointCloud) Topic() (string, error)  { return capnp.Struct(s).Text(0) }
func (s PointCloud) SetTopic(v string) error { return capnp.Struct(s).SetText(0, v) }

// NewPoints allocates a fresh composite list of n points as this
// message's point-cloud payload and wires it into pointer slot 1.
func (s PointCloud) NewPoints(n int32) (PointList, error) {
	l, err := capnp.NewCompositeList(capnp.Struct(s).Segment(), pointSize, n)
	if err != nil {
		return PointList{}, err
	}
	if err := capnp.Struct(s).SetPtr(1, l.ToPtr()); err != nil {
		return PointList{}, err
	}
	return PointList{l}, nil
}

// Points returns the already-encoded point list.
func (s PointCloud) Points() (PointList, error) {
	p, err := capnp.Struct(s).Ptr(1)
	if err != nil {
		return PointList{}, err
	}
	return PointList{p.List()}, nil
}
