package schema

import "capnproto.org/go/capnp/v3"

// Image is the root message CameraReader emits (§3, §4.7).
//
// Data section layout (offsets in bytes):
//
//	0  timestamp  uint64
//	8  width      uint32
//	12 height     uint32
//	16 fps        float32
//
// Pointer section: 0=topic (text), 1=encoding (text), 2=data (bytes).
type Image capnp.Struct

var imageSize = capnp.ObjectSize{DataSize: 24, PointerCount: 3}

func NewRootImage() (Image, *capnp.Message, error) {
	msg, seg, err := newMessage()
	if err != nil {
		return Image{}, nil, err
	}
	st, err := capnp.NewRootStruct(seg, imageSize)
	if err != nil {
		return Image{}, nil, err
	}
	return Image(st), msg, nil
}

func ReadRootImage(msg *capnp.Message) (Image, error) {
	root, err := msg.Root()
	if err != nil {
		return Image{}, err
	}
	return Image(root.Struct()), nil
}

func (s Image) Timestamp() uint64     { return capnp.Struct(s).Uint64(0) }
func (s Image) SetTimestamp(v uint64) { capnp.Struct(s).SetUint64(0, v) }

func (s Image) Width() uint32     { return capnp.Struct(s).Uint32(8) }
func (s Image) SetWidth(v uint32) { capnp.Struct(s).SetUint32(8, v) }

func (s Image) Height() uint32     { return capnp.Struct(s).Uint32(12) }
func (s Image) SetHeight(v uint32) { capnp.Struct(s).SetUint32(12, v) }

func (s Image) Fps() float32     { return capnp.Struct(s).Float32(16) }
func (s Image) SetFps(v float32) { capnp.Struct(s).SetFloat32(16, v) }

func (s Image) Topic() (string, error)  { return capnp.Struct(s).Text(0) }
func (s Image) SetTopic(v string) error { return capnp.Struct(s).SetText(0, v) }

func (s Image) Encoding() (string, error)  { return capnp.Struct(s).Text(1) }
func (s Image) SetEncoding(v string) error { return capnp.Struct(s).SetText(1, v) }

func (s Image) Data() ([]byte, error)  { return capnp.Struct(s).Data(2) }
func (s Image) SetData(v []byte) error { return capnp.Struct(s).SetData(2, v) }
