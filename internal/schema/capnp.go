// Package schema holds the hand-built Cap'n Proto message layouts for the
// four payload kinds named in spec.md §3 (Status, Imu, Image, PointCloud).
//
// The binary schema compiler itself is out of scope (§1 — "schemas are
// supplied by an external code generator"); what is in scope is the wire
// format it would emit. These types are written in the same shape
// capnpc-go would generate — a Go struct wrapping capnp.Struct, plain
// field accessors, and a NewRootX constructor — but authored by hand
// against the capnp runtime (capnproto.org/go/capnp/v3) rather than
// produced from a .capnp file, per the original project's use of
// capnp::writePackedMessage (see _examples/original_source).
package schema

import "capnproto.org/go/capnp/v3"

// newMessage allocates a single-segment message, the layout every root
// builder in this package starts from.
func newMessage() (*capnp.Message, *capnp.Segment, error) {
	return capnp.NewMessage(capnp.SingleSegment(nil))
}

// MarshalPacked serializes msg using Cap'n Proto's packed encoding, the
// Go equivalent of capnp::writePackedMessage in the original C++ source.
func MarshalPacked(msg *capnp.Message) ([]byte, error) {
	return msg.MarshalPacked()
}

// UnmarshalPacked parses a packed Cap'n Proto message.
func UnmarshalPacked(data []byte) (*capnp.Message, error) {
	return capnp.UnmarshalPacked(data)
}
