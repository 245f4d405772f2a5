// Package ctrlplane is a gRPC sidecar control surface over a running
// service.Service: a small out-of-process supervisor can query call
// status and request call teardown without linking core/ directly,
// adapted from the teacher's servo gRPC scaffolding (servo/server.go,
// cmd/servo/main.go) generalized from servo-angle control to call control.
package ctrlplane

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec replaces gRPC's default "proto" codec with plain JSON
// marshaling of the request/reply structs below. The teacher's servo
// service relies on protoc-generated message types; reproducing that
// machinery (ProtoReflect + a compiled FileDescriptor) is not something
// that can be hand-authored without running protoc, which is out of
// reach here, so this control surface trades protobuf's wire format for
// gRPC's own transport, framing, and service-description model, which is
// the part of the dependency this package actually needs.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return "proto" }
