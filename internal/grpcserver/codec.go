package grpcserver

import (
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc/encoding"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonCodec carries plain Go structs over gRPC, so the service needs no
// generated protobuf messages.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return "json" }

// Codec returns the codec clients must force on their calls.
func Codec() encoding.Codec { return jsonCodec{} }
