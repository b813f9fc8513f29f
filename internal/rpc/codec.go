// Package rpc describes the profilekeeper remote store gRPC service: wire
// messages, the service descriptor and a thin typed client.
//
// Messages travel as JSON. The codec is registered with grpc under the
// "json" content subtype, so both sides must dial/serve with
// CallContentSubtype(CodecName).
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content subtype used by this service.
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
