package mqtt

import (
	"bytes"
	"fmt"

	"github.com/golang/protobuf/jsonpb"
	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/iolink/pkg/l0/link"
)

// Encoding is the payload encoding of published events.
type Encoding int

// Encodings.
const (
	EncodingProto Encoding = iota
	EncodingJSON
)

// ParseEncoding parses the encoding query parameter of a broker URL.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "", "proto":
		return EncodingProto, nil
	case "json":
		return EncodingJSON, nil
	}
	return EncodingProto, fmt.Errorf("unknown encoding %q", s)
}

// String implements fmt.Stringer.
func (e Encoding) String() string {
	if e == EncodingJSON {
		return "json"
	}
	return "proto"
}

// Encode serializes an event.
func (e Encoding) Encode(msg *structpb.Struct) ([]byte, error) {
	if e == EncodingJSON {
		var buf bytes.Buffer
		if err := (&jsonpb.Marshaler{}).Marshal(&buf, msg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return proto.Marshal(msg)
}

// Decode parses an event.
func (e Encoding) Decode(payload []byte) (*structpb.Struct, error) {
	msg := &structpb.Struct{}
	var err error
	if e == EncodingJSON {
		err = jsonpb.Unmarshal(bytes.NewReader(payload), msg)
	} else {
		err = proto.Unmarshal(payload, msg)
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodeAny parses an event in either encoding. JSON payloads always start
// with '{' which is never the first byte of an encoded Struct.
func DecodeAny(payload []byte) (*structpb.Struct, Encoding, error) {
	enc := EncodingProto
	if trimmed := bytes.TrimSpace(payload); len(trimmed) > 0 && trimmed[0] == '{' {
		enc = EncodingJSON
	}
	msg, err := enc.Decode(payload)
	return msg, enc, err
}

// ConnectionEvent builds the event published when the device connection
// changes.
func ConnectionEvent(device, port string, connected bool) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"device":    stringValue(device),
		"port":      stringValue(port),
		"connected": {Kind: &structpb.Value_BoolValue{BoolValue: connected}},
	}}
}

// ReportEvent builds the event published for a pin report.
func ReportEvent(device, port string, r link.Report) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"device": stringValue(device),
		"port":   stringValue(port),
		"pin":    numberValue(float64(r.Pin)),
		"state":  stringValue(r.State.String()),
		"value":  numberValue(float64(r.Value)),
		"count":  numberValue(float64(r.Count)),
	}}
}

func stringValue(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

func numberValue(v float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: v}}
}
