package service

import (
	"bytes"

	"connectrpc.com/connect"
	json "github.com/goccy/go-json"
)

// jsonCodec marshals plain Go request and response structs for Connect.
// Unknown fields are rejected so a typo in an update never passes silently.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

// Codec returns the codec used by every ledger service and client.
func Codec() connect.Codec {
	return jsonCodec{}
}

func (jsonCodec) Name() string {
	return "json"
}

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(msg)
}
