package protocol

import (
	"bytes"
	"encoding/json"
	"sync"
)

// Codec handles encoding and decoding of wire payloads.
type Codec interface {
	// EncodeRequest encodes a request into its JSON wire form.
	EncodeRequest(req *Request) ([]byte, error)

	// DecodeResults parses the body of an HTTP 200 response.
	DecodeResults(data []byte) (*ResponsePayload, error)

	// DecodeError parses the body of a non-200 response.
	DecodeError(data []byte) (*ErrorPayload, error)
}

// JSONCodec implements Codec using encoding/json with a pooled buffer for
// encoding.
type JSONCodec struct {
	bufferPool sync.Pool
}

// NewCodec creates a new JSON wire codec.
func NewCodec() Codec {
	return &JSONCodec{
		bufferPool: sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}
}

// EncodeRequest encodes a request into JSON.
func (c *JSONCodec) EncodeRequest(req *Request) ([]byte, error) {
	if req == nil || len(req.Transaction) == 0 {
		return nil, NewTransportError(ErrorCodeEncodeFailed, "cannot encode an empty request", nil)
	}

	buf := c.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer c.bufferPool.Put(buf)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(req); err != nil {
		return nil, NewTransportError(ErrorCodeEncodeFailed, "failed to encode request", map[string]interface{}{
			"cause": err.Error(),
		})
	}

	// Encode appends a trailing newline; strip it so the body is a bare object.
	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}

	// Return a copy since the buffer is reused.
	result := make([]byte, len(out))
	copy(result, out)
	return result, nil
}

// DecodeResults parses a results payload.
func (c *JSONCodec) DecodeResults(data []byte) (*ResponsePayload, error) {
	var payload ResponsePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, NewTransportError(ErrorCodeMalformedResponse, "failed to decode results payload", map[string]interface{}{
			"cause": err.Error(),
			"body":  truncateForDetail(data),
		})
	}
	return &payload, nil
}

// DecodeError parses an error payload.
func (c *JSONCodec) DecodeError(data []byte) (*ErrorPayload, error) {
	var payload ErrorPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, NewTransportError(ErrorCodeMalformedResponse, "failed to decode error payload", map[string]interface{}{
			"cause": err.Error(),
			"body":  truncateForDetail(data),
		})
	}
	return &payload, nil
}

// truncateForDetail keeps error details readable when the server returns a
// large or non-JSON body.
func truncateForDetail(data []byte) string {
	const max = 256
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
