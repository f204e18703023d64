// Package jsonutil wraps github.com/go-json-experiment/json behind the
// familiar encoding/json call shapes.
//
// Usage:
//
//	enc := jsonutil.NewStreamEncoder(os.Stdout)
//	err := enc.Encode(record)
//
//	dec := jsonutil.NewStreamDecoder(f)
//	for dec.More() {
//	    err = dec.Decode(&record)
//	}
package jsonutil

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Encoder writes one JSON value per Encode call, each followed by a newline.
type Encoder struct {
	w io.Writer
}

// NewStreamEncoder creates an encoder that writes to w.
func NewStreamEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the JSON encoding of v to the stream, followed by a newline.
func (e *Encoder) Encode(v any) error {
	if err := json.MarshalWrite(e.w, v); err != nil {
		return err
	}
	_, err := e.w.Write([]byte{'\n'})
	return err
}

// Decoder reads a stream of JSON values, such as a JSON Lines file.
type Decoder struct {
	dec *jsontext.Decoder
}

// NewStreamDecoder creates a decoder that reads from r.
func NewStreamDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: jsontext.NewDecoder(r)}
}

// Decode reads the next JSON value from the stream and stores it in v.
// Callers check More before each call.
func (d *Decoder) Decode(v any) error {
	return json.UnmarshalDecode(d.dec, v)
}

// More reports whether another value is available.
func (d *Decoder) More() bool {
	return d.dec.PeekKind() != 0
}
