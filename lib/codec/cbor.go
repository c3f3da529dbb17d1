// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode encodes with Core Deterministic Encoding (RFC 8949 §4.2).
// Identical values always produce identical bytes.
var encMode cbor.EncMode

// decMode bounds nesting and collection sizes so a misbehaving peer
// on a long-lived connection cannot make a single request arbitrarily
// expensive to decode. Unknown fields are ignored.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// Enumerations (schema.TicketType, schema.VenueType) implement
	// encoding.TextMarshaler and travel as their declared names.
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	// Creation timestamps keep sub-second precision and zone offset.
	encOptions.Time = cbor.TimeRFC3339Nano
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType:   reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler:  cbor.TextUnmarshalerTextString,
		MaxNestedLevels:  16,
		MaxArrayElements: 4096,
		MaxMapPairs:      256,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Encoder is a CBOR stream encoder. Aliased so callers import only
// lib/codec.
type Encoder = cbor.Encoder

// Decoder is a CBOR stream decoder.
type Decoder = cbor.Decoder

// RawMessage is an undecoded CBOR value.
type RawMessage = cbor.RawMessage

// NewEncoder returns an encoder writing to w. One encoder is kept per
// connection for its whole lifetime.
func NewEncoder(w io.Writer) *Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a decoder reading from r. The decoder buffers, so
// a connection must be read through one decoder only; creating a
// second decoder on the same stream loses buffered bytes.
func NewDecoder(r io.Reader) *Decoder {
	return decMode.NewDecoder(r)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) of data.
// Used when logging undecodable requests.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
