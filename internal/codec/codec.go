// Package codec serialises documents before they reach a storage backend.
package codec

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Codec turns values into bytes and back.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

const (
	NameJSON = "json"
	NameCBOR = "cbor"
)

// ByName resolves a configured codec name. An empty name selects JSON.
func ByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameJSON:
		return JSON{}, nil
	case NameCBOR:
		return CBOR{}, nil
	}
	return nil, fmt.Errorf("codec: unknown codec %q", name)
}

// JSON encodes documents with encoding/json.
type JSON struct{}

func (JSON) Name() string                       { return NameJSON }
func (JSON) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// encMode uses Core Deterministic Encoding so the same plan always produces
// the same bytes. Times keep nanoseconds as RFC 3339 strings.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBOR encodes documents with fxamacker/cbor. Struct json tags double as
// CBOR field names.
type CBOR struct{}

func (CBOR) Name() string                       { return NameCBOR }
func (CBOR) Marshal(v any) ([]byte, error)      { return encMode.Marshal(v) }
func (CBOR) Unmarshal(data []byte, v any) error { return decMode.Unmarshal(data, v) }
