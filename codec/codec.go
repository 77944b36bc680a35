// Package codec names the byte encodings used to persist set snapshots.
// "json" and "cbor" are registered by default.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// ErrUnknownCodec is returned by Get for an unregistered name.
var ErrUnknownCodec = errors.New("unknown codec")

// Codec converts values to and from bytes.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonCodec struct{}

func (jsonCodec) Name() string                       { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// cborCodec uses core deterministic encoding so equal values encode to equal
// bytes.
type cborCodec struct {
	enc cbor.EncMode
}

func (cborCodec) Name() string                       { return "cbor" }
func (c cborCodec) Marshal(v any) ([]byte, error)    { return c.enc.Marshal(v) }
func (cborCodec) Unmarshal(data []byte, v any) error { return cbor.Unmarshal(data, v) }

func newCBOR() cborCodec {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: cbor encode mode: %v", err))
	}
	return cborCodec{enc: enc}
}

var (
	JSON Codec = jsonCodec{}
	CBOR Codec = newCBOR()
)

var (
	codecs = map[string]Codec{
		JSON.Name(): JSON,
		CBOR.Name(): CBOR,
	}
	mutex sync.RWMutex
)

// Get returns a registered codec by name.
func Get(name string) (Codec, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	c, exists := codecs[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, name)
	}
	return c, nil
}

// Register adds or replaces a codec under its Name.
func Register(c Codec) {
	mutex.Lock()
	defer mutex.Unlock()

	codecs[c.Name()] = c
}

// Names returns the registered codec names in sorted order.
func Names() []string {
	mutex.RLock()
	defer mutex.RUnlock()

	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
