package goToken

import (
	"encoding/json"
	"strings"
)

// Serializer converts claim maps to and from their wire representation.
// Builder, Parser, and Validator each take a Serializer at construction;
// there is no process-wide provider.
type Serializer interface {
	Serialize(v any) (string, error)
	Deserialize(data string, v any) error
}

// JSONSerializer is the default Serializer backed by encoding/json.
// Numbers are decoded as json.Number so round-tripped claims keep their
// exact textual representation.
type JSONSerializer struct{}

// Serialize marshals v to a JSON string.
func (JSONSerializer) Serialize(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Deserialize unmarshals data into v.
func (JSONSerializer) Deserialize(data string, v any) error {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
