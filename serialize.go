package stablemap

import (
	"github.com/cockroachdb/errors"
	"github.com/sugawarayuuta/sonnet"
	"gopkg.in/yaml.v3"
)

// entry is the encoded form of one key-value pair.
type entry[K comparable, V any] struct {
	Key   K `json:"key" yaml:"key"`
	Value V `json:"value" yaml:"value"`
}

func (sm *StableMap[K, V]) entries() []entry[K, V] {
	out := make([]entry[K, V], 0, sm.size)
	for k, v := range sm.All() {
		out = append(out, entry[K, V]{Key: k, Value: v})
	}

	return out
}

// load replaces the content with entries, inserted in order.
func (sm *StableMap[K, V]) load(entries []entry[K, V]) {
	sm.Clear()
	sm.Reserve(len(entries))

	for _, e := range entries {
		sm.Insert(e.Key, e.Value)
	}
}

// MarshalJSON encodes the entries as an array of {"key", "value"} objects in
// index order. Empty slots and the indices themselves are not encoded.
func (sm *StableMap[K, V]) MarshalJSON() ([]byte, error) {
	data, err := sonnet.Marshal(sm.entries())
	if err != nil {
		return nil, errors.Wrap(err, "stablemap: encoding JSON")
	}

	return data, nil
}

// UnmarshalJSON replaces the content of the map with the decoded entries.
// They get the indices 0..n-1 in array order, which in general differ from
// the indices the encoded map used. A repeated key keeps its last value.
func (sm *StableMap[K, V]) UnmarshalJSON(data []byte) error {
	var entries []entry[K, V]
	if err := sonnet.Unmarshal(data, &entries); err != nil {
		return errors.Wrap(err, "stablemap: decoding JSON")
	}

	sm.load(entries)

	return nil
}

// MarshalYAML encodes the same ordered key/value sequence as MarshalJSON.
func (sm *StableMap[K, V]) MarshalYAML() (any, error) {
	return sm.entries(), nil
}

// UnmarshalYAML has the same index caveats as UnmarshalJSON.
func (sm *StableMap[K, V]) UnmarshalYAML(node *yaml.Node) error {
	var entries []entry[K, V]
	if err := node.Decode(&entries); err != nil {
		return errors.Wrap(err, "stablemap: decoding YAML")
	}

	sm.load(entries)

	return nil
}
