package stablemap

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrKeyExists is matched by the error TryInsert returns for a present key.
var ErrKeyExists = errors.New("stablemap: key already exists")

// OccupiedError carries the rejected insert of TryInsert.
type OccupiedError[K comparable, V any] struct {
	Key      K
	Existing V
	Value    V
}

func (e *OccupiedError[K, V]) Error() string {
	return fmt.Sprintf("stablemap: failed to insert %v, key %v already exists with value %v",
		e.Value, e.Key, e.Existing)
}

func (e *OccupiedError[K, V]) Unwrap() error {
	return ErrKeyExists
}
