package model

import (
	"encoding/json"
	"strconv"
)

// Key identifies a persisted record. The zero Key is New: the record has not
// been written yet and saving it performs an INSERT. A Key built with
// Existing always refers to a stored row, including a row whose id is 0.
type Key struct {
	id  uint64
	set bool
}

// New returns the key of an unsaved record.
func New() Key { return Key{} }

// Existing returns the key of the stored row with the given id.
func Existing(id uint64) Key { return Key{id: id, set: true} }

// IsNew reports whether the record has not been persisted.
func (k Key) IsNew() bool { return !k.set }

// ID returns the row id. It is 0 for a New key.
func (k Key) ID() uint64 { return k.id }

func (k Key) String() string {
	if !k.set {
		return "new"
	}
	return strconv.FormatUint(k.id, 10)
}

// MarshalJSON renders a New key as null and an existing key as its id.
func (k Key) MarshalJSON() ([]byte, error) {
	if !k.set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatUint(k.id, 10)), nil
}

// UnmarshalJSON accepts null (New) or a number (Existing).
func (k *Key) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*k = New()
		return nil
	}
	var id uint64
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	*k = Existing(id)
	return nil
}
