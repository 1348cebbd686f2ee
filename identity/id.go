package identity

import (
	"strconv"
)

// ID is a resolved uid or gid.
//
// The zero value is unresolved. A resolved ID may hold any 32 bit RID,
// including values at or above 2^31.
type ID struct {
	value    uint32
	resolved bool
}

// Unresolved is the ID returned when resolution failed
var Unresolved = ID{}

// Resolved returns a resolved ID holding v
func Resolved(v uint32) ID {
	return ID{value: v, resolved: true}
}

// Get returns the value and whether it was resolved
func (id ID) Get() (uint32, bool) {
	return id.value, id.resolved
}

// IsResolved reports whether the ID holds a value
func (id ID) IsResolved() bool {
	return id.resolved
}

// Int64 returns the value, or -1 when unresolved.
// The result is 64 bits wide so a resolved RID never equals -1.
func (id ID) Int64() int64 {
	if !id.resolved {
		return -1
	}
	return int64(id.value)
}

func (id ID) String() string {
	return strconv.FormatInt(id.Int64(), 10)
}

// MarshalJSON encodes the ID as a number, -1 when unresolved
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalJSON decodes a number written by MarshalJSON
func (id *ID) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	if v < 0 || v > 1<<32-1 {
		*id = Unresolved
		return nil
	}
	*id = Resolved(uint32(v))
	return nil
}
