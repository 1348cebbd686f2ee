package identity

import (
	"unicode/utf16"

	"github.com/pkg/errors"
)

// discover runs a call-to-measure followed by a call-to-fill.
//
// measure is invoked with empty buffers and records the sizes it learns.
// Only ErrInsufficientBuffer (or success) lets fill run. fill is called
// exactly once and its error is returned as is.
func discover(measure func() error, fill func() error) error {
	if err := measure(); err != nil && !errors.Is(err, ErrInsufficientBuffer) {
		return errors.Wrapf(ErrBufferSizing, "%v", err)
	}
	return fill()
}

// utf16ToString decodes a UTF-16 buffer up to the first NUL
func utf16ToString(s []uint16) string {
	for i, v := range s {
		if v == 0 {
			s = s[:i]
			break
		}
	}
	return string(utf16.Decode(s))
}
