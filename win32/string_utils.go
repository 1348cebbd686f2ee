// +build windows

package win32

import (
	"syscall"
	"unicode/utf16"
	"unsafe"
)

type Text string

func (t Text) String() string {
	return string(t)
}

func (t Text) WChars() *uint16 {
	if t == "" {
		return nil
	}
	bs, _ := syscall.UTF16FromString(string(t))
	return &bs[0]
}

// UTF16PtrToString converts a null-terimanted UTF-16 encoded C-String
// into a Go string. This method supports only wide-character
// strings in UTF-16; not UTF-8.
func UTF16PtrToString(wstr *uint16) string {
	if wstr != nil {
		us := make([]uint16, 0, 256)
		for p := uintptr(unsafe.Pointer(wstr)); ; p += 2 {
			//nolint
			u := *(*uint16)(unsafe.Pointer(p))
			if u == 0 {
				return string(utf16.Decode(us))
			}
			us = append(us, u)
		}
	}
	return ""
}

// UTF16BytesToString converts a little-endian UTF-16 byte buffer, such as a
// REG_SZ value, into a Go string. Decoding stops at the first NUL.
func UTF16BytesToString(b []byte) string {
	us := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u := uint16(b[i]) | uint16(b[i+1])<<8
		if u == 0 {
			break
		}
		us = append(us, u)
	}
	return string(utf16.Decode(us))
}
