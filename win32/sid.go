// +build windows

package win32

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/jet/uidmap/sid"
)

// FromWindowsSID copies a SID owned by the operating system into Go memory
func FromWindowsSID(s *windows.SID) (sid.SID, error) {
	if s == nil || !s.IsValid() {
		return nil, errors.New("win32: invalid SID")
	}
	n := windows.GetLengthSid(s)
	return sid.FromBytes(unsafe.Slice((*byte)(unsafe.Pointer(s)), n))
}

// ToWindowsSID returns a view of s usable by the windows API.
// The result is only valid while s is alive and unmodified.
func ToWindowsSID(s sid.SID) (*windows.SID, error) {
	if !s.IsValid() {
		return nil, errors.Errorf("win32: invalid SID %x", []byte(s))
	}
	return (*windows.SID)(unsafe.Pointer(&s[0])), nil
}

// ConvertStringSID converts a string SID with ConvertStringSidToSidW
func ConvertStringSID(str string) (sid.SID, error) {
	ws, err := windows.StringToSid(str)
	if err != nil {
		return nil, errors.Wrapf(err, "win32: ConvertStringSidToSid(%q) failed", str)
	}
	return FromWindowsSID(ws)
}

// Accounts resolves account names and SIDs with the local security authority.
// It implements identity.AccountDatabase.
type Accounts struct {
	// System is the computer to query; empty for the local computer
	System string
}

// LookupName calls LookupAccountNameW once with the given buffers
func (a Accounts) LookupName(name string, sidBuf []byte, domainBuf []uint16) (uint32, uint32, error) {
	sidSize := uint32(len(sidBuf))
	domainSize := uint32(len(domainBuf))
	if err := lookupAccountName(Text(a.System).WChars(), Text(name).WChars(), bytePtr(sidBuf), &sidSize, wcharPtr(domainBuf), &domainSize); err != nil {
		return sidSize, domainSize, lookupError(err)
	}
	return sidSize, domainSize, nil
}

// LookupSID calls LookupAccountSidW once with the given buffers
func (a Accounts) LookupSID(s sid.SID, nameBuf []uint16, domainBuf []uint16) (uint32, uint32, error) {
	ws, err := ToWindowsSID(s)
	if err != nil {
		return 0, 0, err
	}
	nameSize := uint32(len(nameBuf))
	domainSize := uint32(len(domainBuf))
	if err := lookupAccountSid(Text(a.System).WChars(), ws, wcharPtr(nameBuf), &nameSize, wcharPtr(domainBuf), &domainSize); err != nil {
		return nameSize, domainSize, lookupError(err)
	}
	return nameSize, domainSize, nil
}

func bytePtr(b []byte) *byte {
	if len(b) == 0 {
		return nil
	}
	return &b[0]
}

func wcharPtr(b []uint16) *uint16 {
	if len(b) == 0 {
		return nil
	}
	return &b[0]
}
