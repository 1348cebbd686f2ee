package sid

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrConversion is returned when a SID cannot be converted to or from its string form
	ErrConversion = errors.New("sid: conversion failed")

	// ErrParse is returned when the relative identifier of a SID string is not numeric
	ErrParse = errors.New("sid: unable to parse relative identifier")
)

const (
	// Revision is the only SID revision windows produces
	Revision = 1

	// MaxSubAuthorities is SID_MAX_SUB_AUTHORITIES
	MaxSubAuthorities = 15

	headerSize = 8
)

// SID is the binary form of a windows security identifier
//
// 	0      revision
// 	1      sub-authority count
// 	2-7    identifier authority (big endian)
// 	8-     sub-authorities (little endian DWORDs), the last one is the RID
//
// The slice is owned by whoever holds it.
type SID []byte

// Len returns the number of bytes a SID with n sub-authorities occupies
func Len(n int) int {
	return headerSize + 4*n
}

// FromBytes copies the SID found at the start of b.
// The length is taken from the sub-authority count.
func FromBytes(b []byte) (SID, error) {
	if len(b) < headerSize {
		return nil, errors.Wrapf(ErrConversion, "buffer of %d bytes is too short", len(b))
	}
	n := Len(int(b[1]))
	if len(b) < n {
		return nil, errors.Wrapf(ErrConversion, "buffer of %d bytes is shorter than the %d bytes declared", len(b), n)
	}
	s := make(SID, n)
	copy(s, b)
	return s, nil
}

// Parse converts a string of the form S-R-I-S1-...-Sn into a binary SID
func Parse(str string) (SID, error) {
	toks := strings.Split(str, "-")
	if len(toks) < 3 || !strings.EqualFold(toks[0], "S") {
		return nil, errors.Wrapf(ErrConversion, "%q is not a SID string", str)
	}
	subs := toks[3:]
	if len(subs) > MaxSubAuthorities {
		return nil, errors.Wrapf(ErrConversion, "%q has more than %d sub-authorities", str, MaxSubAuthorities)
	}
	rev, err := strconv.ParseUint(toks[1], 10, 8)
	if err != nil {
		return nil, errors.Wrapf(ErrConversion, "revision of %q: %v", str, err)
	}
	if rev != Revision {
		return nil, errors.Wrapf(ErrConversion, "unsupported revision %d", rev)
	}
	var auth uint64
	if a := toks[2]; strings.HasPrefix(a, "0x") || strings.HasPrefix(a, "0X") {
		auth, err = strconv.ParseUint(a[2:], 16, 48)
	} else {
		auth, err = strconv.ParseUint(a, 10, 48)
	}
	if err != nil {
		return nil, errors.Wrapf(ErrConversion, "authority of %q: %v", str, err)
	}
	s := make(SID, Len(len(subs)))
	s[0] = Revision
	s[1] = byte(len(subs))
	for i := 0; i < 6; i++ {
		s[2+i] = byte(auth >> (8 * uint(5-i)))
	}
	for i, tok := range subs {
		v, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(ErrConversion, "sub-authority %d of %q: %v", i, str, err)
		}
		binary.LittleEndian.PutUint32(s[headerSize+4*i:], uint32(v))
	}
	return s, nil
}

// MustParse is like Parse but panics if the string is not a SID
func MustParse(str string) SID {
	s, err := Parse(str)
	if err != nil {
		panic(err)
	}
	return s
}

// Revision returns the revision byte
func (s SID) Revision() byte {
	return s[0]
}

// SubAuthorityCount returns the number of sub-authorities
func (s SID) SubAuthorityCount() int {
	return int(s[1])
}

// Authority returns the 48 bit identifier authority
func (s SID) Authority() uint64 {
	var auth uint64
	for _, b := range s[2:headerSize] {
		auth = auth<<8 | uint64(b)
	}
	return auth
}

// SubAuthority returns the sub-authority at index i
func (s SID) SubAuthority(i int) uint32 {
	return binary.LittleEndian.Uint32(s[headerSize+4*i:])
}

// IsValid checks the structure of the SID: revision, sub-authority count
// and that the buffer holds every declared sub-authority
func (s SID) IsValid() bool {
	if len(s) < headerSize || s[0] != Revision {
		return false
	}
	n := int(s[1])
	return n <= MaxSubAuthorities && len(s) >= Len(n)
}

// RID returns the last sub-authority by indexing the binary structure.
// The SID must be well formed with at least one sub-authority; RID panics
// on a SID without sub-authorities.
func (s SID) RID() uint32 {
	if s[1] == 0 {
		panic("sid: RID of a SID without sub-authorities")
	}
	return s.SubAuthority(int(s[1]) - 1)
}

// Equal reports whether both SIDs hold the same identifier
func (s SID) Equal(o SID) bool {
	return string(s) == string(o)
}

// StringErr gets the string representation of the SID
// Returns an error if the SID is not convertible
func (s SID) StringErr() (string, error) {
	if !s.IsValid() {
		return "", errors.Wrapf(ErrConversion, "invalid SID %x", []byte(s))
	}
	var sb strings.Builder
	sb.WriteString("S-1-")
	if auth := s.Authority(); auth >= 1<<32 {
		fmt.Fprintf(&sb, "0x%012X", auth)
	} else {
		sb.WriteString(strconv.FormatUint(auth, 10))
	}
	for i := 0; i < s.SubAuthorityCount(); i++ {
		sb.WriteByte('-')
		sb.WriteString(strconv.FormatUint(uint64(s.SubAuthority(i)), 10))
	}
	return sb.String(), nil
}

// String gets the string representation of the SID
// If there is an error getting the string, then it will return an empty string
func (s SID) String() string {
	str, err := s.StringErr()
	if err != nil {
		return ""
	}
	return str
}

// RIDFromString parses the field after the final dash of a SID string
func RIDFromString(str string) (uint32, error) {
	toks := strings.Split(str, "-")
	if len(toks) == 0 {
		return 0, errors.Wrapf(ErrParse, "no fields in %q", str)
	}
	last := toks[len(toks)-1]
	rid, err := strconv.ParseUint(last, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrParse, "%q: %v", last, err)
	}
	return uint32(rid), nil
}
