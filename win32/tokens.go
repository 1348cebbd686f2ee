// +build windows

package win32

import (
	"encoding/binary"
	"syscall"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/jet/uidmap/identity"
	"github.com/jet/uidmap/sid"
)

type Token struct {
	hToken syscall.Token
}

// UserSID queries the TOKEN_USER of the token into buf and copies the user SID out of it.
// It makes exactly one GetTokenInformation call; an empty buf returns the required size
// with identity.ErrInsufficientBuffer.
func (t *Token) UserSID(buf []byte) (sid.SID, uint32, error) {
	n, err := getTokenInformation(t.hToken, syscall.TokenUser, buf)
	if err != nil {
		return nil, n, sizingError(err)
	}
	if uintptr(len(buf)) < unsafe.Sizeof(syscall.Tokenuser{}) {
		return nil, n, errors.Errorf("win32: TOKEN_USER buffer too short: %d bytes", len(buf))
	}
	tu := (*syscall.Tokenuser)(unsafe.Pointer(&buf[0]))
	s, err := FromWindowsSID((*windows.SID)(unsafe.Pointer(tu.User.Sid)))
	if err != nil {
		return nil, n, err
	}
	return s, n, nil
}

// IsElevated reports whether the token has elevated privileges
func (t *Token) IsElevated() (bool, error) {
	// TOKEN_ELEVATION is a single DWORD
	buf := make([]byte, 4)
	if _, err := getTokenInformation(t.hToken, windows.TokenElevation, buf); err != nil {
		return false, errors.Wrapf(err, "win32: getTokenInformation(TokenElevation) failed")
	}
	return binary.LittleEndian.Uint32(buf) != 0, nil
}

// Close the token handle
func (t *Token) Close() error {
	return t.hToken.Close()
}

// CurrentProcessToken returns the current process token opened for query access
func CurrentProcessToken() (*Token, error) {
	hProc, err := syscall.GetCurrentProcess()
	if err != nil {
		return nil, errors.Wrapf(err, "win32: GetCurrentProcess failed")
	}
	defer CloseHandleLogErr(syscall.Handle(hProc), "win32: failed to close process handle")
	var hToken syscall.Token
	if err = syscall.OpenProcessToken(hProc, syscall.TOKEN_QUERY, &hToken); err != nil {
		return nil, errors.Wrapf(err, "win32: OpenProcessToken failed")
	}
	return &Token{
		hToken: hToken,
	}, nil
}

// ProcessTokens opens the token of the current process.
// It implements identity.TokenSource.
type ProcessTokens struct{}

func (ProcessTokens) OpenProcessToken() (identity.Token, error) {
	t, err := CurrentProcessToken()
	if err != nil {
		return nil, err
	}
	return t, nil
}

// IsElevated reports whether the current process runs elevated
func IsElevated() (bool, error) {
	t, err := CurrentProcessToken()
	if err != nil {
		return false, err
	}
	defer CloseLogErr(t, "win32: unable to close process token")
	return t.IsElevated()
}
