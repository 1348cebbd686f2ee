// +build windows

package win32

import (
	"io"
	"syscall"

	"github.com/pkg/errors"

	"github.com/jet/uidmap/identity"
)

var (
	advapi32DLL = syscall.NewLazyDLL("advapi32.dll")
	netapi32DLL = syscall.NewLazyDLL("netapi32.dll")
)

// Types Reference: https://docs.microsoft.com/en-us/windows/desktop/WinProg/windows-data-types
type (
	BOOL   uint32
	BYTE   byte
	DWORD  uint32
	HANDLE uintptr
	LPVOID uintptr
)

const (
	NULL uintptr = 0

	// Error Codes
	ERROR_SUCCESS             uintptr = 0
	ERROR_INSUFFICIENT_BUFFER uintptr = 122
	ERROR_MORE_DATA           uintptr = 0xea // 234
	ERROR_NONE_MAPPED         uintptr = 1332

	// Network Management Error Codes
	NERR_Success      uintptr = 0
	NERR_UserNotFound uintptr = 2221

	// Booleans
	FALSE BOOL = 0
	TRUE  BOOL = 1
)

// https://docs.microsoft.com/en-us/windows/desktop/SecAuthZ/standard-access-rights
const (
	_READ_CONTROL          uint32 = 0x00020000
	_STANDARD_RIGHTS_READ         = _READ_CONTROL
)

func (b BOOL) boolean() bool {
	if b == TRUE {
		return true
	}
	return false
}

// testReturnCodeNonZero is a syscall helper function for testing the return code
// for functions that return a handle + error where a zero value is failure
//
// Example:
//
// 		r1, _, errno := procVar.Call(uintptr(x),uintptr(y))
// 		if err := testReturnCodeNonZero(r1, errno); err != nil {
// 		  return nil, err
// 		}
// 		// r1 is valid here
func testReturnCodeNonZero(r1 uintptr, err error) error {
	if r1 == 0 {
		return errnoToError(err)
	}
	return nil
}

// testReturnCodeTrue is a syscall helper function for testing the return code
// for functions that return a handle + error where the return code is a BOOL
// where TRUE is success
func testReturnCodeTrue(r1 uintptr, err error) error {
	if !BOOL(r1).boolean() {
		return errnoToError(err)
	}
	return nil
}

func errnoToError(err error) error {
	if errno, ok := err.(syscall.Errno); ok {
		if errno != 0 {
			return errno
		}
		return syscall.EINVAL
	}
	return err
}

// sizingError maps ERROR_INSUFFICIENT_BUFFER to identity.ErrInsufficientBuffer
// so the resolver can tell a measuring call from a failure
func sizingError(err error) error {
	if errno, ok := err.(syscall.Errno); ok && uintptr(errno) == ERROR_INSUFFICIENT_BUFFER {
		return identity.ErrInsufficientBuffer
	}
	return err
}

// lookupError maps the account lookup errors the resolver tells apart:
// ERROR_INSUFFICIENT_BUFFER and ERROR_NONE_MAPPED
func lookupError(err error) error {
	if isNoneMapped(err) {
		return errors.Wrapf(identity.ErrNoneMapped, "%v", err)
	}
	return sizingError(err)
}

// isNoneMapped reports whether err means no mapping between an account name and a SID was done
func isNoneMapped(err error) bool {
	errno, ok := errors.Cause(err).(syscall.Errno)
	return ok && uintptr(errno) == ERROR_NONE_MAPPED
}

func CloseLogErr(c io.Closer, errMsg string) {
	LogError(c.Close(), errMsg)
}

func CloseHandleLogErr(h syscall.Handle, errMsg string) {
	LogError(syscall.CloseHandle(h), errMsg)
}
