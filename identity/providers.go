package identity

import (
	"github.com/jet/uidmap/sid"
)

// Logger receives diagnostics from the resolver
//
// log.Logger implements this interface
type Logger interface {
	Debugf(format string, v ...interface{})
	Logf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Error(err error, msg string)
}

// Token is an open process token. It must be closed by the caller.
type Token interface {
	// UserSID queries the token user into buf.
	// Called with an empty buf it returns the required size in bytes.
	UserSID(buf []byte) (sid.SID, uint32, error)
	Close() error
}

// TokenSource opens the security token of the current process with query access
type TokenSource interface {
	OpenProcessToken() (Token, error)
}

// AccountDatabase resolves names and SIDs against the OS account database.
//
// Both lookups follow the size-discovery convention: when a buffer is too small
// ErrInsufficientBuffer is returned with the sizes needed. SID sizes are
// in bytes and name sizes in UTF-16 code units including the terminating NUL.
type AccountDatabase interface {
	LookupName(name string, sidBuf []byte, domainBuf []uint16) (sidSize uint32, domainSize uint32, err error)
	LookupSID(s sid.SID, nameBuf []uint16, domainBuf []uint16) (nameSize uint32, domainSize uint32, err error)
}

// LocalAccounts queries the local account store for an account's primary group.
// ErrAccountNotFound must be returned for accounts that are not local.
type LocalAccounts interface {
	PrimaryGroupID(name string) (uint32, error)
}

// Profiles finds the profile directory of a SID
type Profiles interface {
	ProfileDir(sidString string) (string, error)
}

// Observer is notified of every resolution outcome
type Observer interface {
	Observe(op string, resolved bool)
}

type noopLogger struct{}

func (noopLogger) Debugf(format string, v ...interface{}) {}

func (noopLogger) Logf(format string, v ...interface{}) {}

func (noopLogger) Warnf(format string, v ...interface{}) {}

func (noopLogger) Error(err error, msg string) {}
