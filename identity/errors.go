package identity

import (
	"github.com/pkg/errors"
)

var (
	// ErrLookup is returned when a name or SID could not be resolved against the account database
	ErrLookup = errors.New("identity: account lookup failed")

	// ErrBufferSizing is returned when the measuring call of a size-discovery pair
	// failed for any reason other than an insufficient buffer
	ErrBufferSizing = errors.New("identity: buffer size discovery failed")

	// ErrResourceAcquisition is returned when a native handle could not be opened
	ErrResourceAcquisition = errors.New("identity: unable to acquire resource")

	// ErrUnresolved is returned when no SID could be obtained for an account
	ErrUnresolved = errors.New("identity: principal not resolved")

	// ErrInsufficientBuffer is returned by providers when the supplied buffers are too small.
	// The required sizes are returned alongside it.
	ErrInsufficientBuffer = errors.New("identity: insufficient buffer")

	// ErrAccountNotFound is returned by LocalAccounts when the account is not a local account
	ErrAccountNotFound = errors.New("identity: account not found")

	// ErrNoneMapped is returned by an AccountDatabase when no account maps to the name or SID
	ErrNoneMapped = errors.New("identity: no mapping between account names and security IDs")
)
