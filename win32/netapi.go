// +build windows

package win32

import (
	"syscall"

	"github.com/pkg/errors"

	"github.com/jet/uidmap/identity"
)

// LocalAccounts reads account information from the security account manager.
// It implements identity.LocalAccounts.
type LocalAccounts struct {
	// Server is the computer to query; empty for the local computer
	Server string
}

// PrimaryGroupID returns the RID of the primary global group of a local user.
// identity.ErrAccountNotFound is returned for names the local account store
// does not hold, such as domain accounts and groups.
func (l LocalAccounts) PrimaryGroupID(name string) (uint32, error) {
	info, status := netUserGetInfo3(Text(l.Server).WChars(), Text(name).WChars())
	if info != nil {
		defer func() {
			LogError(netApiBufferFree(info), "win32: NetApiBufferFree failed")
		}()
	}
	switch status {
	case NERR_Success:
	case NERR_UserNotFound:
		return 0, errors.Wrapf(identity.ErrAccountNotFound, "win32: NetUserGetInfo(%q)", name)
	default:
		return 0, errors.Wrapf(syscall.Errno(status), "win32: NetUserGetInfo(%q) failed", name)
	}
	if info == nil {
		return 0, errors.Errorf("win32: NetUserGetInfo(%q) returned no data", name)
	}
	Debugf("win32: local account %q has primary group %d", UTF16PtrToString(info.usri3_name), info.usri3_primary_group_id)
	return uint32(info.usri3_primary_group_id), nil
}
