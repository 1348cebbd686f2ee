package identity

import (
	"github.com/pkg/errors"

	"github.com/jet/uidmap/sid"
)

// Account is the identity of a principal as handed to an inventory record
type Account struct {
	Name    string `json:"name"`
	Domain  string `json:"domain"`
	SID     string `json:"sid"`
	UID     ID     `json:"uid"`
	GID     ID     `json:"gid"`
	HomeDir string `json:"home_dir,omitempty"`
}

// ResolveAccount builds the identity of the named account
func (r *Resolver) ResolveAccount(name string) (Account, error) {
	s := r.SIDFromAccountName(name)
	if s == nil {
		return Account{}, errors.Wrapf(ErrUnresolved, "account %q", name)
	}
	return r.AccountForSID(s)
}

// AccountForSID builds the identity of the principal with the given SID.
// The uid is the RID of the binary SID. A SID without sub-authorities
// (S-1-5) has no RID and takes the last field of its string form, as
// its gid does.
func (r *Resolver) AccountForSID(s sid.SID) (Account, error) {
	if !s.IsValid() {
		return Account{}, errors.Wrapf(ErrUnresolved, "invalid SID %x", []byte(s))
	}
	acct := r.account(s)
	if s.SubAuthorityCount() == 0 {
		acct.UID = r.uidFromSID(s)
	} else {
		acct.UID = Resolved(s.RID())
	}
	return acct, nil
}

// CurrentAccount builds the identity of the user the current process runs as
func (r *Resolver) CurrentAccount() (Account, error) {
	user, err := r.processUser()
	if err != nil {
		return Account{}, errors.Wrapf(ErrUnresolved, "process token user: %v", err)
	}
	acct := r.account(user)
	acct.UID = r.observeID(OpProcessUID, r.uidFromSID(user))
	return acct, nil
}

func (r *Resolver) account(s sid.SID) Account {
	acct := Account{SID: r.SIDToString(s)}
	name, domain, err := r.lookupSID(s)
	if err != nil {
		r.logLookupSID(err, "identity: no account for %s: %v", acct.SID, err)
		acct.GID = r.observeID(OpGID, Unresolved)
	} else {
		acct.Name = name
		acct.Domain = domain
		acct.GID = r.observeID(OpGID, r.gidForAccount(s, name))
	}
	if r.Profiles != nil && acct.SID != "" {
		dir, err := r.Profiles.ProfileDir(acct.SID)
		if err != nil {
			r.logger().Debugf("identity: no profile directory for %s: %v", acct.SID, err)
		}
		acct.HomeDir = dir
	}
	return acct
}
