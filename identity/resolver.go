package identity

import (
	"github.com/pkg/errors"

	"github.com/jet/uidmap/sid"
)

// Operation names passed to the Observer
const (
	OpUID         = "uid"
	OpProcessUID  = "process_uid"
	OpGID         = "gid"
	OpAccountName = "account_name"
)

// Resolver maps SIDs and account names to numeric uid / gid values.
//
// Providers are consulted on every call; nothing is cached. A Resolver
// may be used from multiple goroutines if its providers can.
type Resolver struct {
	Tokens   TokenSource
	Accounts AccountDatabase
	Local    LocalAccounts

	// Profiles is optional. When set, accounts get a HomeDir.
	Profiles Profiles
	Logger   Logger
	Observer Observer
}

func (r *Resolver) logger() Logger {
	if r.Logger == nil {
		return noopLogger{}
	}
	return r.Logger
}

func (r *Resolver) observe(op string, resolved bool) {
	if r.Observer != nil {
		r.Observer.Observe(op, resolved)
	}
}

func (r *Resolver) observeID(op string, id ID) ID {
	r.observe(op, id.IsResolved())
	return id
}

// SIDToString converts the SID to its canonical string form.
// It returns an empty string if the SID is not convertible.
func (r *Resolver) SIDToString(s sid.SID) string {
	str, err := s.StringErr()
	if err != nil {
		r.logger().Debugf("identity: sid to string failed: %v", err)
		return ""
	}
	return str
}

// UIDFromSID derives a uid from the RID in the string form of the SID
func (r *Resolver) UIDFromSID(s sid.SID) ID {
	return r.observeID(OpUID, r.uidFromSID(s))
}

func (r *Resolver) uidFromSID(s sid.SID) ID {
	str := r.SIDToString(s)
	if str == "" {
		return Unresolved
	}
	rid, err := sid.RIDFromString(str)
	if err != nil {
		r.logger().Debugf("identity: failed to parse uid from %s: %v", str, err)
		return Unresolved
	}
	return Resolved(rid)
}

// withProcessToken opens the process token, runs fn, and closes the token
// no matter how fn returns
func (r *Resolver) withProcessToken(fn func(Token) error) error {
	if r.Tokens == nil {
		return errors.Wrap(ErrResourceAcquisition, "no token source")
	}
	token, err := r.Tokens.OpenProcessToken()
	if err != nil {
		return errors.Wrapf(ErrResourceAcquisition, "open process token: %v", err)
	}
	defer func() {
		if err := token.Close(); err != nil {
			r.logger().Error(err, "identity: failed to close process token")
		}
	}()
	return fn(token)
}

func (r *Resolver) processUser() (sid.SID, error) {
	var user sid.SID
	err := r.withProcessToken(func(token Token) error {
		var size uint32
		return discover(func() error {
			_, n, err := token.UserSID(nil)
			if n == 0 {
				if err != nil {
					return errors.Errorf("token user size query returned zero: %v", err)
				}
				return errors.New("token user size query returned zero")
			}
			size = n
			return nil
		}, func() error {
			s, _, err := token.UserSID(make([]byte, size))
			if err != nil {
				return errors.Wrapf(err, "query token user")
			}
			user = s
			return nil
		})
	})
	return user, err
}

// CurrentProcessUID returns the uid of the user the current process runs as
func (r *Resolver) CurrentProcessUID() ID {
	user, err := r.processUser()
	if err != nil {
		r.logger().Logf("identity: unable to get the process token user: %v", err)
		return r.observeID(OpProcessUID, Unresolved)
	}
	return r.observeID(OpProcessUID, r.uidFromSID(user))
}

// lookupSID finds the account name and domain of a SID
func (r *Resolver) lookupSID(s sid.SID) (string, string, error) {
	if len(s) == 0 {
		return "", "", errors.Wrap(ErrLookup, "empty SID")
	}
	if r.Accounts == nil {
		return "", "", errors.Wrap(ErrLookup, "no account database")
	}
	var nameSize, domainSize uint32
	var name, domain []uint16
	var unmapped bool
	err := discover(func() error {
		var err error
		nameSize, domainSize, err = r.Accounts.LookupSID(s, nil, nil)
		unmapped = errors.Is(err, ErrNoneMapped)
		return err
	}, func() error {
		name = make([]uint16, nameSize)
		domain = make([]uint16, domainSize)
		_, _, err := r.Accounts.LookupSID(s, name, domain)
		unmapped = errors.Is(err, ErrNoneMapped)
		return err
	})
	if err != nil {
		if unmapped {
			return "", "", errors.Wrapf(ErrNoneMapped, "lookup account sid: %v", err)
		}
		if errors.Is(err, ErrBufferSizing) {
			return "", "", err
		}
		return "", "", errors.Wrapf(ErrLookup, "lookup account sid: %v", err)
	}
	return utf16ToString(name), utf16ToString(domain), nil
}

// GIDFromSID derives a gid for the SID.
//
// Local accounts use their primary group id. Principals the local account
// store does not know (domain accounts, well-known SIDs) use their RID.
func (r *Resolver) GIDFromSID(s sid.SID) ID {
	name, _, err := r.lookupSID(s)
	if err != nil {
		r.logLookupSID(err, "identity: gid lookup of %s failed: %v", r.SIDToString(s), err)
		return r.observeID(OpGID, Unresolved)
	}
	return r.observeID(OpGID, r.gidForAccount(s, name))
}

// logLookupSID logs orphaned SIDs at debug level and other lookup failures as warnings
func (r *Resolver) logLookupSID(err error, format string, v ...interface{}) {
	if errors.Is(err, ErrNoneMapped) {
		r.logger().Debugf(format, v...)
		return
	}
	r.logger().Warnf(format, v...)
}

func (r *Resolver) gidForAccount(s sid.SID, name string) ID {
	var gid uint32
	err := ErrAccountNotFound
	if r.Local != nil {
		gid, err = r.Local.PrimaryGroupID(name)
	}
	switch {
	case err == nil:
		return Resolved(gid)
	case errors.Is(err, ErrAccountNotFound):
		str := r.SIDToString(s)
		rid, err := sid.RIDFromString(str)
		if err != nil {
			r.logger().Debugf("identity: failed to parse gid from %s: %v", str, err)
			return Unresolved
		}
		return Resolved(rid)
	default:
		r.logger().Warnf("identity: local account info for %q failed: %v", name, err)
		return Unresolved
	}
}

func (r *Resolver) lookupName(name string) (sid.SID, string, error) {
	if r.Accounts == nil {
		return nil, "", errors.Wrap(ErrLookup, "no account database")
	}
	var sidSize, domainSize uint32
	var sidBuf []byte
	var domain []uint16
	err := discover(func() error {
		var err error
		sidSize, domainSize, err = r.Accounts.LookupName(name, nil, nil)
		return err
	}, func() error {
		sidBuf = make([]byte, sidSize)
		domain = make([]uint16, domainSize)
		_, _, err := r.Accounts.LookupName(name, sidBuf, domain)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrBufferSizing) {
			return nil, "", err
		}
		return nil, "", errors.Wrapf(ErrLookup, "lookup account name: %v", err)
	}
	return sid.SID(sidBuf), utf16ToString(domain), nil
}

// SIDFromAccountName looks up the SID of an account name.
// It returns nil when the account cannot be resolved. The returned
// SID belongs to the caller.
func (r *Resolver) SIDFromAccountName(name string) sid.SID {
	if name == "" {
		r.logger().Logf("identity: no account name provided")
		r.observe(OpAccountName, false)
		return nil
	}
	s, _, err := r.lookupName(name)
	if err != nil {
		r.logger().Logf("identity: failed to lookup account name %q: %v", name, err)
		r.observe(OpAccountName, false)
		return nil
	}
	if !s.IsValid() {
		r.logger().Warnf("identity: the SID for %q is invalid", name)
	}
	r.observe(OpAccountName, true)
	return s
}
