// Package identitytest provides in-memory providers for testing code built on identity.Resolver
package identitytest

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/pkg/errors"

	"github.com/jet/uidmap/identity"
	"github.com/jet/uidmap/sid"
)

// Principal is an account held by Database
type Principal struct {
	Name         string
	Domain       string
	SID          sid.SID
	Local        bool
	PrimaryGroup uint32
	ProfileDir   string
}

// Database is an in-memory account database implementing
// identity.AccountDatabase, identity.LocalAccounts and identity.Profiles
type Database struct {
	Principals []Principal

	// NameErr, SIDErr and GroupErr are returned by every call of the matching lookup when set
	NameErr  error
	SIDErr   error
	GroupErr error

	mu         sync.Mutex
	nameCalls  int
	sidCalls   int
	groupCalls int
}

// Calls returns the number of LookupName, LookupSID and PrimaryGroupID calls made
func (d *Database) Calls() (name int, sid int, group int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nameCalls, d.sidCalls, d.groupCalls
}

func (d *Database) byName(name string) (Principal, bool) {
	for _, p := range d.Principals {
		if strings.EqualFold(name, p.Name) || strings.EqualFold(name, fmt.Sprintf(`%s\%s`, p.Domain, p.Name)) {
			return p, true
		}
	}
	return Principal{}, false
}

func (d *Database) bySID(s sid.SID) (Principal, bool) {
	for _, p := range d.Principals {
		if p.SID.Equal(s) {
			return p, true
		}
	}
	return Principal{}, false
}

func fill(dst []uint16, str string) (uint32, bool) {
	src := append(utf16.Encode([]rune(str)), 0)
	if len(dst) < len(src) {
		return uint32(len(src)), false
	}
	copy(dst, src)
	return uint32(len(src) - 1), true
}

// LookupName implements identity.AccountDatabase
func (d *Database) LookupName(name string, sidBuf []byte, domainBuf []uint16) (uint32, uint32, error) {
	d.mu.Lock()
	d.nameCalls++
	d.mu.Unlock()
	if d.NameErr != nil {
		return 0, 0, d.NameErr
	}
	p, ok := d.byName(name)
	if !ok {
		return 0, 0, errors.Wrapf(identity.ErrNoneMapped, "identitytest: %q", name)
	}
	sidSize := uint32(len(p.SID))
	domainSize, domainOK := fill(domainBuf, p.Domain)
	if len(sidBuf) < len(p.SID) || !domainOK {
		if domainOK {
			domainSize++
		}
		return sidSize, domainSize, identity.ErrInsufficientBuffer
	}
	copy(sidBuf, p.SID)
	return sidSize, domainSize, nil
}

// LookupSID implements identity.AccountDatabase
func (d *Database) LookupSID(s sid.SID, nameBuf []uint16, domainBuf []uint16) (uint32, uint32, error) {
	d.mu.Lock()
	d.sidCalls++
	d.mu.Unlock()
	if d.SIDErr != nil {
		return 0, 0, d.SIDErr
	}
	p, ok := d.bySID(s)
	if !ok {
		return 0, 0, errors.Wrapf(identity.ErrNoneMapped, "identitytest: %x", []byte(s))
	}
	nameSize, nameOK := fill(nameBuf, p.Name)
	domainSize, domainOK := fill(domainBuf, p.Domain)
	if !nameOK || !domainOK {
		if nameOK {
			nameSize++
		}
		if domainOK {
			domainSize++
		}
		return nameSize, domainSize, identity.ErrInsufficientBuffer
	}
	return nameSize, domainSize, nil
}

// PrimaryGroupID implements identity.LocalAccounts
func (d *Database) PrimaryGroupID(name string) (uint32, error) {
	d.mu.Lock()
	d.groupCalls++
	d.mu.Unlock()
	if d.GroupErr != nil {
		return 0, d.GroupErr
	}
	p, ok := d.byName(name)
	if !ok || !p.Local {
		return 0, errors.Wrapf(identity.ErrAccountNotFound, "%q", name)
	}
	return p.PrimaryGroup, nil
}

// ProfileDir implements identity.Profiles
func (d *Database) ProfileDir(sidString string) (string, error) {
	s, err := sid.Parse(sidString)
	if err != nil {
		return "", err
	}
	p, ok := d.bySID(s)
	if !ok || p.ProfileDir == "" {
		return "", errors.Errorf("no profile for %s", sidString)
	}
	return p.ProfileDir, nil
}

// tokenUserHeader mimics the SID_AND_ATTRIBUTES header preceding the SID in TOKEN_USER
const tokenUserHeader = 16

// Tokens is a TokenSource whose tokens belong to User
type Tokens struct {
	User sid.SID

	// OpenErr fails OpenProcessToken
	OpenErr error
	// ZeroSize makes the measuring query report a size of zero along with SizeErr
	ZeroSize bool
	SizeErr  error
	// FillErr fails the second query
	FillErr error

	mu      sync.Mutex
	opened  int
	closed  int
	queries int
}

// Counts returns the number of tokens opened and closed and the number of user queries
func (t *Tokens) Counts() (opened int, closed int, queries int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.opened, t.closed, t.queries
}

// OpenProcessToken implements identity.TokenSource
func (t *Tokens) OpenProcessToken() (identity.Token, error) {
	if t.OpenErr != nil {
		return nil, t.OpenErr
	}
	t.mu.Lock()
	t.opened++
	t.mu.Unlock()
	return &token{src: t}, nil
}

type token struct {
	src *Tokens
}

func (k *token) UserSID(buf []byte) (sid.SID, uint32, error) {
	t := k.src
	t.mu.Lock()
	t.queries++
	t.mu.Unlock()
	need := uint32(tokenUserHeader + len(t.User))
	if len(buf) == 0 {
		if t.ZeroSize {
			return nil, 0, t.SizeErr
		}
		return nil, need, identity.ErrInsufficientBuffer
	}
	if t.FillErr != nil {
		return nil, 0, t.FillErr
	}
	if uint32(len(buf)) < need {
		return nil, need, identity.ErrInsufficientBuffer
	}
	copy(buf[tokenUserHeader:], t.User)
	s, err := sid.FromBytes(buf[tokenUserHeader:])
	return s, need, err
}

func (k *token) Close() error {
	t := k.src
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed++
	return nil
}

// Entry is a message captured by Logger
type Entry struct {
	Level string
	Msg   string
}

// Logger captures log messages
type Logger struct {
	mu      sync.Mutex
	entries []Entry
}

func (l *Logger) add(level string, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Msg: msg})
}

// Entries returns the messages logged so far
func (l *Logger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Count returns the number of messages logged at level
func (l *Logger) Count(level string) int {
	var n int
	for _, e := range l.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	l.add("debug", fmt.Sprintf(format, v...))
}

func (l *Logger) Logf(format string, v ...interface{}) {
	l.add("info", fmt.Sprintf(format, v...))
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.add("warn", fmt.Sprintf(format, v...))
}

func (l *Logger) Error(err error, msg string) {
	if err != nil {
		l.add("error", fmt.Sprintf("%s: %v", msg, err))
	}
}

// Observer counts resolution outcomes per operation
type Observer struct {
	mu       sync.Mutex
	resolved map[string]int
	failed   map[string]int
}

// Observe implements identity.Observer
func (o *Observer) Observe(op string, resolved bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.resolved == nil {
		o.resolved = make(map[string]int)
		o.failed = make(map[string]int)
	}
	if resolved {
		o.resolved[op]++
	} else {
		o.failed[op]++
	}
}

// Counts returns the resolved and failed counts of op
func (o *Observer) Counts(op string) (resolved int, failed int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resolved[op], o.failed[op]
}
