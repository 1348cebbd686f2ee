package identity_test

import (
	"math/rand"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"testing/quick"

	"github.com/pkg/errors"

	"github.com/jet/uidmap/identity"
	"github.com/jet/uidmap/identity/identitytest"
	"github.com/jet/uidmap/sid"
)

const (
	aliceSID   = "S-1-5-21-1004336348-1177238915-682003330-1001"
	bobSID     = "S-1-5-21-1004336348-1177238915-682003330-1002"
	domainSID  = "S-1-5-21-3623811015-3361044348-30300820-1105"
	highRIDSID = "S-1-5-21-1004336348-1177238915-682003330-4294967295"
)

func testDatabase() *identitytest.Database {
	return &identitytest.Database{
		Principals: []identitytest.Principal{
			{Name: "alice", Domain: "WORKSTATION", SID: sid.MustParse(aliceSID), Local: true, PrimaryGroup: 513, ProfileDir: `C:\Users\alice`},
			{Name: "bob", Domain: "WORKSTATION", SID: sid.MustParse(bobSID), Local: true, PrimaryGroup: 545},
			{Name: "carol", Domain: "CORP", SID: sid.MustParse(domainSID)},
			{Name: "SYSTEM", Domain: "NT AUTHORITY", SID: sid.MustParse(sid.LocalSystem)},
			{Name: "Administrators", Domain: "BUILTIN", SID: sid.MustParse(sid.Administrators)},
			{Name: "svc-high", Domain: "WORKSTATION", SID: sid.MustParse(highRIDSID)},
		},
	}
}

func testResolver(db *identitytest.Database, user string) (*identity.Resolver, *identitytest.Tokens, *identitytest.Logger) {
	tokens := &identitytest.Tokens{User: sid.MustParse(user)}
	logger := &identitytest.Logger{}
	return &identity.Resolver{
		Tokens:   tokens,
		Accounts: db,
		Local:    db,
		Logger:   logger,
	}, tokens, logger
}

func TestSIDToString(t *testing.T) {
	r, _, logger := testResolver(testDatabase(), aliceSID)
	s := sid.MustParse(aliceSID)
	first := r.SIDToString(s)
	if first != aliceSID {
		t.Fatalf("expected %s, actual %s", aliceSID, first)
	}
	if second := r.SIDToString(s); second != first {
		t.Errorf("SIDToString not idempotent: %s != %s", first, second)
	}
	if str := r.SIDToString(sid.SID{1, 5, 0}); str != "" {
		t.Errorf("expected empty string, actual %s", str)
	}
	if logger.Count("debug") != 1 {
		t.Errorf("expected 1 debug entry, got %v", logger.Entries())
	}
}

func TestUIDFromSID(t *testing.T) {
	r, _, _ := testResolver(testDatabase(), aliceSID)
	tests := []struct {
		name     string
		sid      sid.SID
		expected identity.ID
	}{
		{name: "nil", sid: nil, expected: identity.Unresolved},
		{name: "empty", sid: sid.SID{}, expected: identity.Unresolved},
		{name: "truncated", sid: sid.MustParse(aliceSID)[:12], expected: identity.Unresolved},
		{name: "local", sid: sid.MustParse(aliceSID), expected: identity.Resolved(1001)},
		{name: "system", sid: sid.MustParse(sid.LocalSystem), expected: identity.Resolved(18)},
		{name: "high", sid: sid.MustParse(highRIDSID), expected: identity.Resolved(4294967295)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if actual := r.UIDFromSID(test.sid); actual != test.expected {
				t.Errorf("expected %v, actual %v", test.expected, actual)
			}
		})
	}
}

func TestHighRIDIsNotSentinel(t *testing.T) {
	r, _, _ := testResolver(testDatabase(), highRIDSID)
	uid := r.UIDFromSID(sid.MustParse(highRIDSID))
	if !uid.IsResolved() {
		t.Fatal("expected resolved uid")
	}
	if uid.Int64() == -1 {
		t.Fatal("resolved uid collides with the unresolved value")
	}
	gid := r.GIDFromSID(sid.MustParse(highRIDSID))
	if v, ok := gid.Get(); !ok || v != 4294967295 {
		t.Errorf("expected resolved gid 4294967295, actual %v", gid)
	}
}

func TestGIDFromSID(t *testing.T) {
	tests := []struct {
		name     string
		sid      string
		expected identity.ID
	}{
		{name: "local uses primary group", sid: aliceSID, expected: identity.Resolved(513)},
		{name: "local bob", sid: bobSID, expected: identity.Resolved(545)},
		{name: "domain falls back to rid", sid: domainSID, expected: identity.Resolved(1105)},
		{name: "well-known falls back to rid", sid: sid.LocalSystem, expected: identity.Resolved(18)},
		{name: "builtin group falls back to rid", sid: sid.Administrators, expected: identity.Resolved(544)},
		{name: "orphaned", sid: "S-1-5-21-1-2-3-9999", expected: identity.Unresolved},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r, _, _ := testResolver(testDatabase(), aliceSID)
			if actual := r.GIDFromSID(sid.MustParse(test.sid)); actual != test.expected {
				t.Errorf("expected %v, actual %v", test.expected, actual)
			}
		})
	}
}

func TestGIDFromSIDEmpty(t *testing.T) {
	db := testDatabase()
	r, _, _ := testResolver(db, aliceSID)
	for _, s := range []sid.SID{nil, {}} {
		if gid := r.GIDFromSID(s); gid.IsResolved() {
			t.Errorf("expected unresolved gid, actual %v", gid)
		}
	}
	if _, sids, _ := db.Calls(); sids != 0 {
		t.Errorf("expected no native lookups, got %d", sids)
	}
}

func TestGIDFallbackMatchesStringRID(t *testing.T) {
	db := &identitytest.Database{}
	r, _, _ := testResolver(db, aliceSID)
	err := quick.Check(func(s sid.SID) bool {
		db.Principals = []identitytest.Principal{{Name: "remote", Domain: "CORP", SID: s}}
		expected, err := sid.RIDFromString(r.SIDToString(s))
		if err != nil {
			t.Error(err)
			return false
		}
		gid, ok := r.GIDFromSID(s).Get()
		return ok && gid == expected
	}, &quick.Config{
		Values: func(v []reflect.Value, rnd *rand.Rand) {
			subs := make([]string, 1+rnd.Intn(sid.MaxSubAuthorities))
			for i := range subs {
				subs[i] = strconv.FormatUint(uint64(rnd.Uint32()), 10)
			}
			v[0] = reflect.ValueOf(sid.MustParse("S-1-5-" + strings.Join(subs, "-")))
		},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestGIDLocalErrors(t *testing.T) {
	db := testDatabase()
	db.GroupErr = errors.New("access denied")
	r, _, logger := testResolver(db, aliceSID)
	if gid := r.GIDFromSID(sid.MustParse(aliceSID)); gid.IsResolved() {
		t.Errorf("expected unresolved gid, actual %v", gid)
	}
	if logger.Count("warn") != 1 {
		t.Errorf("expected a warning, got %v", logger.Entries())
	}
}

func TestGIDWithoutLocalAccounts(t *testing.T) {
	db := testDatabase()
	r := &identity.Resolver{Accounts: db}
	if gid, ok := r.GIDFromSID(sid.MustParse(aliceSID)).Get(); !ok || gid != 1001 {
		t.Errorf("expected rid 1001, actual %d (%v)", gid, ok)
	}
}

func TestGIDReverseLookupFailure(t *testing.T) {
	db := testDatabase()
	db.SIDErr = errors.New("rpc server unavailable")
	r, _, _ := testResolver(db, aliceSID)
	if gid := r.GIDFromSID(sid.MustParse(aliceSID)); gid.IsResolved() {
		t.Errorf("expected unresolved gid, actual %v", gid)
	}
	if _, sids, groups := db.Calls(); sids != 1 || groups != 0 {
		t.Errorf("expected 1 sid lookup and no group query, got %d and %d", sids, groups)
	}
}

func TestSIDFromAccountNameEmpty(t *testing.T) {
	db := testDatabase()
	r, _, logger := testResolver(db, aliceSID)
	if s := r.SIDFromAccountName(""); s != nil {
		t.Fatalf("expected nil, got %x", []byte(s))
	}
	if names, _, _ := db.Calls(); names != 0 {
		t.Errorf("expected no native lookups, got %d", names)
	}
	if logger.Count("info") != 1 {
		t.Errorf("expected 1 info entry, got %v", logger.Entries())
	}
}

func TestSIDFromAccountName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{name: "alice", expected: aliceSID},
		{name: `WORKSTATION\bob`, expected: bobSID},
		{name: `CORP\carol`, expected: domainSID},
		{name: `BUILTIN\Administrators`, expected: sid.Administrators},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			db := testDatabase()
			r, _, _ := testResolver(db, aliceSID)
			s := r.SIDFromAccountName(test.name)
			if s == nil {
				t.Fatal("expected a SID")
			}
			str := r.SIDToString(s)
			if str != test.expected {
				t.Errorf("expected %s, actual %s", test.expected, str)
			}
			rid, err := sid.RIDFromString(str)
			if err != nil || rid == 0 {
				t.Errorf("expected a positive RID at the end of %s: %d %v", str, rid, err)
			}
			if names, _, _ := db.Calls(); names != 2 {
				t.Errorf("expected 2 lookups, got %d", names)
			}
		})
	}
}

func TestSIDFromAccountNameFailures(t *testing.T) {
	db := testDatabase()
	r, _, _ := testResolver(db, aliceSID)
	if s := r.SIDFromAccountName(`NOWHERE\nobody`); s != nil {
		t.Fatalf("expected nil, got %x", []byte(s))
	}
	if names, _, _ := db.Calls(); names != 1 {
		t.Errorf("a failed size query must stop after 1 lookup, got %d", names)
	}
}

// shrinkingDatabase reports a size on the first call that is too small for the second
type shrinkingDatabase struct {
	*identitytest.Database
}

func (d shrinkingDatabase) LookupName(name string, sidBuf []byte, domainBuf []uint16) (uint32, uint32, error) {
	n, m, err := d.Database.LookupName(name, sidBuf, domainBuf)
	if len(sidBuf) == 0 && n > 0 {
		n--
	}
	return n, m, err
}

func TestSIDFromAccountNameNoThirdCall(t *testing.T) {
	db := testDatabase()
	r, _, _ := testResolver(db, aliceSID)
	r.Accounts = shrinkingDatabase{db}
	if s := r.SIDFromAccountName("alice"); s != nil {
		t.Fatalf("expected nil, got %x", []byte(s))
	}
	if names, _, _ := db.Calls(); names != 2 {
		t.Errorf("expected exactly 2 lookups, got %d", names)
	}
}

func TestSIDFromAccountNameInvalidSID(t *testing.T) {
	bad := sid.SID{2, 1, 0, 0, 0, 0, 0, 5, 18, 0, 0, 0}
	db := &identitytest.Database{
		Principals: []identitytest.Principal{{Name: "odd", Domain: "WORKSTATION", SID: bad}},
	}
	r, _, logger := testResolver(db, aliceSID)
	s := r.SIDFromAccountName("odd")
	if !s.Equal(bad) {
		t.Fatalf("expected the invalid SID to be returned, got %x", []byte(s))
	}
	if logger.Count("warn") != 1 {
		t.Errorf("expected a warning, got %v", logger.Entries())
	}
}

func TestSIDFromAccountNameOwnership(t *testing.T) {
	db := testDatabase()
	r, _, _ := testResolver(db, aliceSID)
	s := r.SIDFromAccountName("alice")
	s[len(s)-1] = 0xff
	if !db.Principals[0].SID.Equal(sid.MustParse(aliceSID)) {
		t.Fatal("returned SID aliases the database")
	}
}

func TestCurrentProcessUID(t *testing.T) {
	r, tokens, _ := testResolver(testDatabase(), aliceSID)
	if uid, ok := r.CurrentProcessUID().Get(); !ok || uid != 1001 {
		t.Fatalf("expected 1001, actual %d (%v)", uid, ok)
	}
	opened, closed, queries := tokens.Counts()
	if opened != 1 || closed != 1 {
		t.Errorf("expected the token to be opened and closed once, got %d/%d", opened, closed)
	}
	if queries != 2 {
		t.Errorf("expected 2 token queries, got %d", queries)
	}
}

func TestCurrentProcessUIDFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*identitytest.Tokens)
		opened  int
		queries int
	}{
		{name: "open", setup: func(t *identitytest.Tokens) { t.OpenErr = errors.New("access denied") }},
		{name: "zero size", setup: func(t *identitytest.Tokens) {
			t.ZeroSize = true
			t.SizeErr = errors.New("invalid parameter")
		}, opened: 1, queries: 1},
		{name: "zero size insufficient buffer", setup: func(t *identitytest.Tokens) {
			t.ZeroSize = true
			t.SizeErr = identity.ErrInsufficientBuffer
		}, opened: 1, queries: 1},
		{name: "zero size no error", setup: func(t *identitytest.Tokens) { t.ZeroSize = true }, opened: 1, queries: 1},
		{name: "fill", setup: func(t *identitytest.Tokens) { t.FillErr = errors.New("bad length") }, opened: 1, queries: 2},
		{name: "bad user", setup: func(t *identitytest.Tokens) { t.User = sid.SID{1, 0, 0} }, opened: 1, queries: 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r, tokens, _ := testResolver(testDatabase(), aliceSID)
			test.setup(tokens)
			if uid := r.CurrentProcessUID(); uid.IsResolved() {
				t.Errorf("expected unresolved uid, actual %v", uid)
			}
			opened, closed, queries := tokens.Counts()
			if opened != test.opened || closed != opened {
				t.Errorf("expected %d opened and closed, got %d/%d", test.opened, opened, closed)
			}
			if queries != test.queries {
				t.Errorf("expected %d queries, got %d", test.queries, queries)
			}
		})
	}
}

func TestNoProviders(t *testing.T) {
	r := &identity.Resolver{}
	if uid := r.CurrentProcessUID(); uid.IsResolved() {
		t.Errorf("expected unresolved uid, actual %v", uid)
	}
	if s := r.SIDFromAccountName("alice"); s != nil {
		t.Errorf("expected nil SID, got %x", []byte(s))
	}
	if _, err := r.CurrentAccount(); !errors.Is(err, identity.ErrUnresolved) {
		t.Errorf("expected ErrUnresolved, got %v", err)
	}
}

func TestObserver(t *testing.T) {
	r, _, _ := testResolver(testDatabase(), aliceSID)
	obs := &identitytest.Observer{}
	r.Observer = obs
	r.UIDFromSID(sid.MustParse(aliceSID))
	r.UIDFromSID(nil)
	r.GIDFromSID(sid.MustParse(domainSID))
	r.SIDFromAccountName("")
	r.CurrentProcessUID()
	if ok, failed := obs.Counts(identity.OpUID); ok != 1 || failed != 1 {
		t.Errorf("uid: expected 1/1, got %d/%d", ok, failed)
	}
	if ok, failed := obs.Counts(identity.OpGID); ok != 1 || failed != 0 {
		t.Errorf("gid: expected 1/0, got %d/%d", ok, failed)
	}
	if ok, failed := obs.Counts(identity.OpAccountName); ok != 0 || failed != 1 {
		t.Errorf("account name: expected 0/1, got %d/%d", ok, failed)
	}
	if ok, failed := obs.Counts(identity.OpProcessUID); ok != 1 || failed != 0 {
		t.Errorf("process uid: expected 1/0, got %d/%d", ok, failed)
	}
}
