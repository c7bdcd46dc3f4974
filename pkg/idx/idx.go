// Package idx mints sortable identifiers: ULIDs for request IDs and signing
// key IDs, and prefixed ULIDs ("crs_01J...") for LMS records.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID is a ULID, optionally behind a "prefix_" naming its kind.
type ID string

// Zero is the empty ID.
const Zero ID = ""

// ErrInvalid is returned by Parse for anything that is not a (prefixed) ULID.
var ErrInvalid = errors.New("idx: invalid ulid")

// entropy is shared by every caller; the locked reader keeps IDs minted in
// the same millisecond strictly increasing.
var entropy = &ulid.LockedMonotonicReader{MonotonicReader: ulid.Monotonic(rand.Reader, 0)}

// New returns a fresh ID stamped with the current time.
func New() ID {
	return NewAt(time.Now())
}

// NewAt returns a fresh ID stamped with t.
func NewAt(t time.Time) ID {
	return ID(ulid.MustNew(ulid.Timestamp(t.UTC()), entropy).String())
}

// NewPrefixed returns a fresh ID such as "usr_01J...".
func NewPrefixed(prefix string) ID {
	return ID(prefix + "_" + string(New()))
}

// Parse validates s and returns it as an ID.
func Parse(s string) (ID, error) {
	id := ID(strings.TrimSpace(s))
	if _, err := id.ulid(); err != nil {
		return Zero, ErrInvalid
	}
	return id, nil
}

// Prefix returns the kind prefix, or "" for a bare ULID.
func (id ID) Prefix() string {
	prefix, _ := id.split()
	return prefix
}

// IsZero reports whether id is empty.
func (id ID) IsZero() bool { return id == Zero }

func (id ID) String() string { return string(id) }

// Time returns the creation time embedded in the ULID, or the zero time when
// id does not parse.
func (id ID) Time() time.Time {
	u, err := id.ulid()
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}

func (id ID) split() (prefix, raw string) {
	s := string(id)
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return "", s
}

func (id ID) ulid() (ulid.ULID, error) {
	_, raw := id.split()
	return ulid.ParseStrict(raw)
}
