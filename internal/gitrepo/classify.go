package gitrepo

import (
	"strings"

	"github.com/hakanisaksson/githook-seclog/pkg/errors"
)

// ZeroRev is the null object id git uses on a ref-update line to mark
// a missing side (ref creation or deletion).
const ZeroRev = "0000000000000000000000000000000000000000"

// RefUpdate is one line of post-receive input: the state of a single
// ref before and after the push.
type RefUpdate struct {
	OldRev  string
	NewRev  string
	RefName string
}

// RefChangeKind classifies what happened to a ref.
type RefChangeKind int

const (
	RefCreated RefChangeKind = iota
	RefDeleted
	RefUpdated
)

func (k RefChangeKind) String() string {
	switch k {
	case RefCreated:
		return "created"
	case RefDeleted:
		return "deleted"
	default:
		return "updated"
	}
}

// RevRange is the comparison range derived from a ref update. An empty
// Old means the range starts at the empty tree; an empty New means the
// ref was deleted and no diff exists.
type RevRange struct {
	Old string
	New string
}

// Classification is the result of classifying a ref update.
type Classification struct {
	Kind  RefChangeKind
	Range RevRange
}

// ParseRefUpdate parses a whitespace-separated `<old> <new> <refname>`
// triple as delivered on the hook's stdin.
func ParseRefUpdate(line string) (RefUpdate, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return RefUpdate{}, errors.New(errors.ErrCodeInvalidInput,
			"malformed ref-update line").
			WithContext("line", line)
	}

	ref := RefUpdate{OldRev: fields[0], NewRev: fields[1], RefName: fields[2]}
	if !validRev(ref.OldRev) || !validRev(ref.NewRev) {
		return RefUpdate{}, errors.New(errors.ErrCodeInvalidInput,
			"invalid revision on ref-update line").
			WithContext("line", line)
	}
	if ref.OldRev == ZeroRev && ref.NewRev == ZeroRev {
		return RefUpdate{}, errors.New(errors.ErrCodeInvalidInput,
			"ref-update with both revisions null").
			WithContext("ref", ref.RefName)
	}
	return ref, nil
}

// Classify determines the kind of ref change and its comparison range.
// A created ref is diffed from the empty tree, so a branch push still
// yields file-level events for everything it introduced.
func Classify(oldRev, newRev string) Classification {
	switch {
	case oldRev == ZeroRev:
		return Classification{Kind: RefCreated, Range: RevRange{New: newRev}}
	case newRev == ZeroRev:
		return Classification{Kind: RefDeleted, Range: RevRange{Old: oldRev}}
	default:
		return Classification{Kind: RefUpdated, Range: RevRange{Old: oldRev, New: newRev}}
	}
}

func validRev(rev string) bool {
	if len(rev) != 40 {
		return false
	}
	for _, c := range rev {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
