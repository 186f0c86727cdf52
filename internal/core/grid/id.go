package grid

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ID is a stable row key. Server ids are decimal strings or composite keys
// joined with KeySeparator. Temporary ids carry TempPrefix, which no backend
// issues.
type ID string

const (
	TempPrefix   = "tmp-"
	KeySeparator = "|"
)

var tempSeq atomic.Uint64

// NewTempID returns a process-unique temporary id for a locally added row.
func NewTempID() ID {
	return ID(TempPrefix + strconv.FormatUint(tempSeq.Add(1), 10))
}

// IntID formats a numeric server id.
func IntID(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// CompositeID joins key parts in order.
func CompositeID(parts ...string) ID {
	return ID(strings.Join(parts, KeySeparator))
}

// IsTemp reports whether id was issued by NewTempID.
func (id ID) IsTemp() bool {
	return strings.HasPrefix(string(id), TempPrefix)
}

// Parts splits a composite id. Simple ids yield a single part.
func (id ID) Parts() []string {
	return strings.Split(string(id), KeySeparator)
}

func (id ID) String() string {
	return string(id)
}
