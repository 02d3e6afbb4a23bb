package util

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// NewULID returns a sortable id. Tables and the instances they evaluate get
// one each so log records can be correlated.
func NewULID() string {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// ShortID is the lowercase random tail of an id, used as a log attribute.
func ShortID(id string) string {
	if len(id) <= 7 {
		return strings.ToLower(id)
	}
	return strings.ToLower(id[len(id)-7:])
}
