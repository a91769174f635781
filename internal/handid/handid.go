// Package handid generates compact, sortable identifiers for hands.
//
// IDs are UUIDs rendered as 26 lowercase Crockford base32 characters. The
// default generator produces time-ordered UUIDv7 values; a generator built
// from a seeded *rand.Rand produces reproducible UUIDv4 values for replay
// and tests.
package handid

import (
	"encoding/base32"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// Generator hands out hand IDs. It is safe for concurrent use.
type Generator struct {
	mu     sync.Mutex
	reader io.Reader
}

// NewGenerator returns a generator. A nil rng yields time-ordered UUIDv7 IDs.
func NewGenerator(rng *rand.Rand) *Generator {
	g := &Generator{}
	if rng != nil {
		g.reader = &randReader{rng: rng}
	}
	return g
}

// Next returns a new ID.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var (
		id  uuid.UUID
		err error
	)
	if g.reader == nil {
		id, err = uuid.NewV7()
	} else {
		id, err = uuid.NewRandomFromReader(g.reader)
	}
	if err != nil {
		panic(fmt.Sprintf("handid: generating uuid: %v", err))
	}
	return Encode(id)
}

// New returns a time-ordered ID from the default source.
func New() string {
	return NewGenerator(nil).Next()
}

// Encode renders a UUID in the 26 character form.
func Encode(id uuid.UUID) string {
	return encoding.EncodeToString(id[:])
}

// Parse decodes an ID produced by Encode.
func Parse(s string) (uuid.UUID, error) {
	if len(s) != 26 {
		return uuid.Nil, fmt.Errorf("hand id %q: expected 26 characters, got %d", s, len(s))
	}
	b, err := encoding.DecodeString(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hand id %q: %w", s, err)
	}
	return uuid.FromBytes(b)
}

type randReader struct {
	rng *rand.Rand
}

func (r *randReader) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 8 {
		v := r.rng.Uint64()
		for j := 0; j < 8 && i+j < len(p); j++ {
			p[i+j] = byte(v >> (8 * j))
		}
	}
	return len(p), nil
}
