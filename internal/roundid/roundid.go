// Package roundid mints sortable round identifiers: a UUIDv7 encoded as 26
// lowercase Crockford base32 characters.
package roundid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded id.
const Length = 26

// Generator mints ids from a random source.
type Generator struct {
	rand io.Reader
}

// NewGenerator creates a generator reading randomness from r. A nil reader
// uses crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// New returns a fresh id.
func New() string {
	return NewGenerator(nil).Generate()
}

// Generate returns a fresh id. Ids generated later sort after earlier ones.
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.rand != nil {
		id, err = uuid.NewV7FromReader(g.rand)
	} else {
		id, err = uuid.NewV7()
	}
	if err != nil {
		// unordered, but still unique
		id = uuid.New()
	}
	return Encode(id)
}

// Encode renders a 128-bit UUID as 26 base32 characters. The value is
// left-padded with two zero bits, so the first character is 0-7.
func Encode(id uuid.UUID) string {
	var out [Length]byte
	for i := range out {
		var v byte
		for b := 0; b < 5; b++ {
			bit := i*5 + b - 2
			v <<= 1
			if bit >= 0 {
				v |= (id[bit/8] >> (7 - bit%8)) & 1
			}
		}
		out[i] = alphabet[v]
	}
	return string(out[:])
}

// Validate checks if a round ID is valid (26 characters, valid base32)
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("round ID must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("round ID first character must be 0-7, got %c", id[0])
	}
	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
