package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/pkg/errors"
)

const tokenChars = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789"

// ShortSHA returns an abbreviated hex-encoded SHA-256 sum of the provided
// input, optionally prepended with a salt.
func ShortSHA(salt, input string) string {
	if salt != "" {
		input = fmt.Sprintf("%s:%s", salt, input)
	}
	sum := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", sum)[0:54]
}

// NewToken returns an opaque token of the specified length, composed of
// characters drawn from the operating system's CSPRNG. Tokens minted here
// guard sessions, so a predictable source is not an option.
func NewToken(tokenLength int) string {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		// rand.Reader failing means the platform's entropy source is broken.
		// Nothing sensible can continue from here.
		panic(errors.Wrap(err, "error reading from the system random source"))
	}
	for i, c := range b {
		b[i] = tokenChars[int(c)%len(tokenChars)]
	}
	return string(b)
}
