// Package digest produces the hash strings recorded for artifacts when
// they are added to a registry, in the form "b2:<base58 blake2b-256>".
package digest

import (
	"io"
	"os"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

const Algo = "b2"

var ErrFormat = errors.New("invalid digest format")

func Format(algo string, sum []byte) string {
	return algo + ":" + base58.Encode(sum)
}

// Compute hashes everything read from r.
func Compute(r io.Reader) (string, error) {
	h, _ := blake2b.New256(nil)

	_, err := io.Copy(h, r)
	if err != nil {
		return "", err
	}

	return Format(Algo, h.Sum(nil)), nil
}

func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}

	defer f.Close()

	sum, err := Compute(f)
	if err != nil {
		return "", errors.Wrapf(err, "hashing %s", path)
	}

	return sum, nil
}

// Parse splits a digest string into its algorithm and raw sum.
func Parse(s string) (string, []byte, error) {
	colon := strings.IndexByte(s, ':')
	if colon <= 0 || colon == len(s)-1 {
		return "", nil, errors.Wrapf(ErrFormat, "%q", s)
	}

	b, err := base58.Decode(s[colon+1:])
	if err != nil {
		return "", nil, errors.Wrapf(ErrFormat, "%q: %v", s, err)
	}

	return s[:colon], b, nil
}
