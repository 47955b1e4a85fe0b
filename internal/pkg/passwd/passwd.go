// Package passwd generates random passwords for account resets.
package passwd

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Character classes. Look-alike characters (l/I/O/0/1) are excluded because
// the generated passwords get read to users over the phone.
const (
	lowerChars  = "abcdefghijkmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	digitChars  = "23456789"
	symbolChars = "!@#%^&*+-=?"
)

// MinLength is the shortest password Generate will produce.
const MinLength = 8

var classes = []string{lowerChars, upperChars, digitChars, symbolChars}

// Generate returns a random password of the given length containing at least
// one character from each class. Lengths below MinLength are rejected.
func Generate(length int) (string, error) {
	if length < MinLength {
		return "", fmt.Errorf("password length %d below minimum %d", length, MinLength)
	}

	all := lowerChars + upperChars + digitChars + symbolChars
	out := make([]byte, 0, length)

	// One guaranteed pick per class, the rest from the full set.
	for _, class := range classes {
		ch, err := pick(class)
		if err != nil {
			return "", err
		}
		out = append(out, ch)
	}
	for len(out) < length {
		ch, err := pick(all)
		if err != nil {
			return "", err
		}
		out = append(out, ch)
	}

	if err := shuffle(out); err != nil {
		return "", err
	}
	return string(out), nil
}

func pick(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[n.Int64()], nil
}

// shuffle is a Fisher-Yates pass fed from crypto/rand so the guaranteed
// class picks don't always sit at the front.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return err
		}
		j := n.Int64()
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
