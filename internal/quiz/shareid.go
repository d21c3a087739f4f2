package quiz

import (
	"errors"
	"math/rand"
)

const (
	shareIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	shareIDLength   = 8

	// maxShareIDAttempts bounds collision retries. At 62^8 candidates a
	// second draw is already vanishingly rare; hitting the cap means the
	// store is misbehaving, not that the space is full.
	maxShareIDAttempts = 10
)

var ErrShareIDExhausted = errors.New("could not allocate a unique share id")

// NewShareID draws short URL-safe identifiers until exists reports a free
// one. Identifiers are not security tokens, so math/rand is fine here.
func NewShareID(exists func(string) (bool, error)) (string, error) {
	for i := 0; i < maxShareIDAttempts; i++ {
		id := randomShareID()
		taken, err := exists(id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}
	return "", ErrShareIDExhausted
}

func randomShareID() string {
	b := make([]byte, shareIDLength)
	for i := range b {
		b[i] = shareIDAlphabet[rand.Intn(len(shareIDAlphabet))]
	}
	return string(b)
}
