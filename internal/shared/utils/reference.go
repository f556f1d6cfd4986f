package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	referencePrefix   = "WH-"
	referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	referenceLength   = 8
)

// GenerateBookingReference returns a short human readable booking code,
// e.g. WH-7K2Q9XMA.
func GenerateBookingReference() (string, error) {
	id, err := gonanoid.Generate(referenceAlphabet, referenceLength)
	if err != nil {
		return "", err
	}
	return referencePrefix + id, nil
}
