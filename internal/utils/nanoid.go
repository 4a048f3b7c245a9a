package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const nanoIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateNanoIDWithPrefix returns "<prefix>_<id>" with a lowercase alphanumeric id of the given size.
func GenerateNanoIDWithPrefix(prefix string, size int) string {
	id := gonanoid.MustGenerate(nanoIDAlphabet, size)
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
