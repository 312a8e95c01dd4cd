// Package nanoid generates the opaque ids given to cart lines created
// offline, before the server has assigned its own.
package nanoid

import (
	"crypto/rand"
	"math"
)

const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	size     = 22 // 22 * 6 = 132 bits of entropy, a shade over uuid's 128

	// ItemPrefix marks ids minted locally so they are recognizable next
	// to server-assigned ones.
	ItemPrefix = "item_"
)

// mask selects the low bits that index into the 64-character alphabet.
const mask = 1<<6 - 1

// Generate returns a fresh 22-character id from the URL-safe alphabet.
func Generate() (string, error) {
	// Oversample so rejected bytes rarely force a second read.
	step := int(math.Ceil(1.6 * float64(mask*size) / float64(len(alphabet))))

	id := make([]byte, size)
	buffer := make([]byte, step)

	for position := 0; position < size; {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}
		for i := 0; i < step && position < size; i++ {
			index := buffer[i] & mask
			if int(index) < len(alphabet) {
				id[position] = alphabet[index]
				position++
			}
		}
	}

	return string(id), nil
}

// NewItemID returns a prefixed id for a locally created cart line.
func NewItemID() (string, error) {
	id, err := Generate()
	if err != nil {
		return "", err
	}
	return ItemPrefix + id, nil
}
