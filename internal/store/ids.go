package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

var idPrefixes = map[Kind]string{
	KindUser:     "usr",
	KindTeam:     "team",
	KindProject:  "prj",
	KindSprint:   "spr",
	KindWorkItem: "wi",
}

// GenerateID creates an id in <prefix>-xxxxxx format (6-char hex).
func GenerateID(kind Kind) (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("store: generate %s id: %w", kind, err)
	}
	return idPrefixes[kind] + "-" + hex.EncodeToString(b), nil
}

// uniqueID generates an id not present in taken, retrying on collision.
func uniqueID[T any](kind Kind, taken map[string]*T) (string, error) {
	for range 4 {
		id, err := GenerateID(kind)
		if err != nil {
			return "", err
		}
		if _, ok := taken[id]; !ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("store: failed to generate unique %s id after retries", kind)
}
