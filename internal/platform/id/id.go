// Package id generates opaque identifiers for sessions and requests.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind prefixes an id so logs and journal rows show what it names.
type Kind string

const (
	Session Kind = "sect"
	Request Kind = "req"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a random UUIDv4 encoded as 26 lowercase base32 characters.
func NewID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(u[:])), nil
}

// New returns NewID prefixed with kind, as in "sect_<id>".
func New(kind Kind) (string, error) {
	raw, err := NewID()
	if err != nil {
		return "", err
	}
	return string(kind) + "_" + raw, nil
}

// RequestID is New(Request) in the shape gRPC interceptors accept.
func RequestID() (string, error) {
	return New(Request)
}
