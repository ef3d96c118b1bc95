package model

import (
	"strings"

	"github.com/google/uuid"
)

// Location is a workplace a shift type belongs to. Its identity is stable
// for the lifetime of the record; edits mutate name and address in place
// but never the ID.
type Location struct {
	ID      uuid.UUID
	Name    string
	Address string
}

// NewLocation validates and builds a location with a fresh identity.
func NewLocation(name, address string) (*Location, error) {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if address == "" {
		return nil, &ValidationError{Field: "address", Reason: "must not be empty"}
	}
	return &Location{ID: uuid.New(), Name: name, Address: address}, nil
}
