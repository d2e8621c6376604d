package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Money goes over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// newID returns id unchanged when already set, otherwise a fresh UUID
func newID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
