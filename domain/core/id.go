package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	ResearchID ID
	ItemID     ID
)

// String conversions for domain IDs
func (id ResearchID) String() string { return ID(id).String() }
func (id ItemID) String() string     { return ID(id).String() }

// ParseResearchID parses a string into ResearchID
func ParseResearchID(s string) (ResearchID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("research ID cannot be empty")
	}
	return ResearchID(s), nil
}

// ParseItemID parses a string into ItemID
func ParseItemID(s string) (ItemID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("item ID cannot be empty")
	}
	return ItemID(s), nil
}
