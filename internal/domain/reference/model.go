// Package reference manages the admin-curated lookup lists doctors pick
// from: qualifications and specializations.
package reference

import (
	"time"

	"github.com/google/uuid"
)

// Kind describes one lookup list.
type Kind struct {
	// Label is the singular display name used in messages.
	Label string
	// Path is the route segment under /api.
	Path  string
	Table string
	// ShortName reports whether items carry an abbreviation.
	ShortName bool
	// NameIndex is the case-insensitive unique index on name.
	NameIndex string
}

var (
	Qualifications = Kind{
		Label:     "Qualification",
		Path:      "qualifications",
		Table:     "qualifications",
		ShortName: true,
		NameIndex: "qualifications_name_key",
	}
	Specializations = Kind{
		Label:     "Specialization",
		Path:      "specializations",
		Table:     "specializations",
		NameIndex: "specializations_name_key",
	}
)

func (k Kind) notFoundMsg() string  { return k.Label + " not found" }
func (k Kind) duplicateMsg() string { return k.Label + " with this name already exists" }

type Item struct {
	ID          uuid.UUID `json:"_id"`
	Name        string    `json:"name"`
	ShortName   string    `json:"shortName,omitempty"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Input fields are pointers so update can leave omitted fields alone.
type Input struct {
	Name        *string `json:"name"`
	ShortName   *string `json:"shortName"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}
