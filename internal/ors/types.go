package ors

import (
	"time"

	"roadward.org/internal/identity"
)

// Grades lists the valid overall traffic scores in reporting order.
var Grades = []string{"A", "B", "C", "D", "F"}

// ValidGrade reports whether grade is one of A, B, C, D, F.
func ValidGrade(grade string) bool {
	for _, g := range Grades {
		if g == grade {
			return true
		}
	}
	return false
}

// TextDoc is one labelled finding inside a document.
type TextDoc struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Document is an ordered, record-owned collection of findings and attachment
// URIs. Documents have no identity of their own and live entirely inside the
// record that carries them.
type Document struct {
	TextDoc     []TextDoc `json:"textDoc"`
	Attachments []string  `json:"attachments"`
}

// Inspector is the expanded projection of the owning user reference. It is
// resolved by the store with an explicit join at read time.
type Inspector struct {
	ID       string        `json:"id"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Role     identity.Role `json:"role"`
}

// Record is one vehicle inspection outcome. RoadWorthinessScore is kept as
// the string the client submitted, an integer with an optional trailing "%".
type Record struct {
	ID                  string     `json:"id"`
	Vehicle             string     `json:"vehicle"`
	RoadWorthinessScore string     `json:"roadWorthinessScore"`
	OverallTrafficScore string     `json:"overallTrafficScore"`
	ActionRequired      string     `json:"actionRequired"`
	Inspector           Inspector  `json:"inspector"`
	Documents           []Document `json:"documents"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}
