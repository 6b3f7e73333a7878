package reports

import (
	"time"

	"academia/internal/apperr"
)

const (
	KindInstitutional = "institutional"
	KindNAAC          = "naac"
	KindNIRF          = "nirf"
)

// Kinds lists the accreditation report formats.
var Kinds = []string{KindInstitutional, KindNAAC, KindNIRF}

func IsKind(s string) bool {
	for _, k := range Kinds {
		if s == k {
			return true
		}
	}
	return false
}

var (
	ErrNotFound = apperr.NotFound("report not found")
	ErrBadKind  = apperr.Invalid("kind must be one of institutional, naac, nirf")
)

type Entry struct {
	Label string `json:"label" bson:"label" binding:"required,max=200"`
	Value string `json:"value" bson:"value" binding:"max=4000"`
}

type Section struct {
	Heading string  `json:"heading" bson:"heading" binding:"required,max=200"`
	Entries []Entry `json:"entries" bson:"entries" binding:"dive"`
}

// Report is an accreditation or institutional report document.
type Report struct {
	ID           string    `json:"id" bson:"_id"`
	UniversityID string    `json:"universityId" bson:"universityId"`
	Kind         string    `json:"kind" bson:"kind"`
	AcademicYear string    `json:"academicYear" bson:"academicYear"`
	Title        string    `json:"title" bson:"title"`
	Sections     []Section `json:"sections" bson:"sections"`
	CreatedBy    string    `json:"createdBy" bson:"createdBy"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Input struct {
	Kind         string    `json:"kind" binding:"required,oneof=institutional naac nirf"`
	AcademicYear string    `json:"academicYear" binding:"required,academicyear"`
	Title        string    `json:"title" binding:"required,max=200"`
	Sections     []Section `json:"sections" binding:"dive"`
}
