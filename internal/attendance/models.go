package attendance

import (
	"fmt"
	"math"
	"time"

	"academia/internal/apperr"
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// Mark is one student's status in a roll-call.
type Mark struct {
	StudentID        string `json:"studentId" binding:"required"`
	UniversityRollNo string `json:"universityRollNo"` // ignored on input
	Status           string `json:"status" binding:"required,oneof=present absent"`
}

// Record is the roll-call of one class session. There is at most one per
// timetable entry and date.
type Record struct {
	ID            string    `json:"id"`
	TimetableID   string    `json:"timetableId"`
	UniversityID  string    `json:"universityId"`
	SectionID     string    `json:"sectionId"`
	CourseID      string    `json:"courseId"`
	FacultyID     string    `json:"facultyId"`
	Date          string    `json:"date"`
	Students      []Mark    `json:"students"`
	TotalStudents int       `json:"totalStudents"`
	PresentCount  int       `json:"presentCount"`
	AbsentCount   int       `json:"absentCount"`
	MarkedBy      string    `json:"markedBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type MarkInput struct {
	Date     string `json:"date" binding:"required,isodate"`
	Students []Mark `json:"students" binding:"required,min=1,dive"`
}

// StudentRecord is a record reduced to a single student's status.
type StudentRecord struct {
	RecordID    string `json:"recordId"`
	TimetableID string `json:"timetableId"`
	SectionID   string `json:"sectionId"`
	CourseID    string `json:"courseId"`
	Date        string `json:"date"`
	Status      string `json:"status"`
}

type Summary struct {
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Percentage float64 `json:"percentage"`
}

// Summarize counts a student's sessions. Percentage is rounded to two decimals.
func Summarize(records []StudentRecord) Summary {
	var s Summary
	for _, r := range records {
		s.Total++
		if r.Status == StatusPresent {
			s.Present++
		} else {
			s.Absent++
		}
	}
	if s.Total > 0 {
		s.Percentage = math.Round(float64(s.Present)*10000/float64(s.Total)) / 100
	}
	return s
}

// Tally validates a roster and returns its present and absent counts. The
// counts always add up to len(marks).
func Tally(marks []Mark) (present, absent int, err error) {
	seen := make(map[string]bool, len(marks))
	for _, m := range marks {
		if m.StudentID == "" {
			return 0, 0, apperr.Invalid("studentId is required for every student")
		}
		if seen[m.StudentID] {
			return 0, 0, apperr.Invalid(fmt.Sprintf("student %s appears more than once", m.StudentID))
		}
		seen[m.StudentID] = true
		switch m.Status {
		case StatusPresent:
			present++
		case StatusAbsent:
			absent++
		default:
			return 0, 0, apperr.Invalid(fmt.Sprintf("invalid status %q for student %s", m.Status, m.StudentID))
		}
	}
	return present, absent, nil
}
