package timetable

import "time"

// Entry is one weekly class slot of a section.
type Entry struct {
	ID           string    `json:"id"`
	UniversityID string    `json:"universityId"`
	ProgramID    string    `json:"programId"`
	SectionID    string    `json:"sectionId"`
	CourseID     string    `json:"courseId"`
	FacultyID    string    `json:"facultyId"`
	DayOfWeek    string    `json:"dayOfWeek"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime"`
	Room         string    `json:"room"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`

	CourseCode  string `json:"courseCode,omitempty"`
	CourseName  string `json:"courseName,omitempty"`
	FacultyName string `json:"facultyName,omitempty"`
	SectionName string `json:"sectionName,omitempty"`
}

type CreateInput struct {
	SectionID string `json:"sectionId" binding:"required,uuid"`
	CourseID  string `json:"courseId" binding:"required,uuid"`
	FacultyID string `json:"facultyId" binding:"required,uuid"`
	DayOfWeek string `json:"dayOfWeek" binding:"required,weekday"`
	StartTime string `json:"startTime" binding:"required,hhmm"`
	EndTime   string `json:"endTime" binding:"required,hhmm"`
	Room      string `json:"room" binding:"max=40"`
}
