package enrollment

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Membership places a student in a section.
type Membership struct {
	ID               string    `json:"id"`
	UniversityID     string    `json:"universityId"`
	SectionID        string    `json:"sectionId"`
	StudentID        string    `json:"studentId"`
	UniversityRollNo string    `json:"universityRollNo"`
	SectionRollNo    string    `json:"sectionRollNo"`
	Status           string    `json:"status"`
	JoinedAt         time.Time `json:"joinedAt"`
}

// Member is a membership joined with the student's name for roster views.
type Member struct {
	Membership
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
}

// Assignment ties a course of a section to the faculty member teaching it.
type Assignment struct {
	ID        string    `json:"id"`
	SectionID string    `json:"sectionId"`
	CourseID  string    `json:"courseId"`
	FacultyID string    `json:"facultyId"`
	CreatedAt time.Time `json:"createdAt"`
}

// AssignedCourse is an assignment joined with course and faculty names.
type AssignedCourse struct {
	Assignment
	CourseCode  string `json:"courseCode"`
	CourseName  string `json:"courseName"`
	FacultyName string `json:"facultyName"`
}

type JoinInput struct {
	UniversityRollNo string `json:"universityRollNo" binding:"required,max=40"`
	SectionRollNo    string `json:"sectionRollNo" binding:"required,max=20"`
}

type AssignInput struct {
	CourseID  string `json:"courseId" binding:"required,uuid"`
	FacultyID string `json:"facultyId" binding:"required,uuid"`
}

type StatusInput struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}
