package enrollment

import "academia/internal/apperr"

var (
	ErrAlreadyEnrolled = apperr.Conflict("you are already enrolled in a section")
	ErrRollNumberTaken = apperr.Conflict("roll number already taken")
	ErrAlreadyAssigned = apperr.Conflict("course already assigned to this section")
	ErrBlankRollNumber = apperr.Invalid("roll numbers must not be blank")
)

// CheckJoin applies the enrollment rules in order:
//  1. a student holds at most one membership per university;
//  2. a section roll number is unique within its section;
//  3. a university roll number is unique within its university.
//
// The unique indexes on section_students enforce the same rules for racing writers.
func CheckJoin(existing *Membership, sectionRollTaken, universityRollTaken bool) error {
	switch {
	case existing != nil:
		return ErrAlreadyEnrolled
	case sectionRollTaken, universityRollTaken:
		return ErrRollNumberTaken
	}
	return nil
}

// CheckAssign rejects a second assignment of the same course to a section,
// whichever faculty member it names.
func CheckAssign(existing *Assignment) error {
	if existing != nil {
		return ErrAlreadyAssigned
	}
	return nil
}
