package models

import "time"

// Student represents a learner that can enroll in courses and sit exams.
type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Enrollments []Enrollment `json:"enrollments,omitempty"`
}

// Enrollment grants a student access to a course, usually created when a
// payment proof is approved.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"student_id"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"course_id"`
	CreatedAt time.Time `json:"created_at"`

	Student Student `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Course  Course  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
