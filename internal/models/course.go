package models

import "time"

// Course represents a published course with its video lessons.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	Published   bool      `gorm:"index;not null;default:false" json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Lessons []Lesson `json:"lessons,omitempty"`
	Exams   []Exam   `json:"exams,omitempty"`
}

// Lesson is one video lesson inside a course. The video URL is sanitized
// before it is stored; raw user-supplied markup never reaches the column.
type Lesson struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"index;not null" json:"course_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	VideoURL  string    `gorm:"size:512" json:"video_url"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
