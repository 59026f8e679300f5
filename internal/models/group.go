package models

import "time"

// Group is a discussion space attached to a course.
type Group struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"index;not null" json:"course_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []GroupMessage `json:"messages,omitempty"`
}

// GroupMessage is one chat message inside a group. Content is sanitized
// before persisting; delivery is poll-based over the history endpoint.
type GroupMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   uint      `gorm:"index;not null" json:"group_id"`
	SenderID  uint      `gorm:"index;not null" json:"sender_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`

	Group Group `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
