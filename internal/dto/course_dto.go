package dto

import (
	"time"

	"github.com/hikma-academy/academy-api/internal/models"
)

// CourseCreateRequest is the authoring payload for a course.
type CourseCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=255"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	Published   bool    `json:"published"`
}

// CourseUpdateRequest patches course fields.
type CourseUpdateRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Published   *bool    `json:"published"`
}

// LessonCreateRequest adds a video lesson to a course.
type LessonCreateRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=255"`
	VideoURL string `json:"video_url" validate:"required,url"`
	Position int    `json:"position" validate:"gte=0"`
}

// LessonResponse serializes a lesson.
type LessonResponse struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	VideoURL string `json:"video_url"`
	Position int    `json:"position"`
}

// CourseResponse serializes a course with its lessons.
type CourseResponse struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Price       float64          `json:"price"`
	Published   bool             `json:"published"`
	CreatedAt   time.Time        `json:"created_at"`
	Lessons     []LessonResponse `json:"lessons,omitempty"`
}

// NewCourseResponse converts a course model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	response := CourseResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Price:       model.Price,
		Published:   model.Published,
		CreatedAt:   model.CreatedAt,
	}

	for _, lesson := range model.Lessons {
		response.Lessons = append(response.Lessons, LessonResponse{
			ID:       lesson.ID,
			Title:    lesson.Title,
			VideoURL: lesson.VideoURL,
			Position: lesson.Position,
		})
	}

	return response
}

// NewCourseResponseSlice converts course models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}
	return responses
}
