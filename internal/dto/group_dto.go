package dto

import (
	"time"

	"github.com/hikma-academy/academy-api/internal/models"
)

// GroupCreateRequest creates a discussion group under a course.
type GroupCreateRequest struct {
	CourseID uint   `json:"course_id" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required,min=3,max=255"`
}

// GroupMessageSendRequest posts a message into a group.
type GroupMessageSendRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// GroupHistoryQuery pages backwards through a group's messages.
type GroupHistoryQuery struct {
	Before *time.Time `query:"before"`
	Limit  int        `query:"limit" validate:"omitempty,gt=0,lte=100"`
}

// GroupResponse serializes a group.
type GroupResponse struct {
	ID        uint      `json:"id"`
	CourseID  uint      `json:"course_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupMessageResponse serializes one chat message.
type GroupMessageResponse struct {
	ID        uint      `json:"id"`
	GroupID   uint      `json:"group_id"`
	SenderID  uint      `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewGroupResponse converts a group model into a DTO.
func NewGroupResponse(model models.Group) GroupResponse {
	return GroupResponse{
		ID:        model.ID,
		CourseID:  model.CourseID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
	}
}

// NewGroupResponseSlice converts group models into DTOs.
func NewGroupResponseSlice(groups []models.Group) []GroupResponse {
	responses := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, NewGroupResponse(group))
	}
	return responses
}

// NewGroupMessageResponse converts a message model into a DTO.
func NewGroupMessageResponse(model models.GroupMessage) GroupMessageResponse {
	return GroupMessageResponse{
		ID:        model.ID,
		GroupID:   model.GroupID,
		SenderID:  model.SenderID,
		Content:   model.Content,
		CreatedAt: model.CreatedAt,
	}
}

// NewGroupMessageResponseSlice converts message models into DTOs.
func NewGroupMessageResponseSlice(messages []models.GroupMessage) []GroupMessageResponse {
	responses := make([]GroupMessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, NewGroupMessageResponse(message))
	}
	return responses
}
