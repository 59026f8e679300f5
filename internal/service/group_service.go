package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/hikma-academy/academy-api/internal/dto"
	"github.com/hikma-academy/academy-api/internal/models"
	"github.com/hikma-academy/academy-api/internal/repository"
)

// ErrGroupNotFound indicates the group could not be located.
var ErrGroupNotFound = errors.New("group not found")

// GroupService manages course discussion groups and their messages.
type GroupService interface {
	Create(ctx context.Context, payload dto.GroupCreateRequest) (dto.GroupResponse, error)
	ListByCourse(ctx context.Context, courseID uint) ([]dto.GroupResponse, error)
	Post(ctx context.Context, groupID, senderID uint, payload dto.GroupMessageSendRequest) (dto.GroupMessageResponse, error)
	History(ctx context.Context, groupID uint, query dto.GroupHistoryQuery) ([]dto.GroupMessageResponse, error)
}

type groupService struct {
	groups    repository.GroupRepository
	courses   repository.CourseRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewGroupService constructs a GroupService instance.
func NewGroupService(groups repository.GroupRepository, courses repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) GroupService {
	sanitizer := bluemonday.UGCPolicy()
	sanitizer.AllowElements("br")

	return &groupService{
		groups:    groups,
		courses:   courses,
		validator: validate,
		sanitizer: sanitizer,
		logger:    logger.With().Str("component", "group_service").Logger(),
	}
}

func (s *groupService) Create(ctx context.Context, payload dto.GroupCreateRequest) (dto.GroupResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupResponse{}, ErrCourseNotFound
		}
		return dto.GroupResponse{}, err
	}

	group := models.Group{
		CourseID: payload.CourseID,
		Name:     strings.TrimSpace(payload.Name),
	}

	if err := s.groups.Create(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}

	s.logger.Info().Uint("group_id", group.ID).Uint("course_id", group.CourseID).Msg("group created")

	return dto.NewGroupResponse(group), nil
}

func (s *groupService) ListByCourse(ctx context.Context, courseID uint) ([]dto.GroupResponse, error) {
	groups, err := s.groups.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return dto.NewGroupResponseSlice(groups), nil
}

func (s *groupService) Post(ctx context.Context, groupID, senderID uint, payload dto.GroupMessageSendRequest) (dto.GroupMessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupMessageResponse{}, err
	}

	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupMessageResponse{}, ErrGroupNotFound
		}
		return dto.GroupMessageResponse{}, err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if clean == "" {
		return dto.GroupMessageResponse{}, fmt.Errorf("message content empty after sanitization")
	}

	message := models.GroupMessage{
		GroupID:  groupID,
		SenderID: senderID,
		Content:  clean,
	}

	if err := s.groups.SaveMessage(ctx, &message); err != nil {
		return dto.GroupMessageResponse{}, err
	}

	return dto.NewGroupMessageResponse(message), nil
}

func (s *groupService) History(ctx context.Context, groupID uint, query dto.GroupHistoryQuery) ([]dto.GroupMessageResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	before := time.Time{}
	if query.Before != nil {
		before = *query.Before
	}

	messages, err := s.groups.ListMessages(ctx, groupID, before, query.Limit)
	if err != nil {
		return nil, err
	}

	return dto.NewGroupMessageResponseSlice(messages), nil
}
