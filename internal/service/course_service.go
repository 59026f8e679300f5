package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/hikma-academy/academy-api/internal/dto"
	"github.com/hikma-academy/academy-api/internal/models"
	"github.com/hikma-academy/academy-api/internal/repository"
)

// ErrCourseNotFound indicates a course could not be found.
var ErrCourseNotFound = errors.New("course not found")

// ErrInvalidVideoURL indicates a lesson URL failed sanitization.
var ErrInvalidVideoURL = errors.New("invalid video url")

// CourseService orchestrates the course catalog.
type CourseService interface {
	List(ctx context.Context, publishedOnly bool) ([]dto.CourseResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	Create(ctx context.Context, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	Update(ctx context.Context, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error)
	AddLesson(ctx context.Context, courseID uint, payload dto.LessonCreateRequest) (dto.LessonResponse, error)
}

type courseService struct {
	courses   repository.CourseRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(courses repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:   courses,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context, publishedOnly bool) ([]dto.CourseResponse, error) {
	courses, err := s.courses.List(ctx, repository.CourseFilter{PublishedOnly: publishedOnly})
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Create(ctx context.Context, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Title:       strings.TrimSpace(payload.Title),
		Description: s.sanitizer.Sanitize(payload.Description),
		Price:       payload.Price,
		Published:   payload.Published,
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Msg("course created")

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Update(ctx context.Context, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	if payload.Title != nil {
		course.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		course.Description = s.sanitizer.Sanitize(*payload.Description)
	}
	if payload.Price != nil {
		course.Price = *payload.Price
	}
	if payload.Published != nil {
		course.Published = *payload.Published
	}

	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) AddLesson(ctx context.Context, courseID uint, payload dto.LessonCreateRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrCourseNotFound
		}
		return dto.LessonResponse{}, err
	}

	videoURL, err := s.sanitizeVideoURL(payload.VideoURL)
	if err != nil {
		return dto.LessonResponse{}, err
	}

	lesson := models.Lesson{
		CourseID: courseID,
		Title:    strings.TrimSpace(payload.Title),
		VideoURL: videoURL,
		Position: payload.Position,
	}

	if err := s.courses.AddLesson(ctx, &lesson); err != nil {
		return dto.LessonResponse{}, err
	}

	return dto.LessonResponse{
		ID:       lesson.ID,
		Title:    lesson.Title,
		VideoURL: lesson.VideoURL,
		Position: lesson.Position,
	}, nil
}

// sanitizeVideoURL strips any markup from the supplied URL and accepts
// only absolute http(s) links.
func (s *courseService) sanitizeVideoURL(raw string) (string, error) {
	clean := strings.TrimSpace(s.sanitizer.Sanitize(raw))
	if clean == "" {
		return "", ErrInvalidVideoURL
	}

	parsed, err := url.Parse(clean)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidVideoURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", ErrInvalidVideoURL
	}
	if parsed.Host == "" {
		return "", ErrInvalidVideoURL
	}

	return parsed.String(), nil
}
