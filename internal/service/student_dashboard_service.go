package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hikma-academy/academy-api/internal/dto"
	"github.com/hikma-academy/academy-api/internal/repository"
)

// StudentDashboardService aggregates a student's enrollments, graded
// exams and pending payments into one view.
type StudentDashboardService interface {
	Dashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
}

type studentDashboardService struct {
	courses     repository.CourseRepository
	submissions repository.ExamSubmissionRepository
	exams       repository.ExamRepository
	payments    repository.PaymentProofRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewStudentDashboardService constructs the dashboard aggregator.
func NewStudentDashboardService(courses repository.CourseRepository, submissions repository.ExamSubmissionRepository, exams repository.ExamRepository, payments repository.PaymentProofRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) StudentDashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	return &studentDashboardService{
		courses:     courses,
		submissions: submissions,
		exams:       exams,
		payments:    payments,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "student_dashboard_service").Logger(),
	}
}

func (s *studentDashboardService) Dashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:student:%d", studentID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				return response, nil
			}
			s.logger.Warn().Str("key", cacheKey).Msg("discarding corrupt dashboard cache entry")
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("dashboard cache read failed")
		}
	}

	response, err := s.build(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	if s.cache != nil {
		if payload, marshalErr := json.Marshal(response); marshalErr == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("dashboard cache write failed")
			}
		}
	}

	return response, nil
}

func (s *studentDashboardService) build(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	enrollments, err := s.courses.ListEnrollments(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	courses := make([]dto.CourseLite, 0, len(enrollments))
	for _, enrollment := range enrollments {
		courses = append(courses, dto.CourseLite{
			ID:    enrollment.Course.ID,
			Title: enrollment.Course.Title,
			Price: enrollment.Course.Price,
		})
	}

	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	examTitles := make(map[uint]string, len(submissions))
	results := make([]dto.DashboardExamEntry, 0, len(submissions))
	totalPercentage := 0
	for _, submission := range submissions {
		title, ok := examTitles[submission.ExamID]
		if !ok {
			exam, examErr := s.exams.GetByID(ctx, submission.ExamID)
			if examErr != nil {
				s.logger.Warn().Err(examErr).Uint("exam_id", submission.ExamID).Msg("dashboard skipping submission with missing exam")
				continue
			}
			title = exam.Title
			examTitles[submission.ExamID] = title
		}

		results = append(results, dto.DashboardExamEntry{
			ExamID:     submission.ExamID,
			Title:      title,
			Score:      submission.Score,
			MaxScore:   submission.MaxScore,
			Percentage: submission.Percentage,
			Grade:      submission.Grade,
		})
		totalPercentage += submission.Percentage
	}

	average := 0.0
	if len(results) > 0 {
		average = math.Round(float64(totalPercentage)/float64(len(results))*100) / 100
	}

	pendingStatus := "pending"
	pending, err := s.payments.List(ctx, repository.PaymentProofFilter{
		StudentID: &studentID,
		Status:    &pendingStatus,
	})
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	return dto.StudentDashboardResponse{
		EnrolledCourses: courses,
		ExamResults:     results,
		PendingPayments: len(pending),
		AverageScore:    average,
	}, nil
}
