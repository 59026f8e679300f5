package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hikma-academy/academy-api/internal/dto"
	"github.com/hikma-academy/academy-api/internal/grading"
	"github.com/hikma-academy/academy-api/internal/models"
	"github.com/hikma-academy/academy-api/internal/observability"
	"github.com/hikma-academy/academy-api/internal/repository"
)

// ErrExamNotFound indicates the exam could not be located.
var ErrExamNotFound = errors.New("exam not found")

// ErrSubmissionNotFound indicates no submission exists for the student.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrNotEnrolled indicates the student has no access to the exam's course.
var ErrNotEnrolled = errors.New("student not enrolled in course")

// ErrInvalidExam indicates the exam definition failed authoring validation.
var ErrInvalidExam = errors.New("invalid exam definition")

// ExamAlreadyCompletedError is returned when a locked submission receives
// another submit call. It carries the stored result so callers can show
// prior scores instead of failing hard.
type ExamAlreadyCompletedError struct {
	Existing dto.SubmissionResponse
}

func (e *ExamAlreadyCompletedError) Error() string {
	return fmt.Sprintf("exam %d already completed with score %d/%d", e.Existing.ExamID, e.Existing.Score, e.Existing.MaxScore)
}

// ExamService orchestrates exam authoring, the student exam view, and the
// submission lifecycle around the grading core.
type ExamService interface {
	Create(ctx context.Context, payload dto.ExamCreateRequest) (dto.ExamStudentView, error)
	Update(ctx context.Context, examID uint, payload dto.ExamCreateRequest) (dto.ExamStudentView, error)
	ListByCourse(ctx context.Context, courseID uint) ([]dto.ExamStudentView, error)
	GetForStudent(ctx context.Context, examID uint) (dto.ExamStudentView, error)
	Submit(ctx context.Context, studentID, examID uint, payload dto.ExamSubmitRequest) (dto.SubmissionResponse, error)
	Result(ctx context.Context, studentID, examID uint) (dto.SubmissionResponse, error)
	ListSubmissions(ctx context.Context, examID uint) ([]dto.SubmissionResponse, error)
	Reopen(ctx context.Context, submissionID uint, actor ActivityActor) (dto.SubmissionResponse, error)
	Lock(ctx context.Context, submissionID uint, actor ActivityActor) (dto.SubmissionResponse, error)
}

type examService struct {
	exams       repository.ExamRepository
	submissions repository.ExamSubmissionRepository
	courses     repository.CourseRepository
	grader      *grading.Grader
	cache       *redis.Client
	cacheTTL    time.Duration
	validator   *validator.Validate
	activity    ActivityRecorder
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewExamService constructs an ExamService instance.
func NewExamService(
	exams repository.ExamRepository,
	submissions repository.ExamSubmissionRepository,
	courses repository.CourseRepository,
	grader *grading.Grader,
	cache *redis.Client,
	cacheTTL time.Duration,
	validate *validator.Validate,
	activity ActivityRecorder,
	logger zerolog.Logger,
) ExamService {
	return &examService{
		exams:       exams,
		submissions: submissions,
		courses:     courses,
		grader:      grader,
		cache:       cache,
		cacheTTL:    cacheTTL,
		validator:   validate,
		activity:    activity,
		logger:      logger.With().Str("component", "exam_service").Logger(),
		tracer:      otel.Tracer("github.com/hikma-academy/academy-api/internal/service/exam"),
		now:         time.Now,
	}
}

func (s *examService) Create(ctx context.Context, payload dto.ExamCreateRequest) (dto.ExamStudentView, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamStudentView{}, err
	}

	questions, err := buildQuestions(payload.Questions)
	if err != nil {
		return dto.ExamStudentView{}, err
	}

	exam := models.Exam{
		CourseID:      payload.CourseID,
		Title:         payload.Title,
		AllowResubmit: payload.AllowResubmit,
	}
	if err := exam.SetQuestions(questions); err != nil {
		return dto.ExamStudentView{}, err
	}

	if err := s.exams.Create(ctx, &exam); err != nil {
		return dto.ExamStudentView{}, err
	}

	s.logger.Info().Uint("exam_id", exam.ID).Int("questions", exam.TotalQuestions).Msg("exam created")

	return dto.NewExamStudentView(exam, questions), nil
}

func (s *examService) Update(ctx context.Context, examID uint, payload dto.ExamCreateRequest) (dto.ExamStudentView, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamStudentView{}, err
	}

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamStudentView{}, ErrExamNotFound
		}
		return dto.ExamStudentView{}, err
	}

	questions, err := buildQuestions(payload.Questions)
	if err != nil {
		return dto.ExamStudentView{}, err
	}

	exam.CourseID = payload.CourseID
	exam.Title = payload.Title
	exam.AllowResubmit = payload.AllowResubmit
	if err := exam.SetQuestions(questions); err != nil {
		return dto.ExamStudentView{}, err
	}

	if err := s.exams.Update(ctx, &exam); err != nil {
		return dto.ExamStudentView{}, err
	}

	s.invalidateViewCache(ctx, examID)
	s.logger.Info().Uint("exam_id", exam.ID).Int("questions", exam.TotalQuestions).Msg("exam updated")

	return dto.NewExamStudentView(exam, questions), nil
}

func (s *examService) ListByCourse(ctx context.Context, courseID uint) ([]dto.ExamStudentView, error) {
	exams, err := s.exams.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	views := make([]dto.ExamStudentView, 0, len(exams))
	for _, exam := range exams {
		questions, err := exam.Questions()
		if err != nil {
			s.logger.Warn().Err(err).Uint("exam_id", exam.ID).Msg("skipping exam with undecodable questions")
			continue
		}
		views = append(views, dto.NewExamStudentView(exam, questions))
	}

	return views, nil
}

func (s *examService) invalidateViewCache(ctx context.Context, examID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, fmt.Sprintf("exam:view:%d", examID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("exam_id", examID).Msg("failed to invalidate exam view cache")
	}
}

func buildQuestions(inputs []dto.ExamQuestionInput) ([]grading.Question, error) {
	questions := make([]grading.Question, 0, len(inputs))
	for i, input := range inputs {
		id := strings.TrimSpace(input.ID)
		if id == "" {
			id = fmt.Sprintf("q_%d", i)
		}

		options := make([]grading.Option, 0, len(input.Options))
		for _, opt := range input.Options {
			options = append(options, grading.Option{ID: strings.TrimSpace(opt.ID), Text: opt.Text})
		}

		question := grading.Question{
			ID:            id,
			Type:          grading.QuestionType(input.Type),
			Text:          input.QuestionText,
			Options:       grading.WithOptionIDs(id, options),
			CorrectAnswer: input.CorrectAnswer,
			Marks:         input.Marks,
		}

		if err := validateQuestion(question); err != nil {
			return nil, fmt.Errorf("question %q: %w", id, err)
		}

		questions = append(questions, question)
	}
	return questions, nil
}

// validateQuestion enforces the authoring invariant: every mcq question has
// options and a correctAnswer matching exactly one option id.
func validateQuestion(q grading.Question) error {
	switch q.Type {
	case grading.TypeMCQ:
		if len(q.Options) == 0 {
			return fmt.Errorf("%w: mcq question requires options", ErrInvalidExam)
		}
		key, ok := q.CorrectAnswer.(string)
		if !ok || strings.TrimSpace(key) == "" {
			return fmt.Errorf("%w: mcq question requires a correctAnswer option id", ErrInvalidExam)
		}
		matches := 0
		for _, opt := range q.Options {
			if opt.ID == strings.TrimSpace(key) {
				matches++
			}
		}
		if matches != 1 {
			return fmt.Errorf("%w: correctAnswer must match exactly one option id", ErrInvalidExam)
		}
	case grading.TypeTrueFalse:
		if q.CorrectAnswer == nil {
			return fmt.Errorf("%w: true_false question requires a correctAnswer", ErrInvalidExam)
		}
	case grading.TypeEssay:
		// no key to validate
	default:
		return fmt.Errorf("%w: unsupported question type %q", ErrInvalidExam, q.Type)
	}
	return nil
}

func (s *examService) GetForStudent(ctx context.Context, examID uint) (dto.ExamStudentView, error) {
	cacheKey := fmt.Sprintf("exam:view:%d", examID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var view dto.ExamStudentView
			if unmarshalErr := json.Unmarshal([]byte(cached), &view); unmarshalErr == nil {
				s.logger.Debug().Uint("exam_id", examID).Msg("exam view cache hit")
				return view, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read exam view cache")
		}
	}

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamStudentView{}, ErrExamNotFound
		}
		return dto.ExamStudentView{}, err
	}

	questions, err := exam.Questions()
	if err != nil {
		return dto.ExamStudentView{}, fmt.Errorf("decode exam questions: %w", err)
	}

	view := dto.NewExamStudentView(exam, questions)

	if s.cache != nil {
		if payload, err := json.Marshal(view); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store exam view cache")
			}
		}
	}

	return view, nil
}

func (s *examService) Submit(ctx context.Context, studentID, examID uint, payload dto.ExamSubmitRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "exam.submit", trace.WithAttributes(
		attribute.Int64("exam.id", int64(examID)),
		attribute.Int64("exam.student_id", int64(studentID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrExamNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	enrolled, err := s.courses.IsEnrolled(ctx, studentID, exam.CourseID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !enrolled {
		return dto.SubmissionResponse{}, ErrNotEnrolled
	}

	questions, err := exam.Questions()
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("decode exam questions: %w", err)
	}

	existing, err := s.submissions.GetByStudentAndExam(ctx, studentID, examID)
	switch {
	case err == nil:
		if existing.IsLocked() {
			span.SetStatus(codes.Error, "already_completed")
			return dto.SubmissionResponse{}, s.alreadyCompleted(existing)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first submission
	default:
		return dto.SubmissionResponse{}, err
	}

	start := s.now()
	result := s.grader.GradeExam(questions, payload.Answers)
	observability.ExamGradingSeconds().Observe(s.now().Sub(start).Seconds())

	breakdown, err := json.Marshal(result.Results)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission := existing
	submission.StudentID = studentID
	submission.ExamID = examID
	submission.CourseID = exam.CourseID
	submission.Answers = datatypes.JSONMap(payload.Answers)
	submission.ResultsJSON = datatypes.JSON(breakdown)
	submission.Score = result.TotalScore
	submission.MaxScore = result.MaxScore
	submission.Percentage = result.Percentage
	submission.Grade = result.Grade
	submission.Level = result.Level
	submission.IsEditable = exam.AllowResubmit
	submission.SubmittedAt = s.now()

	if submission.ID == 0 {
		if err := s.submissions.Create(ctx, &submission); err != nil {
			// A concurrent first submission may have won on the unique
			// (student, exam) index; surface the stored record instead of
			// a bare conflict.
			if winner, fetchErr := s.submissions.GetByStudentAndExam(ctx, studentID, examID); fetchErr == nil {
				if winner.IsLocked() {
					return dto.SubmissionResponse{}, s.alreadyCompleted(winner)
				}
			}
			span.RecordError(err)
			return dto.SubmissionResponse{}, err
		}
	} else {
		if err := s.submissions.Update(ctx, &submission); err != nil {
			span.RecordError(err)
			return dto.SubmissionResponse{}, err
		}
	}

	observability.ExamsGradedTotal().WithLabelValues(result.Grade).Inc()
	span.SetAttributes(
		attribute.Int("exam.score", result.TotalScore),
		attribute.Int("exam.max_score", result.MaxScore),
		attribute.String("exam.grade", result.Grade),
	)

	s.logger.Info().
		Uint("exam_id", examID).
		Uint("student_id", studentID).
		Int("score", result.TotalScore).
		Int("max_score", result.MaxScore).
		Str("grade", result.Grade).
		Msg("exam submission graded")

	return dto.NewSubmissionResponse(submission, result.Results), nil
}

func (s *examService) Result(ctx context.Context, studentID, examID uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByStudentAndExam(ctx, studentID, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission, s.decodeResults(submission)), nil
}

func (s *examService) ListSubmissions(ctx context.Context, examID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		// The per-question breakdown is omitted from list views.
		responses = append(responses, dto.NewSubmissionResponse(submission, nil))
	}
	return responses, nil
}

func (s *examService) Reopen(ctx context.Context, submissionID uint, actor ActivityActor) (dto.SubmissionResponse, error) {
	return s.setEditable(ctx, submissionID, actor, true, "submission.reopened")
}

func (s *examService) Lock(ctx context.Context, submissionID uint, actor ActivityActor) (dto.SubmissionResponse, error) {
	return s.setEditable(ctx, submissionID, actor, false, "submission.locked")
}

func (s *examService) setEditable(ctx context.Context, submissionID uint, actor ActivityActor, editable bool, action string) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if submission.IsEditable != editable {
		submission.IsEditable = editable
		if err := s.submissions.Update(ctx, &submission); err != nil {
			return dto.SubmissionResponse{}, err
		}
	}

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     action,
			EntityType: "exam_submission",
			EntityID:   &submission.ID,
			Metadata: map[string]interface{}{
				"exam_id":    submission.ExamID,
				"student_id": submission.StudentID,
			},
		})
	}

	return dto.NewSubmissionResponse(submission, nil), nil
}

func (s *examService) alreadyCompleted(submission models.ExamSubmission) error {
	return &ExamAlreadyCompletedError{
		Existing: dto.NewSubmissionResponse(submission, s.decodeResults(submission)),
	}
}

func (s *examService) decodeResults(submission models.ExamSubmission) []grading.QuestionResult {
	if len(submission.ResultsJSON) == 0 {
		return nil
	}
	var results []grading.QuestionResult
	if err := json.Unmarshal(submission.ResultsJSON, &results); err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to decode stored breakdown")
		return nil
	}
	return results
}
