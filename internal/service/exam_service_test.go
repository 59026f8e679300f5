package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hikma-academy/academy-api/internal/dto"
	"github.com/hikma-academy/academy-api/internal/grading"
	"github.com/hikma-academy/academy-api/internal/models"
	"github.com/hikma-academy/academy-api/internal/repository"
)

type fakeExamRepo struct {
	exams  map[uint]models.Exam
	nextID uint
}

func newFakeExamRepo() *fakeExamRepo {
	return &fakeExamRepo{exams: make(map[uint]models.Exam), nextID: 1}
}

func (f *fakeExamRepo) ListByCourse(ctx context.Context, courseID uint) ([]models.Exam, error) {
	var out []models.Exam
	for _, exam := range f.exams {
		if exam.CourseID == courseID {
			out = append(out, exam)
		}
	}
	return out, nil
}

func (f *fakeExamRepo) GetByID(ctx context.Context, id uint) (models.Exam, error) {
	exam, ok := f.exams[id]
	if !ok {
		return models.Exam{}, gorm.ErrRecordNotFound
	}
	return exam, nil
}

func (f *fakeExamRepo) Create(ctx context.Context, exam *models.Exam) error {
	exam.ID = f.nextID
	f.nextID++
	f.exams[exam.ID] = *exam
	return nil
}

func (f *fakeExamRepo) Update(ctx context.Context, exam *models.Exam) error {
	f.exams[exam.ID] = *exam
	return nil
}

type fakeSubmissionRepo struct {
	submissions map[uint]models.ExamSubmission
	nextID      uint
	createErr   error
	createCalls int
	updateCalls int

	// raceWinner, when set, simulates a concurrent first submission: Create
	// fails on the unique (student, exam) index and the winner's row becomes
	// visible for the follow-up read.
	raceWinner *models.ExamSubmission
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: make(map[uint]models.ExamSubmission), nextID: 1}
}

func (f *fakeSubmissionRepo) GetByStudentAndExam(ctx context.Context, studentID, examID uint) (models.ExamSubmission, error) {
	for _, sub := range f.submissions {
		if sub.StudentID == studentID && sub.ExamID == examID {
			return sub, nil
		}
	}
	return models.ExamSubmission{}, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id uint) (models.ExamSubmission, error) {
	sub, ok := f.submissions[id]
	if !ok {
		return models.ExamSubmission{}, gorm.ErrRecordNotFound
	}
	return sub, nil
}

func (f *fakeSubmissionRepo) ListByExam(ctx context.Context, examID uint) ([]models.ExamSubmission, error) {
	var out []models.ExamSubmission
	for _, sub := range f.submissions {
		if sub.ExamID == examID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) ListByStudent(ctx context.Context, studentID uint) ([]models.ExamSubmission, error) {
	var out []models.ExamSubmission
	for _, sub := range f.submissions {
		if sub.StudentID == studentID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, submission *models.ExamSubmission) error {
	f.createCalls++
	if f.raceWinner != nil {
		winner := *f.raceWinner
		if winner.ID == 0 {
			winner.ID = f.nextID
			f.nextID++
		}
		f.submissions[winner.ID] = winner
		return gorm.ErrDuplicatedKey
	}
	if f.createErr != nil {
		return f.createErr
	}
	submission.ID = f.nextID
	f.nextID++
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) Update(ctx context.Context, submission *models.ExamSubmission) error {
	f.updateCalls++
	f.submissions[submission.ID] = *submission
	return nil
}

type fakeCourseRepo struct {
	courses     map[uint]models.Course
	enrollments map[uint]map[uint]bool
	enrollCalls int
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{
		courses:     make(map[uint]models.Course),
		enrollments: make(map[uint]map[uint]bool),
	}
}

func (f *fakeCourseRepo) List(ctx context.Context, filter repository.CourseFilter) ([]models.Course, error) {
	var out []models.Course
	for _, course := range f.courses {
		out = append(out, course)
	}
	return out, nil
}

func (f *fakeCourseRepo) GetByID(ctx context.Context, id uint) (models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (f *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	course.ID = uint(len(f.courses) + 1)
	f.courses[course.ID] = *course
	return nil
}

func (f *fakeCourseRepo) Update(ctx context.Context, course *models.Course) error {
	f.courses[course.ID] = *course
	return nil
}

func (f *fakeCourseRepo) AddLesson(ctx context.Context, lesson *models.Lesson) error {
	return nil
}

func (f *fakeCourseRepo) IsEnrolled(ctx context.Context, studentID, courseID uint) (bool, error) {
	return f.enrollments[studentID][courseID], nil
}

func (f *fakeCourseRepo) Enroll(ctx context.Context, enrollment *models.Enrollment) error {
	f.enrollCalls++
	if f.enrollments[enrollment.StudentID] == nil {
		f.enrollments[enrollment.StudentID] = make(map[uint]bool)
	}
	f.enrollments[enrollment.StudentID][enrollment.CourseID] = true
	return nil
}

func (f *fakeCourseRepo) ListEnrollments(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for courseID, enrolled := range f.enrollments[studentID] {
		if enrolled {
			out = append(out, models.Enrollment{
				StudentID: studentID,
				CourseID:  courseID,
				Course:    f.courses[courseID],
			})
		}
	}
	return out, nil
}

type fakeActivityRecorder struct {
	entries []ActivityEntry
}

func (f *fakeActivityRecorder) Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	f.entries = append(f.entries, entry)
	return dto.ActivityResponse{}, nil
}

func fixtureQuestions() []grading.Question {
	return []grading.Question{
		{
			ID:   "q1",
			Type: grading.TypeMCQ,
			Text: "Pick one",
			Options: []grading.Option{
				{ID: "opt_a", Text: "Alpha"},
				{ID: "opt_b", Text: "Beta"},
			},
			CorrectAnswer: "opt_a",
			Marks:         10,
		},
		{
			ID:            "q2",
			Type:          grading.TypeTrueFalse,
			Text:          "Statement holds",
			CorrectAnswer: true,
			Marks:         10,
		},
		{
			ID:   "q3",
			Type: grading.TypeMCQ,
			Text: "Pick again",
			Options: []grading.Option{
				{ID: "opt_c", Text: "Gamma"},
				{ID: "opt_d", Text: "Delta"},
			},
			CorrectAnswer: "opt_d",
			Marks:         8,
		},
		{
			ID:    "q4",
			Type:  grading.TypeEssay,
			Text:  "Explain",
			Marks: 10,
		},
		{
			ID:   "q5",
			Type: grading.TypeMCQ,
			Text: "Last one",
			Options: []grading.Option{
				{ID: "opt_e", Text: "Epsilon"},
				{ID: "opt_f", Text: "Zeta"},
			},
			CorrectAnswer: "opt_f",
			Marks:         2,
		},
	}
}

func fixtureExam(t *testing.T, repo *fakeExamRepo, allowResubmit bool) models.Exam {
	t.Helper()

	exam := models.Exam{CourseID: 7, Title: "Midterm", AllowResubmit: allowResubmit}
	require.NoError(t, exam.SetQuestions(fixtureQuestions()))
	require.NoError(t, repo.Create(context.Background(), &exam))
	return exam
}

func newExamServiceForTest(t *testing.T, exams *fakeExamRepo, subs *fakeSubmissionRepo, courses *fakeCourseRepo) ExamService {
	t.Helper()

	validate := validator.New(validator.WithRequiredStructEnabled())
	grader := grading.NewGrader(nil, testLogger())
	return NewExamService(exams, subs, courses, grader, nil, time.Minute, validate, &fakeActivityRecorder{}, testLogger())
}

func TestExamServiceSubmitGradesAndPersists(t *testing.T) {
	exams := newFakeExamRepo()
	subs := newFakeSubmissionRepo()
	courses := newFakeCourseRepo()
	courses.enrollments[3] = map[uint]bool{7: true}

	exam := fixtureExam(t, exams, false)
	svc := newExamServiceForTest(t, exams, subs, courses)

	// Missed only the 2-mark question: 38/40 is 95% which lands on A.
	answers := map[string]interface{}{
		"q1": "opt_a",
		"q2": "صحيح",
		"q3": "opt_d",
		"q4": "a long essay answer",
	}

	result, err := svc.Submit(context.Background(), 3, exam.ID, dto.ExamSubmitRequest{Answers: answers})
	require.NoError(t, err)
	require.Equal(t, 38, result.Score)
	require.Equal(t, 40, result.MaxScore)
	require.Equal(t, 95, result.Percentage)
	require.Equal(t, "A", result.Grade)
	require.False(t, result.IsEditable)
	require.Len(t, result.Results, 5)
	require.Equal(t, grading.DetailSkipped, result.Results[4].Detail)
	require.Equal(t, 1, subs.createCalls)
}

func TestExamServiceSubmitLockedReturnsPriorResult(t *testing.T) {
	exams := newFakeExamRepo()
	subs := newFakeSubmissionRepo()
	courses := newFakeCourseRepo()
	courses.enrollments[3] = map[uint]bool{7: true}

	exam := fixtureExam(t, exams, false)
	svc := newExamServiceForTest(t, exams, subs, courses)

	first, err := svc.Submit(context.Background(), 3, exam.ID, dto.ExamSubmitRequest{
		Answers: map[string]interface{}{"q1": "opt_a"},
	})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), 3, exam.ID, dto.ExamSubmitRequest{
		Answers: map[string]interface{}{"q1": "opt_b"},
	})
	require.Error(t, err)

	var completed *ExamAlreadyCompletedError
	require.ErrorAs(t, err, &completed)
	require.Equal(t, first.Score, completed.Existing.Score)
	require.Equal(t, first.MaxScore, completed.Existing.MaxScore)
	require.Equal(t, 1, subs.createCalls)
	require.Equal(t, 0, subs.updateCalls)
}

func TestExamServiceSubmitEditableRegrades(t *testing.T) {
	exams := newFakeExamRepo()
	subs := newFakeSubmissionRepo()
	courses := newFakeCourseRepo()
	courses.enrollments[3] = map[uint]bool{7: true}

	exam := fixtureExam(t, exams, true)
	svc := newExamServiceForTest(t, exams, subs, courses)

	first, err := svc.Submit(context.Background(), 3, exam.ID, dto.ExamSubmitRequest{
		Answers: map[string]interface{}{"q1": "opt_b"},
	})
	require.NoError(t, err)
	require.True(t, first.IsEditable)

	second, err := svc.Submit(context.Background(), 3, exam.ID, dto.ExamSubmitRequest{
		Answers: map[string]interface{}{"q1": "opt_a", "q4": "essay"},
	})
	require.NoError(t, err)
	require.Greater(t, second.Score, first.Score)
	require.Equal(t, 1, subs.createCalls)
	require.Equal(t, 1, subs.updateCalls)
}

func TestExamServiceSubmitRequiresEnrollment(t *testing.T) {
	exams := newFakeExamRepo()
	subs := newFakeSubmissionRepo()
	courses := newFakeCourseRepo()

	exam := fixtureExam(t, exams, false)
	svc := newExamServiceForTest(t, exams, subs, courses)

	_, err := svc.Submit(context.Background(), 3, exam.ID, dto.ExamSubmitRequest{
		Answers: map[string]interface{}{"q1": "opt_a"},
	})
	require.ErrorIs(t, err, ErrNotEnrolled)
}

func TestExamServiceSubmitUnknownExam(t *testing.T) {
	svc := newExamServiceForTest(t, newFakeExamRepo(), newFakeSubmissionRepo(), newFakeCourseRepo())

	_, err := svc.Submit(context.Background(), 3, 99, dto.ExamSubmitRequest{
		Answers: map[string]interface{}{},
	})
	require.ErrorIs(t, err, ErrExamNotFound)
}

func TestExamServiceCreateRejectsAmbiguousAnswerKey(t *testing.T) {
	svc := newExamServiceForTest(t, newFakeExamRepo(), newFakeSubmissionRepo(), newFakeCourseRepo())

	_, err := svc.Create(context.Background(), dto.ExamCreateRequest{
		CourseID: 7,
		Title:    "Broken",
		Questions: []dto.ExamQuestionInput{
			{
				Type:         "mcq",
				QuestionText: "Pick",
				Options: []dto.ExamQuestionOption{
					{ID: "dup", Text: "One"},
					{ID: "dup", Text: "Two"},
				},
				CorrectAnswer: "dup",
				Marks:         5,
			},
		},
	})
	require.ErrorIs(t, err, ErrInvalidExam)
}

func TestExamServiceGetForStudentStripsAnswerKeyAndCaches(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	exams := newFakeExamRepo()
	exam := fixtureExam(t, exams, false)

	validate := validator.New(validator.WithRequiredStructEnabled())
	grader := grading.NewGrader(nil, testLogger())
	svc := NewExamService(exams, newFakeSubmissionRepo(), newFakeCourseRepo(), grader, redisClient, time.Minute, validate, &fakeActivityRecorder{}, testLogger())

	view, err := svc.GetForStudent(context.Background(), exam.ID)
	require.NoError(t, err)
	require.Equal(t, 5, view.TotalQuestions)
	require.Equal(t, 40, view.TotalMarks)
	for _, q := range view.Questions {
		for _, opt := range q.Options {
			require.NotEmpty(t, opt.ID)
		}
	}

	cached, err := mini.Get("exam:view:1")
	require.NoError(t, err)
	require.NotContains(t, cached, "correctAnswer")

	// Second read must come from the cache even if the store changes.
	delete(exams.exams, exam.ID)
	again, err := svc.GetForStudent(context.Background(), exam.ID)
	require.NoError(t, err)
	require.Equal(t, view.Title, again.Title)
}

func TestExamServiceReopenAndLock(t *testing.T) {
	exams := newFakeExamRepo()
	subs := newFakeSubmissionRepo()
	courses := newFakeCourseRepo()
	courses.enrollments[3] = map[uint]bool{7: true}

	exam := fixtureExam(t, exams, false)

	validate := validator.New(validator.WithRequiredStructEnabled())
	grader := grading.NewGrader(nil, testLogger())
	recorder := &fakeActivityRecorder{}
	svc := NewExamService(exams, subs, courses, grader, nil, time.Minute, validate, recorder, testLogger())

	submitted, err := svc.Submit(context.Background(), 3, exam.ID, dto.ExamSubmitRequest{
		Answers: map[string]interface{}{"q1": "opt_a"},
	})
	require.NoError(t, err)
	require.False(t, submitted.IsEditable)

	reopened, err := svc.Reopen(context.Background(), submitted.ID, ActivityActor{ID: 1, Role: "teacher"})
	require.NoError(t, err)
	require.True(t, reopened.IsEditable)

	locked, err := svc.Lock(context.Background(), submitted.ID, ActivityActor{ID: 1, Role: "teacher"})
	require.NoError(t, err)
	require.False(t, locked.IsEditable)

	require.Len(t, recorder.entries, 2)
	require.Equal(t, "submission.reopened", recorder.entries[0].Action)
	require.Equal(t, "submission.locked", recorder.entries[1].Action)
}

func TestExamServiceResultMissingSubmission(t *testing.T) {
	exams := newFakeExamRepo()
	fixtureExam(t, exams, false)
	svc := newExamServiceForTest(t, exams, newFakeSubmissionRepo(), newFakeCourseRepo())

	_, err := svc.Result(context.Background(), 3, 1)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestExamServiceUpdateInvalidatesViewCache(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	exams := newFakeExamRepo()
	exam := fixtureExam(t, exams, false)

	validate := validator.New(validator.WithRequiredStructEnabled())
	grader := grading.NewGrader(nil, testLogger())
	svc := NewExamService(exams, newFakeSubmissionRepo(), newFakeCourseRepo(), grader, redisClient, time.Minute, validate, &fakeActivityRecorder{}, testLogger())

	_, err = svc.GetForStudent(context.Background(), exam.ID)
	require.NoError(t, err)
	require.True(t, mini.Exists("exam:view:1"))

	updated, err := svc.Update(context.Background(), exam.ID, dto.ExamCreateRequest{
		CourseID: exam.CourseID,
		Title:    "Midterm v2",
		Questions: []dto.ExamQuestionInput{
			{
				Type:          "true_false",
				QuestionText:  "Water boils at 100C at sea level.",
				CorrectAnswer: true,
				Marks:         5,
			},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Midterm v2", updated.Title)
	require.False(t, mini.Exists("exam:view:1"))

	fresh, err := svc.GetForStudent(context.Background(), exam.ID)
	require.NoError(t, err)
	require.Equal(t, "Midterm v2", fresh.Title)
	require.Equal(t, 1, fresh.TotalQuestions)
}

func TestExamServiceUpdateUnknownExam(t *testing.T) {
	svc := newExamServiceForTest(t, newFakeExamRepo(), newFakeSubmissionRepo(), newFakeCourseRepo())

	_, err := svc.Update(context.Background(), 99, dto.ExamCreateRequest{
		CourseID: 7,
		Title:    "Ghost",
		Questions: []dto.ExamQuestionInput{
			{Type: "essay", QuestionText: "Describe.", Marks: 10},
		},
	})
	require.ErrorIs(t, err, ErrExamNotFound)
}

func TestExamServiceSubmitLosesFirstSubmissionRace(t *testing.T) {
	exams := newFakeExamRepo()
	subs := newFakeSubmissionRepo()
	courses := newFakeCourseRepo()
	courses.enrollments[3] = map[uint]bool{7: true}

	exam := fixtureExam(t, exams, false)
	subs.raceWinner = &models.ExamSubmission{
		StudentID:  3,
		ExamID:     exam.ID,
		CourseID:   exam.CourseID,
		Score:      30,
		MaxScore:   40,
		Percentage: 75,
		Grade:      "C",
		IsEditable: false,
	}

	svc := newExamServiceForTest(t, exams, subs, courses)

	_, err := svc.Submit(context.Background(), 3, exam.ID, dto.ExamSubmitRequest{
		Answers: map[string]interface{}{"q1": "opt_a"},
	})

	var alreadyCompleted *ExamAlreadyCompletedError
	require.ErrorAs(t, err, &alreadyCompleted)
	require.Equal(t, 30, alreadyCompleted.Existing.Score)
	require.Equal(t, "C", alreadyCompleted.Existing.Grade)
	require.Equal(t, 1, subs.createCalls)
	require.Zero(t, subs.updateCalls)
}
