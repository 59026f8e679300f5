package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hikma-academy/academy-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Enrollment{},
		&models.Course{},
		&models.Lesson{},
		&models.Exam{},
		&models.ExamSubmission{},
		&models.PaymentProof{},
		&models.Group{},
		&models.GroupMessage{},
		&models.Notification{},
		&models.ActivityLog{},
	))
	return db
}

func fixtureSubmission(studentID, examID uint, score int, submittedAt time.Time) models.ExamSubmission {
	return models.ExamSubmission{
		StudentID:   studentID,
		ExamID:      examID,
		CourseID:    7,
		Score:       score,
		MaxScore:    40,
		Percentage:  score * 100 / 40,
		Grade:       "C",
		SubmittedAt: submittedAt,
	}
}

func TestExamSubmissionRepositoryUniqueStudentExamIndex(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExamSubmissionRepository(db)

	winner := fixtureSubmission(3, 1, 30, time.Now())
	require.NoError(t, repo.Create(context.Background(), &winner))

	loser := fixtureSubmission(3, 1, 38, time.Now())
	require.Error(t, repo.Create(context.Background(), &loser), "second row for the same (student, exam) must lose on the index")

	stored, err := repo.GetByStudentAndExam(context.Background(), 3, 1)
	require.NoError(t, err)
	require.Equal(t, winner.ID, stored.ID)
	require.Equal(t, 30, stored.Score, "loser must not overwrite the stored result")

	// Same student on another exam is unaffected.
	other := fixtureSubmission(3, 2, 38, time.Now())
	require.NoError(t, repo.Create(context.Background(), &other))
}

func TestExamSubmissionRepositoryGetByStudentAndExam(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExamSubmissionRepository(db)

	sub := fixtureSubmission(3, 1, 30, time.Now())
	require.NoError(t, repo.Create(context.Background(), &sub))

	found, err := repo.GetByStudentAndExam(context.Background(), 3, 1)
	require.NoError(t, err)
	require.Equal(t, sub.ID, found.ID)

	_, err = repo.GetByStudentAndExam(context.Background(), 99, 1)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestExamSubmissionRepositoryListByExamNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExamSubmissionRepository(db)

	older := fixtureSubmission(3, 1, 30, time.Now().Add(-2*time.Hour))
	newer := fixtureSubmission(4, 1, 38, time.Now().Add(-1*time.Hour))
	require.NoError(t, repo.Create(context.Background(), &older))
	require.NoError(t, repo.Create(context.Background(), &newer))

	subs, err := repo.ListByExam(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	require.Equal(t, uint(4), subs[0].StudentID, "expected newest submission first")
}

func TestExamSubmissionRepositoryUpdateOverwritesInPlace(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExamSubmissionRepository(db)

	sub := fixtureSubmission(3, 1, 30, time.Now())
	require.NoError(t, repo.Create(context.Background(), &sub))

	sub.Score = 38
	sub.Grade = "A"
	require.NoError(t, repo.Update(context.Background(), &sub))

	var count int64
	require.NoError(t, db.Model(&models.ExamSubmission{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	stored, err := repo.GetByID(context.Background(), sub.ID)
	require.NoError(t, err)
	require.Equal(t, 38, stored.Score)
	require.Equal(t, "A", stored.Grade)
}
