package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/hikma-academy/academy-api/internal/dto"
	"github.com/hikma-academy/academy-api/internal/models"
)

func newCourseServiceForTest(courses *fakeCourseRepo) CourseService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewCourseService(courses, validate, testLogger())
}

func TestCourseServiceCreateSanitizesDescription(t *testing.T) {
	courses := newFakeCourseRepo()
	svc := newCourseServiceForTest(courses)

	created, err := svc.Create(context.Background(), dto.CourseCreateRequest{
		Title:       "  Algebra I ",
		Description: `Intro <script>alert("x")</script>to equations`,
		Price:       49.99,
		Published:   true,
	})
	require.NoError(t, err)
	require.Equal(t, "Algebra I", created.Title)
	require.NotContains(t, created.Description, "<script>")
	require.Contains(t, created.Description, "to equations")
}

func TestCourseServiceAddLessonAcceptsCleanURL(t *testing.T) {
	courses := newFakeCourseRepo()
	courses.courses[1] = models.Course{ID: 1, Title: "Algebra"}
	svc := newCourseServiceForTest(courses)

	lesson, err := svc.AddLesson(context.Background(), 1, dto.LessonCreateRequest{
		Title:    "Lesson 1",
		VideoURL: "https://videos.example.com/lesson1.mp4",
		Position: 1,
	})
	require.NoError(t, err)
	require.Equal(t, "https://videos.example.com/lesson1.mp4", lesson.VideoURL)
}

func TestCourseServiceAddLessonRejectsBadSchemes(t *testing.T) {
	courses := newFakeCourseRepo()
	courses.courses[1] = models.Course{ID: 1, Title: "Algebra"}
	svc := newCourseServiceForTest(courses)

	bad := []string{
		"ftp://videos.example.com/lesson1.mp4",
		"https://",
	}
	for _, raw := range bad {
		_, err := svc.AddLesson(context.Background(), 1, dto.LessonCreateRequest{
			Title:    "Lesson",
			VideoURL: raw,
			Position: 1,
		})
		require.Error(t, err, raw)
	}
}

func TestCourseServiceUpdateUnknownCourse(t *testing.T) {
	svc := newCourseServiceForTest(newFakeCourseRepo())

	title := "New title"
	_, err := svc.Update(context.Background(), 42, dto.CourseUpdateRequest{Title: &title})
	require.ErrorIs(t, err, ErrCourseNotFound)
}
