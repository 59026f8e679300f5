package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hikma-academy/academy-api/internal/dto"
	"github.com/hikma-academy/academy-api/internal/models"
)

type fakeGroupRepo struct {
	groups   map[uint]models.Group
	messages []models.GroupMessage
	nextID   uint
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[uint]models.Group), nextID: 1}
}

func (f *fakeGroupRepo) ListByCourse(ctx context.Context, courseID uint) ([]models.Group, error) {
	var out []models.Group
	for _, group := range f.groups {
		if group.CourseID == courseID {
			out = append(out, group)
		}
	}
	return out, nil
}

func (f *fakeGroupRepo) GetByID(ctx context.Context, id uint) (models.Group, error) {
	group, ok := f.groups[id]
	if !ok {
		return models.Group{}, gorm.ErrRecordNotFound
	}
	return group, nil
}

func (f *fakeGroupRepo) Create(ctx context.Context, group *models.Group) error {
	group.ID = f.nextID
	f.nextID++
	f.groups[group.ID] = *group
	return nil
}

func (f *fakeGroupRepo) SaveMessage(ctx context.Context, message *models.GroupMessage) error {
	message.ID = uint(len(f.messages) + 1)
	message.CreatedAt = time.Now().UTC()
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeGroupRepo) ListMessages(ctx context.Context, groupID uint, before time.Time, limit int) ([]models.GroupMessage, error) {
	var out []models.GroupMessage
	for _, message := range f.messages {
		if message.GroupID != groupID {
			continue
		}
		if !before.IsZero() && !message.CreatedAt.Before(before) {
			continue
		}
		out = append(out, message)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newGroupServiceForTest(groups *fakeGroupRepo, courses *fakeCourseRepo) GroupService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewGroupService(groups, courses, validate, testLogger())
}

func TestGroupServicePostSanitizesContent(t *testing.T) {
	groups := newFakeGroupRepo()
	courses := newFakeCourseRepo()
	courses.courses[1] = models.Course{ID: 1}
	svc := newGroupServiceForTest(groups, courses)

	group, err := svc.Create(context.Background(), dto.GroupCreateRequest{CourseID: 1, Name: "Study hall"})
	require.NoError(t, err)

	message, err := svc.Post(context.Background(), group.ID, 3, dto.GroupMessageSendRequest{
		Content: `hello <script>alert("x")</script><b>world</b>`,
	})
	require.NoError(t, err)
	require.NotContains(t, message.Content, "<script>")
	require.Contains(t, message.Content, "hello")
	require.Contains(t, message.Content, "<b>world</b>")
}

func TestGroupServicePostRejectsContentThatSanitizesToNothing(t *testing.T) {
	groups := newFakeGroupRepo()
	courses := newFakeCourseRepo()
	courses.courses[1] = models.Course{ID: 1}
	svc := newGroupServiceForTest(groups, courses)

	group, err := svc.Create(context.Background(), dto.GroupCreateRequest{CourseID: 1, Name: "Study hall"})
	require.NoError(t, err)

	_, err = svc.Post(context.Background(), group.ID, 3, dto.GroupMessageSendRequest{
		Content: `<script>alert("x")</script>`,
	})
	require.Error(t, err)
	require.Empty(t, groups.messages)
}

func TestGroupServicePostUnknownGroup(t *testing.T) {
	svc := newGroupServiceForTest(newFakeGroupRepo(), newFakeCourseRepo())

	_, err := svc.Post(context.Background(), 9, 3, dto.GroupMessageSendRequest{Content: "hi"})
	require.ErrorIs(t, err, ErrGroupNotFound)
}

func TestGroupServiceHistoryPagesBackwards(t *testing.T) {
	groups := newFakeGroupRepo()
	courses := newFakeCourseRepo()
	courses.courses[1] = models.Course{ID: 1}
	svc := newGroupServiceForTest(groups, courses)

	group, err := svc.Create(context.Background(), dto.GroupCreateRequest{CourseID: 1, Name: "Study hall"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Post(context.Background(), group.ID, 3, dto.GroupMessageSendRequest{Content: "message"})
		require.NoError(t, err)
	}

	history, err := svc.History(context.Background(), group.ID, dto.GroupHistoryQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, history, 2)

	cursor := time.Now().Add(time.Hour)
	all, err := svc.History(context.Background(), group.ID, dto.GroupHistoryQuery{Before: &cursor})
	require.NoError(t, err)
	require.Len(t, all, 3)
}
