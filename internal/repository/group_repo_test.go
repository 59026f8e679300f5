package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hikma-academy/academy-api/internal/models"
)

func TestGroupRepositoryListMessagesPagesBackwards(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGroupRepository(db)

	group := models.Group{CourseID: 7, Name: "Algebra class"}
	require.NoError(t, repo.Create(context.Background(), &group))

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		msg := models.GroupMessage{
			GroupID:   group.ID,
			SenderID:  3,
			Content:   "message",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.SaveMessage(context.Background(), &msg))
	}

	newest, err := repo.ListMessages(context.Background(), group.ID, time.Time{}, 2)
	require.NoError(t, err)
	require.Len(t, newest, 2)
	require.True(t, newest[0].CreatedAt.After(newest[1].CreatedAt), "expected newest message first")

	older, err := repo.ListMessages(context.Background(), group.ID, newest[1].CreatedAt, 10)
	require.NoError(t, err)
	require.Len(t, older, 3)
	for _, msg := range older {
		require.True(t, msg.CreatedAt.Before(newest[1].CreatedAt))
	}
}

func TestGroupRepositoryListMessagesScopedToGroup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGroupRepository(db)

	first := models.Group{CourseID: 7, Name: "Algebra"}
	second := models.Group{CourseID: 7, Name: "Geometry"}
	require.NoError(t, repo.Create(context.Background(), &first))
	require.NoError(t, repo.Create(context.Background(), &second))

	require.NoError(t, repo.SaveMessage(context.Background(), &models.GroupMessage{GroupID: first.ID, SenderID: 3, Content: "hello"}))

	messages, err := repo.ListMessages(context.Background(), second.ID, time.Time{}, 10)
	require.NoError(t, err)
	require.Empty(t, messages)
}
