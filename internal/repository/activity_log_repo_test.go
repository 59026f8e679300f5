package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hikma-academy/academy-api/internal/models"
)

func TestActivityLogRepositoryListFiltersAndPaginates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)

	for i := 0; i < 3; i++ {
		entity := uint(i + 1)
		require.NoError(t, repo.Create(context.Background(), &models.ActivityLog{
			ActorID: 1, ActorRole: "admin", Action: "payment.approved", EntityType: "payment_proof", EntityID: &entity,
		}))
	}
	submission := uint(9)
	require.NoError(t, repo.Create(context.Background(), &models.ActivityLog{
		ActorID: 2, ActorRole: "teacher", Action: "submission.reopened", EntityType: "exam_submission", EntityID: &submission,
	}))

	entries, total, err := repo.List(context.Background(), ActivityLogFilter{Action: "payment.approved", Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, entries, 2)

	secondPage, _, err := repo.List(context.Background(), ActivityLogFilter{Action: "payment.approved", Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, secondPage, 1)

	actor := uint(2)
	byActor, total, err := repo.List(context.Background(), ActivityLogFilter{ActorID: &actor})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "submission.reopened", byActor[0].Action)
}
