package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/efxcreator/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	entry1 := &activity.ActivityEntry{
		ProjectID:    "p1",
		ActivityType: activity.TypeProjectCreated,
		Summary:      "Created project",
		Details:      `{"name":"Intro"}`,
		CreatedAt:    base,
	}
	entry2 := &activity.ActivityEntry{
		ProjectID:    "p1",
		ActivityType: activity.TypeTimelineEdited,
		Summary:      "Timeline add, 2 entries",
		CreatedAt:    base.Add(time.Second),
	}

	require.NoError(t, repo.Log(ctx, entry1))
	require.NoError(t, repo.Log(ctx, entry2))
	require.NotZero(t, entry1.ID)

	entries, err := repo.List(ctx, activity.ListActivityOptions{ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, entry2.ActivityType, entries[0].ActivityType)
	require.Equal(t, entry1.ActivityType, entries[1].ActivityType)
	require.Equal(t, `{"name":"Intro"}`, entries[1].Details)
	require.True(t, base.Equal(entries[1].CreatedAt))
}

func TestActivityRepository_Filters(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{
		ProjectID:    "p1",
		ActivityType: activity.TypeProjectRenamed,
		Summary:      "Renamed",
	}))
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{
		ProjectID:    "p2",
		ActivityType: activity.TypeProjectRenamed,
		Summary:      "Renamed",
	}))
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{
		ActivityType: activity.TypeStorageMigrated,
		Summary:      "Storage moved",
	}))

	activityType := activity.TypeProjectRenamed
	entries, err := repo.List(ctx, activity.ListActivityOptions{ProjectID: "p1", ActivityType: &activityType})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, err = repo.List(ctx, activity.ListActivityOptions{ActivityType: &activityType})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = repo.List(ctx, activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	entries, err = repo.List(ctx, activity.ListActivityOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = repo.List(ctx, activity.ListActivityOptions{Offset: 1})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = repo.List(ctx, activity.ListActivityOptions{ProjectID: "p3"})
	require.NoError(t, err)
	require.Len(t, entries, 0)
}
