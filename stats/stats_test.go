package stats

import (
	"context"
	"testing"
	"time"

	"wardrobeapi/kvstore"
	"wardrobeapi/logger"
	"wardrobeapi/models"
	"wardrobeapi/wardrobe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC)

func TestComputeCountsWears(t *testing.T) {
	state := wardrobe.State{
		Items: []models.ClothingItem{
			{ID: "1", Name: "Maglietta bianco", Category: "t-shirt", Color: "white"},
			{ID: "2", Name: "Jeans blu", Category: "jeans", Color: "blue"},
			{ID: "3", Name: "Borsa marrone", Category: "bag", Color: "brown"},
			{ID: "4", Name: "Camicia bianco", Category: "shirt", Color: "white"},
		},
		Outfits: []models.Outfit{
			{ID: "1", Name: "Casual", ItemIDs: []string{"1", "2"}},
			{ID: "2", Name: "Office", ItemIDs: []string{"4", "2"}},
		},
	}
	d := func(day int) time.Time { return time.Date(2024, time.May, day, 9, 0, 0, 0, time.UTC) }
	records := []models.WearRecord{
		{OutfitID: "1", Dates: []time.Time{d(1)}},
		{OutfitID: "2", Dates: []time.Time{d(2), d(5), d(3)}},
		{OutfitID: "99", Dates: []time.Time{d(4)}},
	}

	summary := Compute(state, records)

	assert.Equal(t, 5, summary.TotalWears)
	require.Len(t, summary.Outfits, 3)
	assert.Equal(t, "Office", summary.Outfits[0].Name)
	assert.Equal(t, 3, summary.Outfits[0].Count)
	assert.Equal(t, d(5), summary.Outfits[0].LastWorn)

	require.Len(t, summary.TopItems, 3)
	assert.Equal(t, ItemWear{ItemID: "2", Name: "Jeans blu", Count: 4}, summary.TopItems[0])
	assert.Equal(t, "4", summary.TopItems[1].ItemID)

	require.Len(t, summary.NeverWorn, 1)
	assert.Equal(t, "3", summary.NeverWorn[0].ID)

	assert.Len(t, summary.Categories, 4)
	require.NotEmpty(t, summary.Colors)
	assert.Equal(t, ColorShare{Color: "white", Hex: "#FFFFFF", Count: 2}, summary.Colors[0])
}

func TestComputeEmpty(t *testing.T) {
	summary := Compute(wardrobe.State{}, nil)
	assert.Zero(t, summary.TotalWears)
	assert.NotNil(t, summary.Outfits)
	assert.NotNil(t, summary.NeverWorn)
}

func TestSummaryFollowsRevision(t *testing.T) {
	ctx := context.Background()
	registry := wardrobe.NewRegistry(kvstore.NewMemoryStore(), logger.Discard()).
		WithClock(func() time.Time { return testNow })
	svc, err := NewService(logger.Discard())
	require.NoError(t, err)
	registry.OnOpen(svc.Watch)
	store := registry.For(ctx, "u1")

	first, err := svc.Summary(ctx, "u1", store)
	require.NoError(t, err)
	assert.Zero(t, first.TotalWears)
	assert.Equal(t, wardrobe.RangeWeek, first.TimeRange)
	assert.Len(t, first.NeverWorn, 6)

	_, err = store.RecordWear(ctx, "1", []time.Time{testNow.Add(-time.Hour), testNow.AddDate(0, 0, -20)})
	require.NoError(t, err)

	second, err := svc.Summary(ctx, "u1", store)
	require.NoError(t, err)
	assert.Greater(t, second.Revision, first.Revision)
	assert.Equal(t, 1, second.TotalWears)

	require.NoError(t, store.SetTimeRange(ctx, wardrobe.RangeMonth))
	third, err := svc.Summary(ctx, "u1", store)
	require.NoError(t, err)
	assert.Equal(t, 2, third.TotalWears)
	assert.Equal(t, wardrobe.RangeMonth, third.TimeRange)
}

func TestWatchEvictsOutdatedSummaries(t *testing.T) {
	ctx := context.Background()
	registry := wardrobe.NewRegistry(kvstore.NewMemoryStore(), logger.Discard()).
		WithClock(func() time.Time { return testNow })
	svc, err := NewService(logger.Discard())
	require.NoError(t, err)
	registry.OnOpen(svc.Watch)
	store := registry.For(ctx, "u1")
	other := registry.For(ctx, "u2")

	_, err = svc.Summary(ctx, "u1", store)
	require.NoError(t, err)
	_, err = svc.Summary(ctx, "u2", other)
	require.NoError(t, err)
	require.Len(t, svc.keys["u1"], 1)

	// ui only changes keep the revision
	require.NoError(t, store.SetTimeRange(ctx, wardrobe.RangeMonth))
	assert.Len(t, svc.keys["u1"], 1)

	_, err = store.RecordWear(ctx, "1", []time.Time{testNow.Add(-time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, svc.keys["u1"])
	assert.Len(t, svc.keys["u2"], 1)

	summary, err := svc.Summary(ctx, "u1", store)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalWears)
	assert.Len(t, svc.keys["u1"], 1)
}
