package wardrobe

import (
	"context"
	"errors"
	"testing"
	"time"

	"wardrobeapi/errs"
	"wardrobeapi/kvstore"
	"wardrobeapi/logger"
	"wardrobeapi/models"
	"wardrobeapi/persistence"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock() time.Time { return testNow }

func openTestStore(t *testing.T, backing kvstore.Store) (*Store, *persistence.Adapter, *Inbox) {
	t.Helper()
	log := logrus.NewEntry(logger.Discard())
	adapter := persistence.NewAdapter(backing, log).WithClock(clock)
	inbox := NewInbox(10)
	store := Open(context.Background(), adapter, log, Options{Notifier: inbox, Now: clock})
	return store, adapter, inbox
}

func TestOpenSeedsEmptyStorage(t *testing.T) {
	ctx := context.Background()
	store, adapter, _ := openTestStore(t, kvstore.NewMemoryStore())

	assert.Equal(t, SeedItems(), store.Items())
	assert.Equal(t, ExampleOutfits(SeedItems()), store.Outfits())
	assert.Len(t, adapter.LoadClothingItems(ctx), 6)
	assert.Len(t, adapter.LoadOutfits(ctx), 3)

	state := store.Snapshot()
	assert.Equal(t, TabItems, state.UI.ActiveTab)
	assert.Equal(t, RangeWeek, state.UI.TimeRange)
	assert.False(t, state.UI.Premium)
}

func TestOpenKeepsSavedEmptyCollections(t *testing.T) {
	ctx := context.Background()
	backing := kvstore.NewMemoryStore()
	_, adapter, _ := openTestStore(t, backing)
	adapter.SaveClothingItems(ctx, []models.ClothingItem{})
	adapter.SaveOutfits(ctx, []models.Outfit{})

	reopened, _, _ := openTestStore(t, backing)

	assert.Empty(t, reopened.Items())
	assert.Empty(t, reopened.Outfits())
}

func TestActionsWriteThrough(t *testing.T) {
	ctx := context.Background()
	backing := kvstore.NewMemoryStore()
	store, adapter, _ := openTestStore(t, backing)

	require.NoError(t, store.DeleteItem(ctx, "1"))
	_, err := store.RenameOutfit(ctx, "2", "Date night")
	require.NoError(t, err)
	require.NoError(t, store.SetActiveTab(ctx, TabOutfits))

	for _, item := range adapter.LoadClothingItems(ctx) {
		assert.NotEqual(t, "1", item.ID)
	}
	for _, o := range adapter.LoadOutfits(ctx) {
		assert.False(t, o.HasItem("1"))
	}
	assert.Equal(t, TabOutfits, adapter.LoadActiveTab(ctx, TabItems))

	reopened, _, _ := openTestStore(t, backing)
	assert.Len(t, reopened.Items(), 5)
	view, err := reopened.OutfitView("2")
	require.NoError(t, err)
	assert.Equal(t, "Date night", view.Name)
	assert.Equal(t, TabOutfits, reopened.Snapshot().UI.ActiveTab)
}

func TestCreateOutfitThroughComposer(t *testing.T) {
	ctx := context.Background()
	store, _, inbox := openTestStore(t, kvstore.NewMemoryStore())

	_, err := store.CreateOutfit(ctx)
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.Len(t, store.Outfits(), 3)

	_, err = store.ToggleItemSelection(ctx, "4")
	require.NoError(t, err)
	_, err = store.ToggleItemSelection(ctx, "2")
	require.NoError(t, err)
	require.NoError(t, store.SetNewOutfitName(ctx, "Rainy day"))

	view, err := store.CreateOutfit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "4", view.ID)
	assert.Equal(t, "Rainy day", view.Name)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "4", view.Items[0].ID)
	assert.Equal(t, view.Items[0].ImageURL, view.ImageURL)
	assert.Empty(t, store.Snapshot().UI.SelectedItemIDs)

	notes := inbox.Drain()
	require.Len(t, notes, 2)
	assert.Equal(t, LevelError, notes[0].Level)
	assert.Equal(t, "Please enter a name for the outfit", notes[0].Message)
	assert.Equal(t, LevelSuccess, notes[1].Level)
	assert.Empty(t, inbox.Drain())
}

func TestItemRenameIsVisibleInOutfitViews(t *testing.T) {
	ctx := context.Background()
	store, _, _ := openTestStore(t, kvstore.NewMemoryStore())

	_, err := store.RenameItem(ctx, "1", "")
	assert.True(t, errors.Is(err, errs.ErrValidation))

	_, err = store.RenameItem(ctx, "1", "Basic tee")
	require.NoError(t, err)

	related, err := store.RelatedOutfits("1")
	require.NoError(t, err)
	require.NotEmpty(t, related)
	for _, view := range related {
		assert.Equal(t, "Basic tee", view.Items[0].Name)
	}
}

func TestSuggestedOutfitsRequirePremium(t *testing.T) {
	ctx := context.Background()
	store, _, _ := openTestStore(t, kvstore.NewMemoryStore())

	_, err := store.SuggestedOutfits()
	assert.True(t, errors.Is(err, errs.ErrPremiumRequired))

	premium, err := store.TogglePremium(ctx)
	require.NoError(t, err)
	assert.True(t, premium)

	before, err := store.SuggestedOutfits()
	require.NoError(t, err)
	require.NotEmpty(t, before)

	require.NoError(t, store.DeleteOutfit(ctx, "1"))
	after, err := store.SuggestedOutfits()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCloseOutfitDetailSendsWardrobeUpdate(t *testing.T) {
	ctx := context.Background()
	store, _, _ := openTestStore(t, kvstore.NewMemoryStore())

	var events []EventKind
	unsubscribe := store.Subscribe(func(e Event) { events = append(events, e.Kind) })

	require.NoError(t, store.OpenItem(ctx, "1"))
	require.NoError(t, store.CloseDetail(ctx))
	assert.NotContains(t, events, EventWardrobeUpdate)

	revision := store.Revision()
	require.NoError(t, store.OpenOutfit(ctx, "1"))
	require.NoError(t, store.CloseDetail(ctx))
	assert.Contains(t, events, EventWardrobeUpdate)
	assert.Greater(t, store.Revision(), revision)

	unsubscribe()
	count := len(events)
	require.NoError(t, store.SetSearchTerm(ctx, "jeans"))
	assert.Len(t, events, count)
}

func TestRecordWearAndRange(t *testing.T) {
	ctx := context.Background()
	store, adapter, _ := openTestStore(t, kvstore.NewMemoryStore())
	yesterday := testNow.Add(-24 * time.Hour)
	lastYear := testNow.AddDate(-1, 0, 0)

	_, err := store.RecordWear(ctx, "1", []time.Time{yesterday, yesterday, lastYear})
	require.NoError(t, err)
	placeholder, err := store.RecordWear(ctx, "99", []time.Time{yesterday})
	require.NoError(t, err)
	assert.Equal(t, "Outfit 99", placeholder.Name)

	assert.Len(t, adapter.LoadOutfitWearDates(ctx, "1"), 2)

	_, start, end, err := store.ActiveTimeRange()
	require.NoError(t, err)
	records := store.WearDatesInRange(ctx, start, end)
	require.Len(t, records, 2)
	for _, record := range records {
		assert.Len(t, record.Dates, 1)
	}
	stored := adapter.GetWearDatesInTimeRange(ctx, start, end)
	require.Len(t, stored, 2)
	assert.Equal(t, "1", stored[0].OutfitID)
	assert.Equal(t, "99", stored[1].OutfitID)
}

func TestRecordWearKeepsHistoryWrittenToStorage(t *testing.T) {
	ctx := context.Background()
	store, adapter, _ := openTestStore(t, kvstore.NewMemoryStore())
	yesterday := testNow.Add(-24 * time.Hour)
	twoDaysAgo := testNow.Add(-48 * time.Hour)

	// another writer records history straight through the adapter
	adapter.SaveOutfitWearDates(ctx, "99", []time.Time{yesterday})
	adapter.SaveOutfitWearDates(ctx, "1", []time.Time{twoDaysAgo})
	assert.Len(t, store.WearDates(ctx, "99"), 1)

	outfit, err := store.RecordWear(ctx, "1", []time.Time{yesterday})
	require.NoError(t, err)
	assert.Len(t, outfit.WornDates(), 2)

	assert.Len(t, adapter.LoadOutfitWearDates(ctx, "99"), 1)
	assert.Len(t, adapter.LoadOutfitWearDates(ctx, "1"), 2)
	_, err = store.OutfitView("99")
	require.NoError(t, err)

	_, err = store.RenameOutfit(ctx, "2", "Weekend")
	require.NoError(t, err)
	assert.Len(t, adapter.LoadOutfitWearDates(ctx, "99"), 1)

	_, start, end, err := store.ActiveTimeRange()
	require.NoError(t, err)
	records := store.WearDatesInRange(ctx, start, end)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].OutfitID)
	assert.Len(t, records[0].Dates, 2)
	assert.Equal(t, "99", records[1].OutfitID)
}

func TestRecordWearRepairsLostOutfits(t *testing.T) {
	ctx := context.Background()
	backing := kvstore.NewMemoryStore()
	store, adapter, _ := openTestStore(t, backing)
	outfitsBefore := len(store.Outfits())
	require.NoError(t, backing.Delete(ctx, persistence.KeyOutfits))

	_, err := store.RecordWear(ctx, "1", []time.Time{testNow})
	require.NoError(t, err)

	assert.Len(t, store.Outfits(), outfitsBefore)
	assert.Len(t, adapter.LoadOutfits(ctx), outfitsBefore)
	assert.Len(t, adapter.LoadOutfitWearDates(ctx, "1"), 1)
}

func TestRecentUploadLifecycle(t *testing.T) {
	ctx := context.Background()
	store, adapter, _ := openTestStore(t, kvstore.NewMemoryStore())

	_, err := store.Ingest(ctx, Intake{
		Pending: []models.RecentUpload{{ID: "u1", Name: "Felpa grigio", Category: "hoodie", Color: "grey", Confidence: 0.5}},
	})
	require.NoError(t, err)
	assert.Len(t, adapter.LoadRecentUploads(ctx), 1)

	item, err := store.ConfirmRecentUpload(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Felpa grigio", item.Name)
	assert.Empty(t, adapter.LoadRecentUploads(ctx))
	assert.Len(t, adapter.LoadClothingItems(ctx), 7)
}

func TestUpdateItemsStripsOutfits(t *testing.T) {
	ctx := context.Background()
	store, _, _ := openTestStore(t, kvstore.NewMemoryStore())

	err := store.UpdateItems(ctx, func(items []models.ClothingItem) []models.ClothingItem {
		return items[:1]
	})
	require.NoError(t, err)

	assert.Len(t, store.Items(), 1)
	for _, o := range store.Outfits() {
		for _, id := range o.ItemIDs {
			assert.Equal(t, "1", id)
		}
	}
}

func TestRegistryIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	backing := kvstore.NewMemoryStore()
	registry := NewRegistry(backing, logger.Discard()).WithClock(clock)

	alice := registry.For(ctx, "alice")
	bob := registry.For(ctx, "bob")
	assert.Same(t, alice, registry.For(ctx, "alice"))

	require.NoError(t, alice.DeleteItem(ctx, "1"))

	assert.Len(t, alice.Items(), 5)
	assert.Len(t, bob.Items(), 6)
	_, ok, err := backing.Get(ctx, "user:alice:"+persistence.KeyClothingItems)
	require.NoError(t, err)
	assert.True(t, ok)

	notes := registry.Notifications("alice")
	require.Len(t, notes, 1)
	assert.Equal(t, "Item deleted", notes[0].Message)
	assert.Empty(t, registry.Notifications("bob"))
	assert.Empty(t, registry.Notifications("carol"))
}

func TestSettersReplaceAndWriteThrough(t *testing.T) {
	ctx := context.Background()
	store, adapter, _ := openTestStore(t, kvstore.NewMemoryStore())

	items := []models.ClothingItem{
		{ID: "a", Name: "Camicia", Category: "shirt", Color: "blue"},
		{ID: "b", Name: "Jeans", Category: "jeans", Color: "blue"},
	}
	require.NoError(t, store.SetItems(ctx, items))
	assert.Len(t, adapter.LoadClothingItems(ctx), 2)
	for _, outfit := range store.Outfits() {
		assert.NotContains(t, outfit.ItemIDs, "1", outfit.ID)
	}

	outfits := []models.Outfit{{ID: "10", Name: "Blue", ItemIDs: []string{"a", "b", "gone"}, CreatedAt: testNow}}
	require.NoError(t, store.SetOutfits(ctx, outfits))
	saved := adapter.LoadOutfits(ctx)
	require.Len(t, saved, 1)
	assert.Equal(t, []string{"a", "b"}, saved[0].ItemIDs)

	require.NoError(t, store.UpdateOutfits(ctx, func(current []models.Outfit) []models.Outfit {
		return append(current, models.Outfit{ID: "11", Name: "Just jeans", ItemIDs: []string{"b"}, CreatedAt: testNow})
	}))
	assert.Len(t, store.Outfits(), 2)
	assert.Len(t, adapter.LoadOutfits(ctx), 2)

	err := store.SetItems(ctx, []models.ClothingItem{{ID: "x"}, {ID: "x"}})
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.Len(t, store.Items(), 2)
}
