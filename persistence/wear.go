package persistence

import (
	"context"
	"time"

	"wardrobeapi/models"
)

// UpsertOutfit applies patch to the stored outfit with the given id, creating
// a placeholder outfit with no items when it does not exist yet.
func (a *Adapter) UpsertOutfit(ctx context.Context, id string, patch models.OutfitPatch) (models.Outfit, bool) {
	outfits, outfit, created := models.UpsertOutfit(a.LoadOutfits(ctx), id, patch, a.now())
	a.SaveOutfits(ctx, outfits)
	if created {
		a.log.WithField("outfit_id", id).Info("created placeholder outfit")
	}
	return outfit, created
}

func (a *Adapter) LoadOutfitWearDates(ctx context.Context, outfitID string) []time.Time {
	for _, outfit := range a.LoadOutfits(ctx) {
		if outfit.ID == outfitID {
			return append([]time.Time{}, outfit.WornDates()...)
		}
	}
	return []time.Time{}
}

// SaveOutfitWearDates replaces the wear dates of an outfit, creating a
// placeholder outfit when wear history arrives before the outfit exists.
func (a *Adapter) SaveOutfitWearDates(ctx context.Context, outfitID string, dates []time.Time) {
	if dates == nil {
		dates = []time.Time{}
	}
	a.UpsertOutfit(ctx, outfitID, models.OutfitPatch{WornDates: &dates})
}

// GetWearDatesInTimeRange lists, per outfit, the wear dates within
// [start, end]. Outfits without a matching date are left out.
func (a *Adapter) GetWearDatesInTimeRange(ctx context.Context, start, end time.Time) []models.WearRecord {
	return models.WearDatesInRange(a.LoadOutfits(ctx), start, end)
}
