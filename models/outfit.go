package models

import "time"

const SeasonAllSeasons = "All Seasons"

type OutfitMetadata struct {
	WornDates []time.Time `json:"wornDates,omitempty"`
}

// Outfit references its clothing items by id; OutfitView carries the joined items.
type Outfit struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	ItemIDs   []string        `json:"itemIds"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	Season    string          `json:"season"`
	Metadata  *OutfitMetadata `json:"metadata,omitempty"`
}

func (o Outfit) Clone() Outfit {
	o.ItemIDs = append([]string{}, o.ItemIDs...)
	if o.Metadata != nil {
		metadata := OutfitMetadata{WornDates: append([]time.Time(nil), o.Metadata.WornDates...)}
		o.Metadata = &metadata
	}
	return o
}

func (o Outfit) HasItem(itemID string) bool {
	for _, id := range o.ItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

func (o Outfit) WornDates() []time.Time {
	if o.Metadata == nil {
		return nil
	}
	return o.Metadata.WornDates
}

// OutfitView is an outfit joined against the current item collection.
// Ids whose item no longer exists are skipped.
type OutfitView struct {
	Outfit
	Items []ClothingItem `json:"items"`
}

// OutfitPatch is the explicit create-or-update payload for an outfit.
type OutfitPatch struct {
	Name      *string
	Season    *string
	ImageURL  *string
	WornDates *[]time.Time
}

// WearRecord lists the wear dates of one outfit inside a time range.
type WearRecord struct {
	OutfitID string      `json:"outfitId"`
	Dates    []time.Time `json:"dates"`
}

// UniqueDates drops repeated instants keeping the first occurrence order.
// Instants are compared in UTC so any year is safe to key on.
func UniqueDates(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		key := d.UTC()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}

// PlaceholderOutfit is the outfit synthesized when wear history arrives for
// an id that has no outfit yet.
func PlaceholderOutfit(id string, createdAt time.Time) Outfit {
	return Outfit{
		ID:        id,
		Name:      "Outfit " + id,
		ItemIDs:   []string{},
		CreatedAt: createdAt,
		Season:    SeasonAllSeasons,
	}
}

func (p OutfitPatch) Apply(o Outfit) Outfit {
	if p.Name != nil {
		o.Name = *p.Name
	}
	if p.Season != nil {
		o.Season = *p.Season
	}
	if p.ImageURL != nil {
		o.ImageURL = *p.ImageURL
	}
	if p.WornDates != nil {
		metadata := OutfitMetadata{}
		if o.Metadata != nil {
			metadata = *o.Metadata
		}
		metadata.WornDates = UniqueDates(*p.WornDates)
		o.Metadata = &metadata
	}
	return o
}

// UpsertOutfit returns a new outfit list with patch applied to the outfit
// with the given id, appending a placeholder first when it is missing.
// The input slice is not modified.
func UpsertOutfit(outfits []Outfit, id string, patch OutfitPatch, now time.Time) ([]Outfit, Outfit, bool) {
	next := make([]Outfit, 0, len(outfits)+1)
	var result Outfit
	found := false
	for _, o := range outfits {
		o = o.Clone()
		if o.ID == id && !found {
			o = patch.Apply(o)
			result = o
			found = true
		}
		next = append(next, o)
	}
	if !found {
		result = patch.Apply(PlaceholderOutfit(id, now))
		next = append(next, result)
	}
	return next, result, !found
}

func HasOutfit(outfits []Outfit, id string) bool {
	for _, o := range outfits {
		if o.ID == id {
			return true
		}
	}
	return false
}

// WearDatesInRange filters every outfit's wear dates to [start, end].
// Outfits with no date in range are left out.
func WearDatesInRange(outfits []Outfit, start, end time.Time) []WearRecord {
	records := []WearRecord{}
	for _, o := range outfits {
		var matching []time.Time
		for _, d := range o.WornDates() {
			if d.Before(start) || d.After(end) {
				continue
			}
			matching = append(matching, d)
		}
		if len(matching) == 0 {
			continue
		}
		records = append(records, WearRecord{OutfitID: o.ID, Dates: matching})
	}
	return records
}
