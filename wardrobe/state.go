// Package wardrobe owns the per-user wardrobe state: items, outfits, recent
// uploads and the UI selection. All mutations are pure reducers over State,
// applied by a Store that writes the result through to persistence.
package wardrobe

import (
	"wardrobeapi/models"
)

const (
	TabItems     = "items"
	TabOutfits   = "outfits"
	TabSuggested = "suggested"
	TabStats     = "stats"
	TabUploads   = "uploads"
)

var Tabs = []string{TabItems, TabOutfits, TabSuggested, TabStats, TabUploads}

// UIState is the ephemeral selection state. OpenItemID and OpenOutfitID are
// never both set.
type UIState struct {
	OpenItemID      string   `json:"openItemId,omitempty"`
	OpenOutfitID    string   `json:"openOutfitId,omitempty"`
	SelectedItemIDs []string `json:"selectedItemIds"`
	NewOutfitName   string   `json:"newOutfitName"`
	ActiveTab       string   `json:"activeTab"`
	SearchTerm      string   `json:"searchTerm"`
	TimeRange       string   `json:"timeRange"`
	Premium         bool     `json:"premium"`
}

type State struct {
	Items         []models.ClothingItem `json:"items"`
	Outfits       []models.Outfit       `json:"outfits"`
	RecentUploads []models.RecentUpload `json:"recentUploads"`
	UI            UIState               `json:"ui"`
}

// Clone deep copies the collections so a reducer can never alias the
// state held by the store.
func (s State) Clone() State {
	next := s
	next.Items = make([]models.ClothingItem, 0, len(s.Items))
	for _, item := range s.Items {
		next.Items = append(next.Items, item.Clone())
	}
	next.Outfits = make([]models.Outfit, 0, len(s.Outfits))
	for _, outfit := range s.Outfits {
		next.Outfits = append(next.Outfits, outfit.Clone())
	}
	next.RecentUploads = append([]models.RecentUpload{}, s.RecentUploads...)
	next.UI.SelectedItemIDs = append([]string{}, s.UI.SelectedItemIDs...)
	return next
}

func (s State) itemIndex(id string) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s State) outfitIndex(id string) int {
	for i := range s.Outfits {
		if s.Outfits[i].ID == id {
			return i
		}
	}
	return -1
}

func (s State) uploadIndex(id string) int {
	for i := range s.RecentUploads {
		if s.RecentUploads[i].ID == id {
			return i
		}
	}
	return -1
}

func (s State) Item(id string) (models.ClothingItem, bool) {
	if i := s.itemIndex(id); i >= 0 {
		return s.Items[i], true
	}
	return models.ClothingItem{}, false
}

func (s State) Outfit(id string) (models.Outfit, bool) {
	if i := s.outfitIndex(id); i >= 0 {
		return s.Outfits[i], true
	}
	return models.Outfit{}, false
}

func itemLookup(items []models.ClothingItem) map[string]models.ClothingItem {
	lookup := make(map[string]models.ClothingItem, len(items))
	for _, item := range items {
		lookup[item.ID] = item
	}
	return lookup
}

// JoinOutfit resolves the outfit's item ids against the item collection.
// Ids of items that no longer exist are skipped.
func JoinOutfit(outfit models.Outfit, lookup map[string]models.ClothingItem) models.OutfitView {
	view := models.OutfitView{Outfit: outfit, Items: []models.ClothingItem{}}
	for _, id := range outfit.ItemIDs {
		if item, ok := lookup[id]; ok {
			view.Items = append(view.Items, item.Clone())
		}
	}
	return view
}

func JoinOutfits(outfits []models.Outfit, items []models.ClothingItem) []models.OutfitView {
	lookup := itemLookup(items)
	views := make([]models.OutfitView, 0, len(outfits))
	for _, outfit := range outfits {
		views = append(views, JoinOutfit(outfit, lookup))
	}
	return views
}
