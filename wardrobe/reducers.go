package wardrobe

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"wardrobeapi/errs"
	"wardrobeapi/languageutil"
	"wardrobeapi/models"
)

// Reducers take the current state by value and return the next one without
// modifying the input. They never touch storage; on error the returned state
// must be discarded.

func itemNotFound(id string) error {
	return fmt.Errorf("item %s: %w", id, errs.ErrNotFound)
}

func outfitNotFound(id string) error {
	return fmt.Errorf("outfit %s: %w", id, errs.ErrNotFound)
}

func uploadNotFound(id string) error {
	return fmt.Errorf("recent upload %s: %w", id, errs.ErrNotFound)
}

// nextOutfitID is one more than the largest numeric outfit id. Non numeric
// ids such as placeholder or imported ones are ignored.
func nextOutfitID(outfits []models.Outfit) string {
	max := 0
	for _, o := range outfits {
		if n, err := strconv.Atoi(o.ID); err == nil && n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}

// CreateOutfit appends an outfit made of the selected items under the
// composer name and clears the composer.
func CreateOutfit(s State, now time.Time) (State, error) {
	s = s.Clone()
	name := strings.TrimSpace(s.UI.NewOutfitName)
	if name == "" {
		return s, errs.Validation("Please enter a name for the outfit")
	}
	if len(s.UI.SelectedItemIDs) == 0 {
		return s, errs.Validation("Please select at least one item")
	}

	ids := make([]string, 0, len(s.UI.SelectedItemIDs))
	for _, id := range s.UI.SelectedItemIDs {
		if s.itemIndex(id) < 0 {
			return s, itemNotFound(id)
		}
		ids = append(ids, id)
	}
	first, _ := s.Item(ids[0])

	s.Outfits = append(s.Outfits, models.Outfit{
		ID:        nextOutfitID(s.Outfits),
		Name:      name,
		ItemIDs:   ids,
		ImageURL:  first.ImageURL,
		CreatedAt: now,
		Season:    models.SeasonAllSeasons,
	})
	s.UI.SelectedItemIDs = []string{}
	s.UI.NewOutfitName = ""
	return s, nil
}

// DeleteItem removes the item and strips its id from every outfit. Outfits
// left without items are kept.
func DeleteItem(s State, id string) (State, error) {
	s = s.Clone()
	index := s.itemIndex(id)
	if index < 0 {
		return s, itemNotFound(id)
	}
	s.Items = append(s.Items[:index], s.Items[index+1:]...)

	for i := range s.Outfits {
		s.Outfits[i].ItemIDs = without(s.Outfits[i].ItemIDs, id)
	}
	s.UI.SelectedItemIDs = without(s.UI.SelectedItemIDs, id)
	if s.UI.OpenItemID == id {
		s.UI.OpenItemID = ""
	}
	return s, nil
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}

func DeleteOutfit(s State, id string) (State, error) {
	s = s.Clone()
	index := s.outfitIndex(id)
	if index < 0 {
		return s, outfitNotFound(id)
	}
	s.Outfits = append(s.Outfits[:index], s.Outfits[index+1:]...)
	if s.UI.OpenOutfitID == id {
		s.UI.OpenOutfitID = ""
	}
	return s, nil
}

func RenameItem(s State, id, name string) (State, error) {
	s = s.Clone()
	name = strings.TrimSpace(name)
	if name == "" {
		return s, errs.Validation("Item name cannot be empty")
	}
	index := s.itemIndex(id)
	if index < 0 {
		return s, itemNotFound(id)
	}
	s.Items[index].Name = name
	return s, nil
}

func RenameOutfit(s State, id, name string) (State, error) {
	s = s.Clone()
	name = strings.TrimSpace(name)
	if name == "" {
		return s, errs.Validation("Outfit name cannot be empty")
	}
	index := s.outfitIndex(id)
	if index < 0 {
		return s, outfitNotFound(id)
	}
	s.Outfits[index].Name = name
	return s, nil
}

func UpdateItemMetadata(s State, id string, patch models.ItemMetadataPatch) (State, error) {
	s = s.Clone()
	index := s.itemIndex(id)
	if index < 0 {
		return s, itemNotFound(id)
	}
	s.Items[index].Metadata = patch.Apply(s.Items[index].Metadata)
	return s, nil
}

// RelatedOutfits lists every outfit that contains the item.
func RelatedOutfits(s State, itemID string) []models.Outfit {
	related := []models.Outfit{}
	for _, o := range s.Outfits {
		if o.HasItem(itemID) {
			related = append(related, o.Clone())
		}
	}
	return related
}

// RecordWear adds wear dates to an outfit, creating a placeholder outfit
// when the id is unknown.
func RecordWear(s State, outfitID string, dates []time.Time, now time.Time) (State, error) {
	if strings.TrimSpace(outfitID) == "" {
		return s, errs.Validation("Outfit id is required")
	}
	var existing []time.Time
	if o, ok := s.Outfit(outfitID); ok {
		existing = o.WornDates()
	}
	merged := append(append([]time.Time{}, existing...), dates...)
	s.Outfits, _, _ = models.UpsertOutfit(s.Outfits, outfitID, models.OutfitPatch{WornDates: &merged}, now)
	return s, nil
}

func TogglePremium(s State) (State, error) {
	s.UI.Premium = !s.UI.Premium
	return s, nil
}

func SetTimeRange(s State, token string, now time.Time) (State, error) {
	token = strings.TrimSpace(token)
	if _, _, err := ResolveTimeRange(token, now); err != nil {
		return s, err
	}
	s.UI.TimeRange = token
	return s, nil
}

// SetCustomTimeRange stores the canonical token of [start, end].
func SetCustomTimeRange(s State, start, end time.Time) (State, error) {
	if end.Before(start) {
		return s, errs.Validation("End date must not be before start date")
	}
	s.UI.TimeRange = FormatCustomRange(start, end)
	return s, nil
}

func OpenItem(s State, id string) (State, error) {
	if s.itemIndex(id) < 0 {
		return s, itemNotFound(id)
	}
	s.UI.OpenOutfitID = ""
	s.UI.OpenItemID = id
	return s, nil
}

func OpenOutfit(s State, id string) (State, error) {
	if s.outfitIndex(id) < 0 {
		return s, outfitNotFound(id)
	}
	s.UI.OpenItemID = ""
	s.UI.OpenOutfitID = id
	return s, nil
}

func CloseDetail(s State) (State, error) {
	s.UI.OpenItemID = ""
	s.UI.OpenOutfitID = ""
	return s, nil
}

// ToggleItemSelection adds the item to the composer basket or removes it
// when already selected.
func ToggleItemSelection(s State, id string) (State, error) {
	s = s.Clone()
	for _, selected := range s.UI.SelectedItemIDs {
		if selected == id {
			s.UI.SelectedItemIDs = without(s.UI.SelectedItemIDs, id)
			return s, nil
		}
	}
	if s.itemIndex(id) < 0 {
		return s, itemNotFound(id)
	}
	s.UI.SelectedItemIDs = append(s.UI.SelectedItemIDs, id)
	return s, nil
}

func SetNewOutfitName(s State, name string) (State, error) {
	s.UI.NewOutfitName = name
	return s, nil
}

func SetActiveTab(s State, tab string) (State, error) {
	for _, known := range Tabs {
		if known == tab {
			s.UI.ActiveTab = tab
			return s, nil
		}
	}
	return s, errs.Validation("Unknown tab: " + tab)
}

func SetSearchTerm(s State, term string) (State, error) {
	s.UI.SearchTerm = term
	return s, nil
}

// SearchItems matches the term case-insensitively against the item name,
// category and color, including their italian display names.
func SearchItems(s State, term string) []models.ClothingItem {
	term = strings.ToLower(strings.TrimSpace(term))
	found := []models.ClothingItem{}
	for _, item := range s.Items {
		if term == "" || itemMatches(item, term) {
			found = append(found, item.Clone())
		}
	}
	return found
}

func itemMatches(item models.ClothingItem, term string) bool {
	fields := []string{
		item.Name,
		item.Category,
		item.Color,
		languageutil.TranslateCategory(item.Category),
		languageutil.TranslateColor(item.Color),
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// IntakeGroup is a set of accepted items that arrived as one outfit. With
// OutfitID set the items extend that outfit instead of starting a new one.
type IntakeGroup struct {
	Name     string   `json:"name"`
	ItemIDs  []string `json:"itemIds"`
	OutfitID string   `json:"outfitId,omitempty"`
}

// Intake is the routed result of an inference confirmation.
type Intake struct {
	Items   []models.ClothingItem `json:"items"`
	Groups  []IntakeGroup         `json:"groups"`
	Pending []models.RecentUpload `json:"pending"`
}

// Ingest adds accepted items, creates or extends one outfit per group and
// queues the pending uploads. Duplicate item ids reject the whole intake.
// The returned intake carries the outfit id each group ended up in; groups
// aimed at an outfit that no longer exists are dropped.
func Ingest(s State, intake Intake, now time.Time) (State, Intake, error) {
	s = s.Clone()
	seen := map[string]struct{}{}
	for _, item := range intake.Items {
		if _, dup := seen[item.ID]; dup || s.itemIndex(item.ID) >= 0 {
			return s, Intake{}, errs.Validation("Item " + item.ID + " already exists")
		}
		seen[item.ID] = struct{}{}
	}

	for _, item := range intake.Items {
		s.Items = append(s.Items, item.Clone())
	}

	applied := Intake{Items: intake.Items, Groups: []IntakeGroup{}, Pending: intake.Pending}
	for _, group := range intake.Groups {
		ids := []string{}
		for _, id := range group.ItemIDs {
			if s.itemIndex(id) >= 0 {
				ids = append(ids, id)
			}
		}

		if group.OutfitID != "" {
			index := s.outfitIndex(group.OutfitID)
			if index < 0 {
				continue
			}
			outfit := &s.Outfits[index]
			for _, id := range ids {
				if !containsID(outfit.ItemIDs, id) {
					outfit.ItemIDs = append(outfit.ItemIDs, id)
				}
			}
			if outfit.ImageURL == "" && len(outfit.ItemIDs) > 0 {
				first, _ := s.Item(outfit.ItemIDs[0])
				outfit.ImageURL = first.ImageURL
			}
			applied.Groups = append(applied.Groups, IntakeGroup{Name: group.Name, ItemIDs: ids, OutfitID: outfit.ID})
			continue
		}

		if len(ids) == 0 {
			continue
		}
		first, _ := s.Item(ids[0])
		id := nextOutfitID(s.Outfits)
		s.Outfits = append(s.Outfits, models.Outfit{
			ID:        id,
			Name:      group.Name,
			ItemIDs:   ids,
			ImageURL:  first.ImageURL,
			CreatedAt: now,
			Season:    models.SeasonAllSeasons,
		})
		applied.Groups = append(applied.Groups, IntakeGroup{Name: group.Name, ItemIDs: ids, OutfitID: id})
	}

	for _, upload := range intake.Pending {
		if s.uploadIndex(upload.ID) >= 0 {
			continue
		}
		s.RecentUploads = append(s.RecentUploads, upload)
	}
	return s, applied, nil
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// ConfirmRecentUpload moves a pending upload into the wardrobe as an item.
func ConfirmRecentUpload(s State, id string) (State, error) {
	s = s.Clone()
	index := s.uploadIndex(id)
	if index < 0 {
		return s, uploadNotFound(id)
	}
	upload := s.RecentUploads[index]
	if s.itemIndex(upload.ID) >= 0 {
		return s, errs.Validation("Item " + upload.ID + " already exists")
	}
	s.Items = append(s.Items, upload.ToClothingItem())
	s.RecentUploads = append(s.RecentUploads[:index], s.RecentUploads[index+1:]...)
	return s, nil
}

func DiscardRecentUpload(s State, id string) (State, error) {
	s = s.Clone()
	index := s.uploadIndex(id)
	if index < 0 {
		return s, uploadNotFound(id)
	}
	s.RecentUploads = append(s.RecentUploads[:index], s.RecentUploads[index+1:]...)
	return s, nil
}

// ReplaceItems swaps the whole item collection. Ids that disappear are
// stripped from outfits and the selection like an explicit delete.
func ReplaceItems(s State, items []models.ClothingItem) (State, error) {
	s = s.Clone()
	seen := map[string]struct{}{}
	next := make([]models.ClothingItem, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			return s, errs.Validation("Duplicate item id " + item.ID)
		}
		seen[item.ID] = struct{}{}
		next = append(next, item.Clone())
	}

	for _, item := range s.Items {
		if _, kept := seen[item.ID]; kept {
			continue
		}
		for i := range s.Outfits {
			s.Outfits[i].ItemIDs = without(s.Outfits[i].ItemIDs, item.ID)
		}
		s.UI.SelectedItemIDs = without(s.UI.SelectedItemIDs, item.ID)
		if s.UI.OpenItemID == item.ID {
			s.UI.OpenItemID = ""
		}
	}
	s.Items = next
	return s, nil
}

// ReplaceOutfits swaps the whole outfit collection, dropping item ids that do
// not resolve to an item.
func ReplaceOutfits(s State, outfits []models.Outfit) (State, error) {
	s = s.Clone()
	seen := map[string]struct{}{}
	next := make([]models.Outfit, 0, len(outfits))
	for _, o := range outfits {
		if _, dup := seen[o.ID]; dup {
			return s, errs.Validation("Duplicate outfit id " + o.ID)
		}
		seen[o.ID] = struct{}{}
		o = o.Clone()
		ids := make([]string, 0, len(o.ItemIDs))
		for _, id := range o.ItemIDs {
			if s.itemIndex(id) >= 0 {
				ids = append(ids, id)
			}
		}
		o.ItemIDs = ids
		next = append(next, o)
	}
	if _, ok := seen[s.UI.OpenOutfitID]; !ok {
		s.UI.OpenOutfitID = ""
	}
	s.Outfits = next
	return s, nil
}
