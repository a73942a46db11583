package inference

import (
	"context"
	"time"

	"wardrobeapi/models"
	"wardrobeapi/wardrobe"
)

const DefaultThreshold = 0.75

// Route splits candidates by confidence. Candidates at or above threshold
// become items; at least two accepted candidates sharing an outfit id also
// become an outfit named after that id. The rest wait as recent uploads.
func Route(candidates []models.ItemInference, threshold float64, now time.Time) wardrobe.Intake {
	return route(candidates, threshold, now, nil, nil)
}

// route is Route with the memory of earlier confirmations of the same upload:
// accepted lists, per inferred outfit id, the candidates already added to the
// wardrobe and outfits the wardrobe outfit created for them. A group counts
// its earlier members towards the two needed for an outfit and joins the
// existing outfit once there is one.
func route(candidates []models.ItemInference, threshold float64, now time.Time, accepted map[string][]string, outfits map[string]string) wardrobe.Intake {
	intake := wardrobe.Intake{
		Items:   []models.ClothingItem{},
		Pending: []models.RecentUpload{},
	}

	var groupOrder []string
	groups := map[string][]string{}
	for _, candidate := range candidates {
		if candidate.Confidence < threshold {
			intake.Pending = append(intake.Pending, candidate.ToRecentUpload(now))
			continue
		}
		intake.Items = append(intake.Items, candidate.ToClothingItem())
		if candidate.OutfitID == "" {
			continue
		}
		if _, seen := groups[candidate.OutfitID]; !seen {
			groupOrder = append(groupOrder, candidate.OutfitID)
		}
		groups[candidate.OutfitID] = append(groups[candidate.OutfitID], candidate.ID)
	}

	for _, outfitID := range groupOrder {
		ids := groups[outfitID]
		if existing, ok := outfits[outfitID]; ok {
			intake.Groups = append(intake.Groups, wardrobe.IntakeGroup{Name: outfitID, ItemIDs: ids, OutfitID: existing})
			continue
		}
		members := append(append([]string{}, accepted[outfitID]...), ids...)
		if len(members) >= 2 {
			intake.Groups = append(intake.Groups, wardrobe.IntakeGroup{Name: outfitID, ItemIDs: members})
		}
	}
	return intake
}

// Confirm routes the candidates and stores the result in the wardrobe.
func Confirm(ctx context.Context, store *wardrobe.Store, candidates []models.ItemInference, threshold float64, now time.Time) (wardrobe.Intake, error) {
	return store.Ingest(ctx, Route(candidates, threshold, now))
}
