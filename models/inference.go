package models

import "time"

// ItemInference is a classification candidate that only lives during the
// upload and confirm flow.
type ItemInference struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Color      string  `json:"color"`
	ImageURL   string  `json:"imageUrl"`
	Confidence float64 `json:"confidence"`
	OutfitID   string  `json:"outfitId,omitempty"`
}

func (i ItemInference) ToClothingItem() ClothingItem {
	return ClothingItem{
		ID:       i.ID,
		Name:     i.Name,
		Category: i.Category,
		Color:    i.Color,
		ImageURL: i.ImageURL,
	}
}

func (i ItemInference) ToRecentUpload(createdAt time.Time) RecentUpload {
	return RecentUpload{
		ID:         i.ID,
		Name:       i.Name,
		Category:   i.Category,
		Color:      i.Color,
		ImageURL:   i.ImageURL,
		Confidence: i.Confidence,
		OutfitID:   i.OutfitID,
		CreatedAt:  createdAt,
	}
}

// RecentUpload is a low confidence inference waiting for manual confirmation.
type RecentUpload struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Color      string    `json:"color"`
	ImageURL   string    `json:"imageUrl"`
	Confidence float64   `json:"confidence"`
	OutfitID   string    `json:"outfitId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (r RecentUpload) ToClothingItem() ClothingItem {
	return ClothingItem{
		ID:       r.ID,
		Name:     r.Name,
		Category: r.Category,
		Color:    r.Color,
		ImageURL: r.ImageURL,
	}
}
