package wardrobe

import (
	"time"

	"wardrobeapi/languageutil"
	"wardrobeapi/models"
)

var seedCreatedAt = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

func seedItem(id, category, color, image string) models.ClothingItem {
	return models.ClothingItem{
		ID:       id,
		Name:     languageutil.ItemName(category, color),
		Category: category,
		Color:    color,
		ImageURL: image,
	}
}

// SeedItems is the wardrobe a user starts with before anything is saved.
func SeedItems() []models.ClothingItem {
	return []models.ClothingItem{
		seedItem("1", "t-shirt", "white", "/images/seed/tshirt-white.jpg"),
		seedItem("2", "jeans", "blue", "/images/seed/jeans-blue.jpg"),
		seedItem("3", "sneakers", "white", "/images/seed/sneakers-white.jpg"),
		seedItem("4", "jacket", "black", "/images/seed/jacket-black.jpg"),
		seedItem("5", "dress", "red", "/images/seed/dress-red.jpg"),
		seedItem("6", "bag", "brown", "/images/seed/bag-brown.jpg"),
	}
}

type exampleOutfit struct {
	id, name, season string
	itemIDs          []string
}

var exampleOutfits = []exampleOutfit{
	{id: "1", name: "Casual Weekend", season: "Spring", itemIDs: []string{"1", "2", "3"}},
	{id: "2", name: "Evening Out", season: "Summer", itemIDs: []string{"5", "6"}},
	{id: "3", name: "City Layers", season: "Autumn", itemIDs: []string{"1", "4", "2", "3"}},
}

// ExampleOutfits builds the starter outfits from the seed items present in
// items. Seed ids the user no longer has are left out.
func ExampleOutfits(items []models.ClothingItem) []models.Outfit {
	lookup := itemLookup(items)
	outfits := []models.Outfit{}
	for _, example := range exampleOutfits {
		ids := []string{}
		for _, id := range example.itemIDs {
			if _, ok := lookup[id]; ok {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}
		outfits = append(outfits, models.Outfit{
			ID:        example.id,
			Name:      example.name,
			ItemIDs:   ids,
			ImageURL:  lookup[ids[0]].ImageURL,
			CreatedAt: seedCreatedAt,
			Season:    example.season,
		})
	}
	return outfits
}
