package wardrobe

import (
	"fmt"
	"strings"

	"wardrobeapi/models"
)

const maxSuggestions = 6

type bucket int

const (
	bucketOther bucket = iota
	bucketTop
	bucketBottom
	bucketFull
	bucketShoes
	bucketOuterwear
	bucketAccessory
)

var categoryBuckets = map[string]bucket{
	"t-shirt":     bucketTop,
	"tshirt":      bucketTop,
	"shirt":       bucketTop,
	"top":         bucketTop,
	"blouse":      bucketTop,
	"sweater":     bucketTop,
	"hoodie":      bucketTop,
	"jeans":       bucketBottom,
	"pants":       bucketBottom,
	"trousers":    bucketBottom,
	"shorts":      bucketBottom,
	"skirt":       bucketBottom,
	"dress":       bucketFull,
	"shoes":       bucketShoes,
	"sneakers":    bucketShoes,
	"boots":       bucketShoes,
	"sandals":     bucketShoes,
	"jacket":      bucketOuterwear,
	"coat":        bucketOuterwear,
	"bag":         bucketAccessory,
	"hat":         bucketAccessory,
	"scarf":       bucketAccessory,
	"belt":        bucketAccessory,
	"accessory":   bucketAccessory,
	"accessories": bucketAccessory,
}

func bucketOf(category string) bucket {
	return categoryBuckets[strings.ToLower(strings.TrimSpace(category))]
}

func pick(items []models.ClothingItem, i int) (models.ClothingItem, bool) {
	if len(items) == 0 {
		return models.ClothingItem{}, false
	}
	return items[i%len(items)], true
}

// SuggestOutfits derives outfit suggestions from the items. The result only
// depends on the items and their order, so it is recomputed instead of
// stored. Tops are paired with bottoms, dresses stand on their own, and both
// get shoes and an accessory when the wardrobe has them.
func SuggestOutfits(items []models.ClothingItem) []models.Outfit {
	groups := map[bucket][]models.ClothingItem{}
	for _, item := range items {
		b := bucketOf(item.Category)
		groups[b] = append(groups[b], item)
	}

	var combos [][]models.ClothingItem
	if len(groups[bucketBottom]) > 0 {
		for i, top := range groups[bucketTop] {
			bottom, _ := pick(groups[bucketBottom], i)
			combo := []models.ClothingItem{top, bottom}
			if outer, ok := pick(groups[bucketOuterwear], i); ok && i%2 == 1 {
				combo = append(combo, outer)
			}
			if shoes, ok := pick(groups[bucketShoes], i); ok {
				combo = append(combo, shoes)
			}
			combos = append(combos, combo)
		}
	}
	for i, dress := range groups[bucketFull] {
		combo := []models.ClothingItem{dress}
		if shoes, ok := pick(groups[bucketShoes], i); ok {
			combo = append(combo, shoes)
		}
		if accessory, ok := pick(groups[bucketAccessory], i); ok {
			combo = append(combo, accessory)
		}
		combos = append(combos, combo)
	}

	suggestions := []models.Outfit{}
	for i, combo := range combos {
		if i == maxSuggestions {
			break
		}
		ids := make([]string, 0, len(combo))
		for _, item := range combo {
			ids = append(ids, item.ID)
		}
		suggestions = append(suggestions, models.Outfit{
			ID:       fmt.Sprintf("suggested-%d", i+1),
			Name:     fmt.Sprintf("Suggested Look %d", i+1),
			ItemIDs:  ids,
			ImageURL: combo[0].ImageURL,
			Season:   models.SeasonAllSeasons,
		})
	}
	return suggestions
}
