// Package stats summarises how a wardrobe is worn over the active time range.
package stats

import (
	"sort"
	"time"

	"wardrobeapi/languageutil"
	"wardrobeapi/models"
	"wardrobeapi/wardrobe"
)

const topItemsLimit = 5

type OutfitWear struct {
	OutfitID string    `json:"outfitId"`
	Name     string    `json:"name"`
	Count    int       `json:"count"`
	LastWorn time.Time `json:"lastWorn"`
}

type ItemWear struct {
	ItemID string `json:"itemId"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

type CategoryShare struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
}

type ColorShare struct {
	Color string `json:"color"`
	Hex   string `json:"hex"`
	Count int    `json:"count"`
}

type Summary struct {
	TimeRange  string                `json:"timeRange"`
	Start      time.Time             `json:"start"`
	End        time.Time             `json:"end"`
	Revision   uint64                `json:"revision"`
	TotalWears int                   `json:"totalWears"`
	Outfits    []OutfitWear          `json:"outfits"`
	TopItems   []ItemWear            `json:"topItems"`
	Categories []CategoryShare       `json:"categories"`
	Colors     []ColorShare          `json:"colors"`
	NeverWorn  []models.ClothingItem `json:"neverWorn"`
}

// Compute builds the summary from a wardrobe snapshot and the wear records
// of the range. Ties are broken by name so the output is stable.
func Compute(state wardrobe.State, records []models.WearRecord) Summary {
	outfits := map[string]models.Outfit{}
	for _, o := range state.Outfits {
		outfits[o.ID] = o
	}
	items := map[string]models.ClothingItem{}
	for _, item := range state.Items {
		items[item.ID] = item
	}

	summary := Summary{
		Outfits:    []OutfitWear{},
		TopItems:   []ItemWear{},
		Categories: []CategoryShare{},
		Colors:     []ColorShare{},
		NeverWorn:  []models.ClothingItem{},
	}

	itemCounts := map[string]int{}
	for _, record := range records {
		count := len(record.Dates)
		summary.TotalWears += count

		wear := OutfitWear{OutfitID: record.OutfitID, Count: count}
		for _, d := range record.Dates {
			if d.After(wear.LastWorn) {
				wear.LastWorn = d
			}
		}
		if outfit, ok := outfits[record.OutfitID]; ok {
			wear.Name = outfit.Name
			for _, id := range outfit.ItemIDs {
				if _, exists := items[id]; exists {
					itemCounts[id] += count
				}
			}
		}
		summary.Outfits = append(summary.Outfits, wear)
	}
	sort.SliceStable(summary.Outfits, func(i, j int) bool {
		a, b := summary.Outfits[i], summary.Outfits[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})

	for id, count := range itemCounts {
		summary.TopItems = append(summary.TopItems, ItemWear{ItemID: id, Name: items[id].Name, Count: count})
	}
	sort.Slice(summary.TopItems, func(i, j int) bool {
		a, b := summary.TopItems[i], summary.TopItems[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ItemID < b.ItemID
	})
	if len(summary.TopItems) > topItemsLimit {
		summary.TopItems = summary.TopItems[:topItemsLimit]
	}

	categoryCounts := map[string]int{}
	colorCounts := map[string]int{}
	for _, item := range state.Items {
		categoryCounts[item.Category]++
		colorCounts[item.Color]++
		if _, worn := itemCounts[item.ID]; !worn {
			summary.NeverWorn = append(summary.NeverWorn, item.Clone())
		}
	}
	for category, count := range categoryCounts {
		summary.Categories = append(summary.Categories, CategoryShare{
			Category: category,
			Label:    languageutil.TranslateCategory(category),
			Count:    count,
		})
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		a, b := summary.Categories[i], summary.Categories[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Category < b.Category
	})
	for color, count := range colorCounts {
		summary.Colors = append(summary.Colors, ColorShare{Color: color, Hex: languageutil.ColorHex(color), Count: count})
	}
	sort.Slice(summary.Colors, func(i, j int) bool {
		a, b := summary.Colors[i], summary.Colors[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Color < b.Color
	})
	return summary
}
