package controllers

import (
	"context"

	"wardrobeapi/languageutil"
	"wardrobeapi/models"
)

type ItemResponse struct {
	models.ClothingItem
	CategoryLabel string `json:"categoryLabel"`
	ColorHex      string `json:"colorHex"`
}

type OutfitResponse struct {
	models.Outfit
	Items []ItemResponse `json:"items"`
}

func newItemResponse(item models.ClothingItem, imageURL string) ItemResponse {
	item = item.Clone()
	item.ImageURL = imageURL
	return ItemResponse{
		ClothingItem:  item,
		CategoryLabel: languageutil.TranslateCategory(item.Category),
		ColorHex:      languageutil.ColorHex(item.Color),
	}
}

func (r *imageResolver) items(ctx context.Context, items []models.ClothingItem) []ItemResponse {
	refs := make([]string, len(items))
	for i, item := range items {
		refs[i] = item.ImageURL
	}
	urls := r.resolveAll(ctx, refs)

	out := make([]ItemResponse, len(items))
	for i, item := range items {
		out[i] = newItemResponse(item, urls[i])
	}
	return out
}

func (r *imageResolver) item(ctx context.Context, item models.ClothingItem) ItemResponse {
	return r.items(ctx, []models.ClothingItem{item})[0]
}

// outfits resolves every cover and item image of the views in one batch.
func (r *imageResolver) outfits(ctx context.Context, views []models.OutfitView) []OutfitResponse {
	var refs []string
	for _, view := range views {
		refs = append(refs, view.ImageURL)
		for _, item := range view.Items {
			refs = append(refs, item.ImageURL)
		}
	}
	urls := r.resolveAll(ctx, refs)

	out := make([]OutfitResponse, len(views))
	next := 0
	for i, view := range views {
		outfit := view.Outfit.Clone()
		outfit.ImageURL = urls[next]
		next++
		items := make([]ItemResponse, len(view.Items))
		for j, item := range view.Items {
			items[j] = newItemResponse(item, urls[next])
			next++
		}
		out[i] = OutfitResponse{Outfit: outfit, Items: items}
	}
	return out
}

func (r *imageResolver) outfit(ctx context.Context, view models.OutfitView) OutfitResponse {
	return r.outfits(ctx, []models.OutfitView{view})[0]
}

func (r *imageResolver) candidates(ctx context.Context, candidates []models.ItemInference) []models.ItemInference {
	refs := make([]string, len(candidates))
	for i, candidate := range candidates {
		refs[i] = candidate.ImageURL
	}
	urls := r.resolveAll(ctx, refs)

	out := make([]models.ItemInference, len(candidates))
	for i, candidate := range candidates {
		candidate.ImageURL = urls[i]
		out[i] = candidate
	}
	return out
}

func (r *imageResolver) recentUploads(ctx context.Context, uploads []models.RecentUpload) []models.RecentUpload {
	refs := make([]string, len(uploads))
	for i, upload := range uploads {
		refs[i] = upload.ImageURL
	}
	urls := r.resolveAll(ctx, refs)

	out := make([]models.RecentUpload, len(uploads))
	for i, upload := range uploads {
		upload.ImageURL = urls[i]
		out[i] = upload
	}
	return out
}
