package controllers

import (
	"net/http"
	"testing"

	"wardrobeapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListItemsReturnsSeedWithDisplayFields(t *testing.T) {
	s := newTestServer(t, 0.9)

	rec := s.do(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/items", "1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []ItemResponse
	decode(t, rec, &items)
	require.Len(t, items, 6)
	for _, item := range items {
		assert.NotEmpty(t, item.CategoryLabel, item.ID)
		assert.NotEmpty(t, item.ColorHex, item.ID)
	}
}

func TestListItemsFiltersBySearchTerm(t *testing.T) {
	s := newTestServer(t, 0.9)

	rec := s.do(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/items?q=JEANS", "1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []ItemResponse
	decode(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].ID)
}

func TestGetUnknownItem(t *testing.T) {
	s := newTestServer(t, 0.9)

	rec := s.do(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/items/404", "1", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenameItemShowsInOutfits(t *testing.T) {
	s := newTestServer(t, 0.9)

	rec := s.do(test.NewJSONAuthRequest(http.MethodPatch, "/wardrobe/items/1/name", "1", ItemNameIn{Name: "  Favourite tee "}))
	require.Equal(t, http.StatusOK, rec.Code)
	var item ItemResponse
	decode(t, rec, &item)
	assert.Equal(t, "Favourite tee", item.Name)

	rec = s.do(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/outfits/1", "1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var outfit OutfitResponse
	decode(t, rec, &outfit)
	require.NotEmpty(t, outfit.Items)
	assert.Equal(t, "1", outfit.Items[0].ID)
	assert.Equal(t, "Favourite tee", outfit.Items[0].Name)
}

func TestRenameItemRejectsBlankName(t *testing.T) {
	s := newTestServer(t, 0.9)

	rec := s.do(test.NewJSONAuthRequest(http.MethodPatch, "/wardrobe/items/1/name", "1", ItemNameIn{Name: "   "}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Item name cannot be empty", errorMessage(t, rec))
}

func TestUpdateItemMetadata(t *testing.T) {
	s := newTestServer(t, 0.9)

	rec := s.do(test.NewJSONAuthRequestRaw(http.MethodPatch, "/wardrobe/items/2/metadata", "1", `{"brand":"Levi's","material":"denim"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var item ItemResponse
	decode(t, rec, &item)
	require.NotNil(t, item.Metadata)
	assert.Equal(t, "Levi's", item.Metadata.Brand)
	assert.Equal(t, "denim", item.Metadata.Material)
}

func TestDeleteItemStripsItFromOutfits(t *testing.T) {
	s := newTestServer(t, 0.9)

	rec := s.do(test.NewJSONAuthRequest(http.MethodDelete, "/wardrobe/items/1", "1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var outfits []OutfitResponse
	decode(t, s.do(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/outfits", "1", nil)), &outfits)
	for _, outfit := range outfits {
		assert.NotContains(t, outfit.ItemIDs, "1", outfit.ID)
	}

	rec = s.do(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/items/1/outfits", "1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRelatedOutfits(t *testing.T) {
	s := newTestServer(t, 0.9)

	rec := s.do(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/items/5/outfits", "1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var outfits []OutfitResponse
	decode(t, rec, &outfits)
	require.Len(t, outfits, 1)
	assert.Equal(t, "2", outfits[0].ID)
}
