package controllers

import (
	"net/http"
	"testing"

	"wardrobeapi/test"
	"wardrobeapi/wardrobe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionOpensOneDetailAtATime(t *testing.T) {
	s := newTestServer(t, 0.9)

	rec := s.do(test.NewJSONAuthRequest(http.MethodPost, "/wardrobe/selection/items/1", "1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var state StateOut
	decode(t, rec, &state)
	require.NotNil(t, state.OpenItem)
	assert.Equal(t, "1", state.OpenItem.ID)
	assert.Nil(t, state.OpenOutfit)

	rec = s.do(test.NewJSONAuthRequest(http.MethodPost, "/wardrobe/selection/outfits/1", "1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	state = StateOut{}
	decode(t, rec, &state)
	assert.Nil(t, state.OpenItem)
	require.NotNil(t, state.OpenOutfit)
	assert.Equal(t, "1", state.OpenOutfit.ID)
	revision := state.Revision

	rec = s.do(test.NewJSONAuthRequest(http.MethodDelete, "/wardrobe/selection", "1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	state = StateOut{}
	decode(t, rec, &state)
	assert.Nil(t, state.OpenOutfit)
	assert.Greater(t, state.Revision, revision)
}

func TestOpenUnknownItem(t *testing.T) {
	s := newTestServer(t, 0.9)

	rec := s.do(test.NewJSONAuthRequest(http.MethodPost, "/wardrobe/selection/items/404", "1", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetActiveTab(t *testing.T) {
	s := newTestServer(t, 0.9)

	rec := s.do(test.NewJSONAuthRequest(http.MethodPut, "/wardrobe/ui/tab", "1", TabIn{Tab: "closet"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(test.NewJSONAuthRequest(http.MethodPut, "/wardrobe/ui/tab", "1", TabIn{Tab: wardrobe.TabStats}))
	require.Equal(t, http.StatusOK, rec.Code)

	var state StateOut
	decode(t, s.do(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/state", "1", nil)), &state)
	assert.Equal(t, wardrobe.TabStats, state.UI.ActiveTab)
	assert.Equal(t, wardrobe.Tabs, state.AvailableTabs)
}

func TestSearchTermIsKept(t *testing.T) {
	s := newTestServer(t, 0.9)

	rec := s.do(test.NewJSONAuthRequest(http.MethodPut, "/wardrobe/ui/search", "1", SearchIn{Term: "sneakers"}))
	require.Equal(t, http.StatusOK, rec.Code)
	var items []ItemResponse
	decode(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "3", items[0].ID)

	var state StateOut
	decode(t, s.do(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/state", "1", nil)), &state)
	assert.Equal(t, "sneakers", state.UI.SearchTerm)
}

func TestComposerToggleAndName(t *testing.T) {
	s := newTestServer(t, 0.9)

	rec := s.do(test.NewJSONAuthRequest(http.MethodPost, "/wardrobe/composer/items/2", "1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var selection map[string][]string
	decode(t, rec, &selection)
	assert.Equal(t, []string{"2"}, selection["selectedItemIds"])

	rec = s.do(test.NewJSONAuthRequest(http.MethodPost, "/wardrobe/composer/items/2", "1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &selection)
	assert.Empty(t, selection["selectedItemIds"])

	rec = s.do(test.NewJSONAuthRequest(http.MethodPut, "/wardrobe/composer/name", "1", ComposerNameIn{Name: "Sunday"}))
	require.Equal(t, http.StatusOK, rec.Code)

	var state StateOut
	decode(t, s.do(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/state", "1", nil)), &state)
	assert.Equal(t, "Sunday", state.UI.NewOutfitName)
}

func TestNotificationsAreDrained(t *testing.T) {
	s := newTestServer(t, 0.9)

	s.do(test.NewJSONAuthRequest(http.MethodDelete, "/wardrobe/items/6", "1", nil))

	var notifications []wardrobe.Notification
	decode(t, s.do(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/notifications", "1", nil)), &notifications)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Item deleted", notifications[0].Message)

	decode(t, s.do(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/notifications", "1", nil)), &notifications)
	assert.Empty(t, notifications)
}
