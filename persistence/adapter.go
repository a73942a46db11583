// Package persistence serialises the wardrobe collections to a key-value
// store. Reads never fail: missing or malformed data is logged and read as an
// empty collection. Writes are fire and forget: failures are logged,
// reported to sentry and swallowed.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wardrobeapi/kvstore"
	"wardrobeapi/models"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

const (
	KeyClothingItems = "wardrobeClothingItems"
	KeyOutfits       = "wardrobeOutfits"
	KeyRecentUploads = "recentUploadItems"
	KeyActiveTab     = "activeWardrobeTab"
	KeyAuthToken     = "authToken"
)

type Adapter struct {
	store kvstore.Store
	log   *logrus.Entry
	now   func() time.Time
}

func NewAdapter(store kvstore.Store, log *logrus.Entry) *Adapter {
	return &Adapter{store: store, log: log, now: time.Now}
}

// WithClock replaces the clock used to stamp placeholder outfits.
func (a *Adapter) WithClock(now func() time.Time) *Adapter {
	a.now = now
	return a
}

func (a *Adapter) readJSON(ctx context.Context, key string, dst interface{}) bool {
	raw, ok, err := a.store.Get(ctx, key)
	if err != nil {
		a.fail(key, "read", err)
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		a.fail(key, "parse", err)
		return false
	}
	return true
}

func (a *Adapter) writeJSON(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		a.fail(key, "encode", err)
		return
	}
	if err := a.store.Set(ctx, key, string(raw)); err != nil {
		a.fail(key, "write", err)
	}
}

func (a *Adapter) fail(key, op string, err error) {
	a.log.WithFields(logrus.Fields{"key": key, "op": op}).WithError(err).Error("storage error")
	sentry.CaptureException(fmt.Errorf("storage %s %s: %w", op, key, err))
}

func (a *Adapter) LoadClothingItems(ctx context.Context) []models.ClothingItem {
	items := []models.ClothingItem{}
	if !a.readJSON(ctx, KeyClothingItems, &items) || items == nil {
		return []models.ClothingItem{}
	}
	return items
}

func (a *Adapter) SaveClothingItems(ctx context.Context, items []models.ClothingItem) {
	if items == nil {
		items = []models.ClothingItem{}
	}
	a.writeJSON(ctx, KeyClothingItems, items)
}

func (a *Adapter) LoadOutfits(ctx context.Context) []models.Outfit {
	outfits := []models.Outfit{}
	if !a.readJSON(ctx, KeyOutfits, &outfits) || outfits == nil {
		return []models.Outfit{}
	}
	return outfits
}

func (a *Adapter) SaveOutfits(ctx context.Context, outfits []models.Outfit) {
	if outfits == nil {
		outfits = []models.Outfit{}
	}
	a.writeJSON(ctx, KeyOutfits, outfits)
}

// HasClothingItems reports whether an items collection was ever saved,
// as opposed to saved empty.
func (a *Adapter) HasClothingItems(ctx context.Context) bool {
	return a.hasKey(ctx, KeyClothingItems)
}

func (a *Adapter) HasOutfits(ctx context.Context) bool {
	return a.hasKey(ctx, KeyOutfits)
}

func (a *Adapter) hasKey(ctx context.Context, key string) bool {
	_, ok, err := a.store.Get(ctx, key)
	if err != nil {
		a.fail(key, "read", err)
		return false
	}
	return ok
}

func (a *Adapter) LoadRecentUploads(ctx context.Context) []models.RecentUpload {
	uploads := []models.RecentUpload{}
	if !a.readJSON(ctx, KeyRecentUploads, &uploads) || uploads == nil {
		return []models.RecentUpload{}
	}
	return uploads
}

func (a *Adapter) SaveRecentUploads(ctx context.Context, uploads []models.RecentUpload) {
	if uploads == nil {
		uploads = []models.RecentUpload{}
	}
	a.writeJSON(ctx, KeyRecentUploads, uploads)
}

// LoadActiveTab returns the stored tab id, or fallback when none is stored.
func (a *Adapter) LoadActiveTab(ctx context.Context, fallback string) string {
	tab, ok, err := a.store.Get(ctx, KeyActiveTab)
	if err != nil {
		a.fail(KeyActiveTab, "read", err)
		return fallback
	}
	if !ok || tab == "" {
		return fallback
	}
	return tab
}

func (a *Adapter) SaveActiveTab(ctx context.Context, tab string) {
	if err := a.store.Set(ctx, KeyActiveTab, tab); err != nil {
		a.fail(KeyActiveTab, "write", err)
	}
}

// AuthToken returns the stored bearer token or "".
func (a *Adapter) AuthToken(ctx context.Context) string {
	token, _, err := a.store.Get(ctx, KeyAuthToken)
	if err != nil {
		a.fail(KeyAuthToken, "read", err)
		return ""
	}
	return token
}

func (a *Adapter) SaveAuthToken(ctx context.Context, token string) {
	if err := a.store.Set(ctx, KeyAuthToken, token); err != nil {
		a.fail(KeyAuthToken, "write", err)
	}
}

func (a *Adapter) ClearAuthToken(ctx context.Context) {
	if err := a.store.Delete(ctx, KeyAuthToken); err != nil {
		a.fail(KeyAuthToken, "delete", err)
	}
}
