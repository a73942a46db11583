package wardrobe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wardrobeapi/errs"
	"wardrobeapi/models"
	"wardrobeapi/persistence"

	"github.com/sirupsen/logrus"
)

type EventKind string

const (
	// EventChanged follows every applied action.
	EventChanged EventKind = "changed"
	// EventWardrobeUpdate is sent when an outfit detail closes so statistics
	// get recomputed.
	EventWardrobeUpdate EventKind = "wardrobe-update"
)

type Event struct {
	Kind     EventKind `json:"kind"`
	Revision uint64    `json:"revision"`
}

type persistMask uint8

const (
	persistItems persistMask = 1 << iota
	persistOutfits
	persistUploads
	persistTab

	persistNone persistMask = 0
)

type Options struct {
	Notifier Notifier
	Now      func() time.Time
}

// Store is the single owner of a wardrobe State. Every mutation goes through
// a reducer and is written through to the persistence adapter before the
// lock is released.
type Store struct {
	mu       sync.Mutex
	state    State
	revision uint64

	adapter  *persistence.Adapter
	notifier Notifier
	log      *logrus.Entry
	now      func() time.Time

	subMu       sync.Mutex
	subscribers map[int]func(Event)
	nextSubID   int
}

// Open loads the wardrobe from the adapter. Collections that were never
// saved start from the seed items and the example outfits.
func Open(ctx context.Context, adapter *persistence.Adapter, log *logrus.Entry, opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{Log: log}
	}

	s := &Store{
		adapter:     adapter,
		notifier:    opts.Notifier,
		log:         log,
		now:         opts.Now,
		subscribers: map[int]func(Event){},
	}

	items := adapter.LoadClothingItems(ctx)
	if !adapter.HasClothingItems(ctx) {
		items = SeedItems()
		adapter.SaveClothingItems(ctx, items)
		log.Info("seeded wardrobe items")
	}
	outfits := adapter.LoadOutfits(ctx)
	if !adapter.HasOutfits(ctx) {
		outfits = ExampleOutfits(items)
		adapter.SaveOutfits(ctx, outfits)
	}

	tab := adapter.LoadActiveTab(ctx, TabItems)
	if _, err := SetActiveTab(State{}, tab); err != nil {
		tab = TabItems
	}

	s.state = State{
		Items:         items,
		Outfits:       outfits,
		RecentUploads: adapter.LoadRecentUploads(ctx),
		UI: UIState{
			SelectedItemIDs: []string{},
			ActiveTab:       tab,
			TimeRange:       RangeWeek,
		},
	}
	return s
}

func userMessage(err error) string {
	var validation *errs.ValidationError
	if errors.As(err, &validation) {
		return validation.Msg
	}
	return err.Error()
}

func (s *Store) notify(level Level, message string) {
	s.notifier.Notify(Notification{Level: level, Message: message, At: s.now()})
}

// Subscribe registers fn for store events and returns a function removing it.
// fn is called without the store lock held.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) publish(event Event) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(event)
	}
}

func (s *Store) persist(ctx context.Context, state State, mask persistMask) {
	if mask&persistItems != 0 {
		s.adapter.SaveClothingItems(ctx, state.Items)
	}
	if mask&persistOutfits != 0 {
		s.adapter.SaveOutfits(ctx, state.Outfits)
	}
	if mask&persistUploads != 0 {
		s.adapter.SaveRecentUploads(ctx, state.RecentUploads)
	}
	if mask&persistTab != 0 {
		s.adapter.SaveActiveTab(ctx, state.UI.ActiveTab)
	}
}

// apply runs reducer against the current state. On success the new state is
// stored, written through according to mask and announced; success may be nil
// for actions without a confirmation message.
func (s *Store) apply(ctx context.Context, mask persistMask, reducer func(State) (State, error), success func(State) string) error {
	s.mu.Lock()
	next, err := reducer(s.state)
	if err != nil {
		s.mu.Unlock()
		s.log.WithError(err).Debug("action rejected")
		s.notify(LevelError, userMessage(err))
		return err
	}
	s.state = next
	if mask&(persistItems|persistOutfits) != 0 {
		s.revision++
	}
	revision := s.revision
	s.persist(ctx, next, mask)
	s.mu.Unlock()

	if success != nil {
		s.notify(LevelSuccess, success(next))
	}
	s.publish(Event{Kind: EventChanged, Revision: revision})
	return nil
}

// Revision changes whenever items or outfits change or a wardrobe-update
// event is sent.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) Items() []models.ClothingItem {
	return s.Snapshot().Items
}

func (s *Store) Outfits() []models.Outfit {
	return s.Snapshot().Outfits
}

func (s *Store) RecentUploads() []models.RecentUpload {
	return s.Snapshot().RecentUploads
}

func (s *Store) Item(id string) (models.ClothingItem, error) {
	item, ok := s.Snapshot().Item(id)
	if !ok {
		return models.ClothingItem{}, itemNotFound(id)
	}
	return item, nil
}

func (s *Store) OutfitViews() []models.OutfitView {
	state := s.Snapshot()
	return JoinOutfits(state.Outfits, state.Items)
}

func (s *Store) OutfitView(id string) (models.OutfitView, error) {
	state := s.Snapshot()
	outfit, ok := state.Outfit(id)
	if !ok {
		return models.OutfitView{}, outfitNotFound(id)
	}
	return JoinOutfit(outfit, itemLookup(state.Items)), nil
}

// SuggestedOutfits is only available with premium enabled.
func (s *Store) SuggestedOutfits() ([]models.OutfitView, error) {
	state := s.Snapshot()
	if !state.UI.Premium {
		return nil, errs.ErrPremiumRequired
	}
	return JoinOutfits(SuggestOutfits(state.Items), state.Items), nil
}

func (s *Store) RelatedOutfits(itemID string) ([]models.OutfitView, error) {
	state := s.Snapshot()
	if _, ok := state.Item(itemID); !ok {
		return nil, itemNotFound(itemID)
	}
	return JoinOutfits(RelatedOutfits(state, itemID), state.Items), nil
}

func (s *Store) SearchItems(term string) []models.ClothingItem {
	return SearchItems(s.Snapshot(), term)
}

// ActiveTimeRange resolves the current statistics range token.
func (s *Store) ActiveTimeRange() (string, time.Time, time.Time, error) {
	token := s.Snapshot().UI.TimeRange
	start, end, err := ResolveTimeRange(token, s.now())
	return token, start, end, err
}

// WearDates lists the stored wear dates of an outfit; unknown outfits have
// none.
func (s *Store) WearDates(ctx context.Context, outfitID string) []time.Time {
	return s.adapter.LoadOutfitWearDates(ctx, outfitID)
}

// WearDatesInRange reads the stored wear history of every outfit within
// [start, end].
func (s *Store) WearDatesInRange(ctx context.Context, start, end time.Time) []models.WearRecord {
	return s.adapter.GetWearDatesInTimeRange(ctx, start, end)
}

func (s *Store) SetItems(ctx context.Context, items []models.ClothingItem) error {
	return s.apply(ctx, persistItems|persistOutfits, func(st State) (State, error) {
		return ReplaceItems(st, items)
	}, nil)
}

// UpdateItems replaces the items with the result of fn applied to a copy of
// the current items.
func (s *Store) UpdateItems(ctx context.Context, fn func([]models.ClothingItem) []models.ClothingItem) error {
	return s.apply(ctx, persistItems|persistOutfits, func(st State) (State, error) {
		return ReplaceItems(st, fn(st.Clone().Items))
	}, nil)
}

func (s *Store) SetOutfits(ctx context.Context, outfits []models.Outfit) error {
	return s.apply(ctx, persistOutfits, func(st State) (State, error) {
		return ReplaceOutfits(st, outfits)
	}, nil)
}

func (s *Store) UpdateOutfits(ctx context.Context, fn func([]models.Outfit) []models.Outfit) error {
	return s.apply(ctx, persistOutfits, func(st State) (State, error) {
		return ReplaceOutfits(st, fn(st.Clone().Outfits))
	}, nil)
}

func (s *Store) CreateOutfit(ctx context.Context) (models.OutfitView, error) {
	var view models.OutfitView
	err := s.apply(ctx, persistOutfits, func(st State) (State, error) {
		next, err := CreateOutfit(st, s.now())
		if err != nil {
			return next, err
		}
		view = JoinOutfit(next.Outfits[len(next.Outfits)-1], itemLookup(next.Items))
		return next, nil
	}, func(State) string {
		return fmt.Sprintf("Outfit %q created", view.Name)
	})
	return view, err
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	return s.apply(ctx, persistItems|persistOutfits, func(st State) (State, error) {
		return DeleteItem(st, id)
	}, func(State) string { return "Item deleted" })
}

func (s *Store) DeleteOutfit(ctx context.Context, id string) error {
	return s.apply(ctx, persistOutfits, func(st State) (State, error) {
		return DeleteOutfit(st, id)
	}, func(State) string { return "Outfit deleted" })
}

func (s *Store) RenameItem(ctx context.Context, id, name string) (models.ClothingItem, error) {
	var item models.ClothingItem
	err := s.apply(ctx, persistItems, func(st State) (State, error) {
		next, err := RenameItem(st, id, name)
		item, _ = next.Item(id)
		return next, err
	}, func(State) string { return "Item renamed" })
	return item, err
}

func (s *Store) RenameOutfit(ctx context.Context, id, name string) (models.OutfitView, error) {
	var view models.OutfitView
	err := s.apply(ctx, persistOutfits, func(st State) (State, error) {
		next, err := RenameOutfit(st, id, name)
		if outfit, ok := next.Outfit(id); ok {
			view = JoinOutfit(outfit, itemLookup(next.Items))
		}
		return next, err
	}, func(State) string { return "Outfit renamed" })
	return view, err
}

func (s *Store) UpdateItemMetadata(ctx context.Context, id string, patch models.ItemMetadataPatch) (models.ClothingItem, error) {
	var item models.ClothingItem
	err := s.apply(ctx, persistItems, func(st State) (State, error) {
		next, err := UpdateItemMetadata(st, id, patch)
		item, _ = next.Item(id)
		return next, err
	}, func(State) string { return "Item details saved" })
	return item, err
}

// RecordWear adds wear dates to an outfit, creating a placeholder outfit
// for unknown ids. Storage holds the wear history: the dates are merged with
// the stored ones and written with the adapter's outfit upsert. Outfits only
// storage knows are adopted so a later outfit write does not drop them.
func (s *Store) RecordWear(ctx context.Context, outfitID string, dates []time.Time) (models.Outfit, error) {
	s.mu.Lock()
	next, err := RecordWear(s.state, outfitID, dates, s.now())
	if err != nil {
		s.mu.Unlock()
		s.log.WithError(err).Debug("action rejected")
		s.notify(LevelError, userMessage(err))
		return models.Outfit{}, err
	}

	recorded, _ := next.Outfit(outfitID)
	merged := append([]time.Time{}, recorded.WornDates()...)
	merged = models.UniqueDates(append(merged, s.adapter.LoadOutfitWearDates(ctx, outfitID)...))
	s.adapter.SaveOutfitWearDates(ctx, outfitID, merged)

	outfits, _, _ := models.UpsertOutfit(next.Outfits, outfitID, models.OutfitPatch{WornDates: &merged}, s.now())
	outfits, complete := withStoredOutfits(outfits, s.adapter.LoadOutfits(ctx))
	if !complete {
		// storage lost outfits this store still has
		s.adapter.SaveOutfits(ctx, outfits)
	}
	if adopted, err := ReplaceOutfits(next, outfits); err == nil {
		next = adopted
	} else {
		s.log.WithError(err).Warn("stored outfits not adopted")
	}

	s.state = next
	s.revision++
	revision := s.revision
	outfit, _ := next.Outfit(outfitID)
	s.mu.Unlock()

	s.notify(LevelSuccess, "Wear dates saved")
	s.publish(Event{Kind: EventChanged, Revision: revision})
	return outfit, nil
}

// withStoredOutfits appends the stored outfits missing from outfits. complete
// is false when stored lacks one of outfits.
func withStoredOutfits(outfits, stored []models.Outfit) ([]models.Outfit, bool) {
	own := len(outfits)
	known := make(map[string]bool, own)
	for _, o := range outfits {
		known[o.ID] = false
	}
	matched := 0
	for _, o := range stored {
		seen, ok := known[o.ID]
		if !ok {
			outfits = append(outfits, o)
			known[o.ID] = true
			continue
		}
		if !seen {
			known[o.ID] = true
			matched++
		}
	}
	return outfits, matched == own
}

func (s *Store) TogglePremium(ctx context.Context) (bool, error) {
	var premium bool
	err := s.apply(ctx, persistNone, func(st State) (State, error) {
		next, err := TogglePremium(st)
		premium = next.UI.Premium
		return next, err
	}, nil)
	return premium, err
}

func (s *Store) SetTimeRange(ctx context.Context, token string) error {
	return s.apply(ctx, persistNone, func(st State) (State, error) {
		return SetTimeRange(st, token, s.now())
	}, nil)
}

func (s *Store) SetCustomTimeRange(ctx context.Context, start, end time.Time) (string, error) {
	var token string
	err := s.apply(ctx, persistNone, func(st State) (State, error) {
		next, err := SetCustomTimeRange(st, start, end)
		token = next.UI.TimeRange
		return next, err
	}, nil)
	return token, err
}

func (s *Store) OpenItem(ctx context.Context, id string) error {
	return s.apply(ctx, persistNone, func(st State) (State, error) {
		return OpenItem(st, id)
	}, nil)
}

func (s *Store) OpenOutfit(ctx context.Context, id string) error {
	return s.apply(ctx, persistNone, func(st State) (State, error) {
		return OpenOutfit(st, id)
	}, nil)
}

// CloseDetail closes the open item or outfit. Closing an outfit sends the
// wardrobe-update event.
func (s *Store) CloseDetail(ctx context.Context) error {
	s.mu.Lock()
	wasOutfit := s.state.UI.OpenOutfitID != ""
	s.state, _ = CloseDetail(s.state)
	if wasOutfit {
		s.revision++
	}
	revision := s.revision
	s.mu.Unlock()

	s.publish(Event{Kind: EventChanged, Revision: revision})
	if wasOutfit {
		s.publish(Event{Kind: EventWardrobeUpdate, Revision: revision})
	}
	return nil
}

func (s *Store) ToggleItemSelection(ctx context.Context, id string) ([]string, error) {
	var selected []string
	err := s.apply(ctx, persistNone, func(st State) (State, error) {
		next, err := ToggleItemSelection(st, id)
		selected = next.UI.SelectedItemIDs
		return next, err
	}, nil)
	return selected, err
}

func (s *Store) SetNewOutfitName(ctx context.Context, name string) error {
	return s.apply(ctx, persistNone, func(st State) (State, error) {
		return SetNewOutfitName(st, name)
	}, nil)
}

func (s *Store) SetActiveTab(ctx context.Context, tab string) error {
	return s.apply(ctx, persistTab, func(st State) (State, error) {
		return SetActiveTab(st, tab)
	}, nil)
}

func (s *Store) SetSearchTerm(ctx context.Context, term string) error {
	return s.apply(ctx, persistNone, func(st State) (State, error) {
		return SetSearchTerm(st, term)
	}, nil)
}

// Ingest stores the outcome of an inference confirmation.
// Ingest applies an intake and returns it with the outfit id of every group
// filled in.
func (s *Store) Ingest(ctx context.Context, intake Intake) (Intake, error) {
	var applied Intake
	err := s.apply(ctx, persistItems|persistOutfits|persistUploads, func(st State) (State, error) {
		next, result, err := Ingest(st, intake, s.now())
		applied = result
		return next, err
	}, func(State) string {
		return ingestMessage(intake)
	})
	return applied, err
}

func ingestMessage(intake Intake) string {
	switch {
	case len(intake.Items) > 0 && len(intake.Pending) > 0:
		return fmt.Sprintf("%d items added, %d waiting for review", len(intake.Items), len(intake.Pending))
	case len(intake.Pending) > 0:
		return fmt.Sprintf("%d items waiting for review", len(intake.Pending))
	default:
		return fmt.Sprintf("%d items added to your wardrobe", len(intake.Items))
	}
}

func (s *Store) ConfirmRecentUpload(ctx context.Context, id string) (models.ClothingItem, error) {
	var item models.ClothingItem
	err := s.apply(ctx, persistItems|persistUploads, func(st State) (State, error) {
		next, err := ConfirmRecentUpload(st, id)
		item, _ = next.Item(id)
		return next, err
	}, func(State) string { return "Item added to your wardrobe" })
	return item, err
}

func (s *Store) DiscardRecentUpload(ctx context.Context, id string) error {
	return s.apply(ctx, persistUploads, func(st State) (State, error) {
		return DiscardRecentUpload(st, id)
	}, func(State) string { return "Upload discarded" })
}
