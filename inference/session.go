package inference

import (
	"sort"
	"strings"
	"sync"
	"time"

	"wardrobeapi/errs"
	"wardrobeapi/languageutil"
	"wardrobeapi/models"
	"wardrobeapi/wardrobe"
)

// CandidatePatch holds the dialog edits of one candidate; nil fields are kept.
type CandidatePatch struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Color    *string `json:"color"`
	ImageURL *string `json:"image_url"`
}

// Session is the state of the multi item confirmation dialog.
type Session struct {
	ID         string
	UserID     string
	Candidates []models.ItemInference
	Page       int
	confirmed  map[int]struct{}
	CreatedAt  time.Time

	// per inferred outfit id: candidates already in the wardrobe and the
	// outfit holding them
	accepted map[string][]string
	outfits  map[string]string

	// held for a whole confirmation, from routing to commit
	confirmMu sync.Mutex
}

type SessionView struct {
	ID         string                 `json:"id"`
	Candidates []models.ItemInference `json:"candidates"`
	Page       int                    `json:"page"`
	Total      int                    `json:"total"`
	Confirmed  []int                  `json:"confirmed"`
	Done       bool                   `json:"done"`
}

func NewSession(id, userID string, candidates []models.ItemInference, now time.Time) *Session {
	return &Session{
		ID:         id,
		UserID:     userID,
		Candidates: append([]models.ItemInference{}, candidates...),
		confirmed:  map[int]struct{}{},
		CreatedAt:  now,
		accepted:   map[string][]string{},
		outfits:    map[string]string{},
	}
}

func (s *Session) checkIndex(index int) error {
	if index < 0 || index >= len(s.Candidates) {
		return errs.Validation("No item at this position")
	}
	return nil
}

// Edit applies patch to the candidate at index. A category or color change
// regenerates the name, replacing any manual name.
func (s *Session) Edit(index int, patch CandidatePatch) (models.ItemInference, error) {
	if err := s.checkIndex(index); err != nil {
		return models.ItemInference{}, err
	}
	if s.IsConfirmed(index) {
		return models.ItemInference{}, errs.Validation("Item already confirmed")
	}

	candidate := s.Candidates[index]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return models.ItemInference{}, errs.Validation("Item name cannot be empty")
		}
		candidate.Name = name
	}
	if patch.ImageURL != nil {
		candidate.ImageURL = *patch.ImageURL
	}
	renamed := false
	if patch.Category != nil && *patch.Category != candidate.Category {
		candidate.Category = *patch.Category
		renamed = true
	}
	if patch.Color != nil && *patch.Color != candidate.Color {
		candidate.Color = *patch.Color
		renamed = true
	}
	if renamed {
		candidate.Name = languageutil.ItemName(candidate.Category, candidate.Color)
	}
	s.Candidates[index] = candidate
	return candidate, nil
}

func (s *Session) GoTo(page int) error {
	if err := s.checkIndex(page); err != nil {
		return err
	}
	s.Page = page
	return nil
}

func (s *Session) Next() bool {
	if s.Page+1 >= len(s.Candidates) {
		return false
	}
	s.Page++
	return true
}

func (s *Session) Prev() bool {
	if s.Page == 0 {
		return false
	}
	s.Page--
	return true
}

func (s *Session) IsConfirmed(index int) bool {
	_, ok := s.confirmed[index]
	return ok
}

// Pending returns the candidate at index when it is still unconfirmed.
func (s *Session) Pending(index int) (models.ItemInference, error) {
	if err := s.checkIndex(index); err != nil {
		return models.ItemInference{}, err
	}
	if s.IsConfirmed(index) {
		return models.ItemInference{}, errs.Validation("Item already confirmed")
	}
	return s.Candidates[index], nil
}

// Remaining lists the indexes of the unconfirmed candidates in order.
func (s *Session) Remaining() []int {
	indexes := []int{}
	for i := range s.Candidates {
		if !s.IsConfirmed(i) {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

// Route routes the candidates at indexes, grouping them with the ones
// accepted by earlier confirmations of this session.
func (s *Session) Route(indexes []int, threshold float64, now time.Time) wardrobe.Intake {
	candidates := make([]models.ItemInference, 0, len(indexes))
	for _, i := range indexes {
		candidates = append(candidates, s.Candidates[i])
	}
	return route(candidates, threshold, now, s.accepted, s.outfits)
}

// Commit marks the candidates at indexes confirmed once applied, the intake
// the wardrobe accepted for them, has been stored.
func (s *Session) Commit(indexes []int, applied wardrobe.Intake) {
	added := make(map[string]struct{}, len(applied.Items))
	for _, item := range applied.Items {
		added[item.ID] = struct{}{}
	}
	for _, i := range indexes {
		s.confirmed[i] = struct{}{}
		candidate := s.Candidates[i]
		if _, ok := added[candidate.ID]; ok && candidate.OutfitID != "" {
			s.accepted[candidate.OutfitID] = append(s.accepted[candidate.OutfitID], candidate.ID)
		}
	}
	for _, group := range applied.Groups {
		s.outfits[group.Name] = group.OutfitID
	}
}

func (s *Session) Done() bool {
	return len(s.confirmed) == len(s.Candidates)
}

func (s *Session) View() SessionView {
	confirmed := make([]int, 0, len(s.confirmed))
	for i := range s.confirmed {
		confirmed = append(confirmed, i)
	}
	sort.Ints(confirmed)
	return SessionView{
		ID:         s.ID,
		Candidates: append([]models.ItemInference{}, s.Candidates...),
		Page:       s.Page,
		Total:      len(s.Candidates),
		Confirmed:  confirmed,
		Done:       s.Done(),
	}
}
