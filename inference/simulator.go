// Package inference simulates photo classification: an upload is turned
// into candidate items after a fixed delay, and confirmation routes each
// candidate into the wardrobe or the recent uploads queue by confidence.
package inference

import (
	"context"
	"hash/fnv"
	"path/filepath"
	"strings"
	"time"

	"wardrobeapi/errs"
	"wardrobeapi/languageutil"
	"wardrobeapi/models"

	"github.com/gofrs/uuid/v5"
)

const DefaultDelay = 1500 * time.Millisecond

type Upload struct {
	FileName string `json:"file_name"`
	ImageURL string `json:"image_url"`
	// Multiple asks for every garment in the photo, grouped as one outfit.
	Multiple bool `json:"multiple"`
}

type guess struct {
	category string
	color    string
}

// keywords looked up in the file name, first match wins
var categoryKeywords = []string{
	"t-shirt", "tshirt", "shirt", "blouse", "sweater", "hoodie", "jacket", "coat",
	"jeans", "trousers", "pants", "shorts", "skirt", "dress",
	"sneakers", "boots", "sandals", "shoes", "bag", "hat", "scarf", "belt",
}

var colorKeywords = []string{
	"white", "black", "red", "navy", "blue", "green", "yellow", "gray", "grey",
	"brown", "beige", "pink", "purple", "orange",
}

var defaultGuess = guess{category: "t-shirt", color: "white"}

// multipleGuesses is what a full outfit photo is read as.
var multipleGuesses = []guess{
	{category: "shirt", color: "blue"},
	{category: "jeans", color: "blue"},
	{category: "sneakers", color: "white"},
}

type Simulator struct {
	Delay time.Duration
	// Confidence fabricates the score of the i-th candidate of an upload.
	Confidence func(upload Upload, i int) float64
	NewID      func() string
}

func NewSimulator(delay time.Duration) *Simulator {
	return &Simulator{
		Delay:      delay,
		Confidence: HashConfidence,
		NewID:      NewID,
	}
}

func NewID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// HashConfidence derives a stable score in [0.60, 0.99] from the file name,
// so the same photo always routes the same way.
func HashConfidence(upload Upload, i int) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(upload.FileName))
	_, _ = h.Write([]byte{byte(i)})
	return 0.6 + float64(h.Sum32()%40)/100
}

// Infer waits for the configured delay and returns the candidates for the
// upload. It returns early with the context error when ctx is done.
func (s *Simulator) Infer(ctx context.Context, upload Upload) ([]models.ItemInference, error) {
	if strings.TrimSpace(upload.FileName) == "" && strings.TrimSpace(upload.ImageURL) == "" {
		return nil, errs.Validation("Please choose a photo to upload")
	}

	timer := time.NewTimer(s.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	if !upload.Multiple {
		return []models.ItemInference{s.candidate(upload, guessFromName(upload.FileName), 0, "")}, nil
	}

	outfitID := "outfit-" + strings.SplitN(s.NewID(), "-", 2)[0]
	candidates := make([]models.ItemInference, 0, len(multipleGuesses))
	for i, g := range multipleGuesses {
		candidates = append(candidates, s.candidate(upload, g, i, outfitID))
	}
	return candidates, nil
}

func (s *Simulator) candidate(upload Upload, g guess, i int, outfitID string) models.ItemInference {
	return models.ItemInference{
		ID:         s.NewID(),
		Name:       languageutil.ItemName(g.category, g.color),
		Category:   g.category,
		Color:      g.color,
		ImageURL:   upload.ImageURL,
		Confidence: s.Confidence(upload, i),
		OutfitID:   outfitID,
	}
}

func guessFromName(fileName string) guess {
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName)))
	g := defaultGuess
	for _, keyword := range categoryKeywords {
		if strings.Contains(base, keyword) {
			g.category = keyword
			break
		}
	}
	for _, keyword := range colorKeywords {
		if strings.Contains(base, keyword) {
			g.color = keyword
			break
		}
	}
	return g
}
