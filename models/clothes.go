package models

// ItemMetadata is optional detail the user can fill in after an item is created.
type ItemMetadata struct {
	DateTaken string `json:"dateTaken,omitempty"`
	Brand     string `json:"brand,omitempty"`
	Material  string `json:"material,omitempty"`
	Season    string `json:"season,omitempty"`
}

type ClothingItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"` // free text, e.g. t-shirt, jeans, sneakers
	Color    string `json:"color"`
	// object key in the bucket (clothes/...) or an absolute/local url
	ImageURL string        `json:"imageUrl"`
	Metadata *ItemMetadata `json:"metadata,omitempty"`
}

// Clone returns a copy that does not share the metadata pointer.
func (item ClothingItem) Clone() ClothingItem {
	if item.Metadata != nil {
		metadata := *item.Metadata
		item.Metadata = &metadata
	}
	return item
}

// ItemMetadataPatch holds the metadata fields to overwrite; nil fields are kept.
type ItemMetadataPatch struct {
	DateTaken *string `json:"dateTaken"`
	Brand     *string `json:"brand"`
	Material  *string `json:"material"`
	Season    *string `json:"season"`
}

func (p ItemMetadataPatch) Apply(metadata *ItemMetadata) *ItemMetadata {
	next := ItemMetadata{}
	if metadata != nil {
		next = *metadata
	}
	if p.DateTaken != nil {
		next.DateTaken = *p.DateTaken
	}
	if p.Brand != nil {
		next.Brand = *p.Brand
	}
	if p.Material != nil {
		next.Material = *p.Material
	}
	if p.Season != nil {
		next.Season = *p.Season
	}
	return &next
}
