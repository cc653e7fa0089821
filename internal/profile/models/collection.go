package models

import "time"

// CollectionMethod is how a food item was collected.
type CollectionMethod string

const (
	MethodScan     CollectionMethod = "scan"
	MethodDiscover CollectionMethod = "discover"
	MethodQuiz     CollectionMethod = "quiz"
	MethodGift     CollectionMethod = "gift"
)

// CollectionItem is one append-only entry of a user's collection.
type CollectionItem struct {
	ID          string           `json:"id,omitempty"`
	UserID      string           `json:"userId"`
	FoodItemID  string           `json:"foodItemId"`
	Method      CollectionMethod `json:"method"`
	CollectedAt time.Time        `json:"collectedAt"`
	Notes       string           `json:"notes,omitempty"`
}

// NewCollectionItem is the caller-supplied part of a collection item.
type NewCollectionItem struct {
	FoodItemID string           `json:"foodItemId"`
	Method     CollectionMethod `json:"method"`
	Notes      string           `json:"notes,omitempty"`
}

// ListOptions controls ListCollections.
type ListOptions struct {
	Limit     int
	OrderBy   string
	Direction string
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// SortableCollectionFields may be used as ListOptions.OrderBy.
var SortableCollectionFields = []string{"collectedAt", "foodItemId", "method"}

// StatsFrom computes collection totals from every item of a user.
// CompletedCollections counts distinct food items.
func StatsFrom(items []*CollectionItem) (total, distinct int, last *time.Time) {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		seen[it.FoodItemID] = struct{}{}
		if last == nil || it.CollectedAt.After(*last) {
			t := it.CollectedAt
			last = &t
		}
	}
	return len(items), len(seen), last
}
