package models

import "time"

// Item is a catalog record. PhotoKey and PhotoURL are either both set or
// both empty; a set PhotoKey resolves to exactly one object in the photo
// bucket, owned by this item alone.
type Item struct {
	ID        string
	Name      string
	Quantity  int
	Location  string
	PhotoKey  *string
	PhotoURL  *string
	CreatedAt time.Time
}

// HasPhoto reports whether the item references a stored photo object.
func (i Item) HasPhoto() bool {
	return i.PhotoKey != nil && *i.PhotoKey != ""
}

// ItemDraft carries the user-editable fields of an item.
type ItemDraft struct {
	Name     string
	Quantity int
	Location string
}
