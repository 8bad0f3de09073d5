package models

import "time"

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// MaxNameLength mirrors the width of the name column.
const MaxNameLength = 100

// Item is a pantry record as persisted by a repository.
type Item struct {
	ID         int64
	Name       string
	Quantity   int
	ExpiryDate time.Time
}

// ItemView is the serialized form of an Item, annotated with its expiry status.
type ItemView struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Quantity     int          `json:"quantity"`
	ExpiryDate   string       `json:"expiry_date"`
	ExpiryStatus ExpiryStatus `json:"expiry_status"`
}

// View returns a copy of the item classified relative to today.
func (i Item) View(today time.Time) ItemView {
	return ItemView{
		ID:           i.ID,
		Name:         i.Name,
		Quantity:     i.Quantity,
		ExpiryDate:   i.ExpiryDate.Format(DateLayout),
		ExpiryStatus: Classify(i.ExpiryDate, today),
	}
}

// ItemInput carries the caller-supplied fields of a create or update.
// Nil fields are treated as absent.
type ItemInput struct {
	Name       *string
	Quantity   *int
	ExpiryDate *string
}
