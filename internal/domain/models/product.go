package models

// ProductDraft is a suggested item built from a barcode lookup.
type ProductDraft struct {
	Name       string `json:"name"`
	ExpiryDate string `json:"expiry_date"`
}
