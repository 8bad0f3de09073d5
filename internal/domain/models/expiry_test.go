package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	today := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		offset int
		want   ExpiryStatus
	}{
		{"long expired", -30, StatusExpired},
		{"yesterday", -1, StatusExpired},
		{"today", 0, StatusNearExpiry},
		{"in three days", 3, StatusNearExpiry},
		{"in four days", 4, StatusOK},
		{"next year", 365, StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(today.AddDate(0, 0, tc.offset), today))
		})
	}
}

func TestClassifyIgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	today := time.Date(2024, time.March, 10, 23, 59, 0, 0, loc)
	expiry := time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, StatusNearExpiry, Classify(expiry, today))
	assert.Equal(t, StatusOK, Classify(expiry.AddDate(0, 0, 1), today))
}

func TestClassifyAcrossDSTChange(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("tzdata not available")
	}
	today := time.Date(2024, time.March, 30, 12, 0, 0, 0, loc)
	expiry := time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 4, DaysBetween(today, expiry))
	assert.Equal(t, StatusOK, Classify(expiry, today))
}

func TestItemView(t *testing.T) {
	item := Item{
		ID:         7,
		Name:       "Milk",
		Quantity:   2,
		ExpiryDate: time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC),
	}

	view := item.View(time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC))

	assert.Equal(t, ItemView{
		ID:           7,
		Name:         "Milk",
		Quantity:     2,
		ExpiryDate:   "2024-03-09",
		ExpiryStatus: StatusExpired,
	}, view)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2099-01-01")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2099, time.January, 1, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "2024-02-30", "01/02/2024", "2024-1-1"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}
