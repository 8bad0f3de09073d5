package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

// itemRow is the single-table layout of a pantry item.
type itemRow struct {
	ID         int64     `gorm:"primary_key"`
	Name       string    `gorm:"size:100;not null"`
	Quantity   int       `gorm:"not null"`
	ExpiryDate time.Time `gorm:"type:date;not null"`
}

func (itemRow) TableName() string {
	return "items"
}

// ItemRepository stores items in a SQLite table through gorm.
type ItemRepository struct {
	db *gorm.DB
}

// NewItemRepository opens the database at path and migrates the items table.
// Use ":memory:" for an ephemeral database.
func NewItemRepository(path string) (*ItemRepository, error) {
	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	// SQLite allows one writer; a single connection also keeps ":memory:" on one database.
	db.DB().SetMaxOpenConns(1)
	db.LogMode(false)

	if err := db.AutoMigrate(&itemRow{}).Error; err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate items table: %w", err)
	}

	return &ItemRepository{db: db}, nil
}

// Create inserts the item and returns it with its assigned id.
func (r *ItemRepository) Create(ctx context.Context, item models.Item) (models.Item, error) {
	row := toRow(item)
	row.ID = 0
	if err := r.db.Create(&row).Error; err != nil {
		return models.Item{}, fmt.Errorf("insert item: %w", err)
	}
	return fromRow(row), nil
}

// List returns every item in id order.
func (r *ItemRepository) List(ctx context.Context) ([]models.Item, error) {
	var rows []itemRow
	if err := r.db.Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	items := make([]models.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromRow(row))
	}
	return items, nil
}

// Get loads a single item.
func (r *ItemRepository) Get(ctx context.Context, id int64) (models.Item, error) {
	row, err := first(r.db, id)
	if err != nil {
		return models.Item{}, err
	}
	return fromRow(row), nil
}

// Update loads the item, applies mutate and saves the result in one transaction.
// An error from mutate rolls the transaction back.
func (r *ItemRepository) Update(ctx context.Context, id int64, mutate func(*models.Item) error) (models.Item, error) {
	var updated models.Item

	err := r.db.Transaction(func(tx *gorm.DB) error {
		row, err := first(tx, id)
		if err != nil {
			return err
		}

		item := fromRow(row)
		if err := mutate(&item); err != nil {
			return err
		}
		item.ID = row.ID

		next := toRow(item)
		if err := tx.Save(&next).Error; err != nil {
			return fmt.Errorf("save item %d: %w", id, err)
		}
		updated = fromRow(next)
		return nil
	})
	if err != nil {
		return models.Item{}, err
	}

	return updated, nil
}

// Delete removes the item with the given id.
func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.Where("id = ?", id).Delete(&itemRow{})
	if res.Error != nil {
		return fmt.Errorf("delete item %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// Close releases the underlying database handle.
func (r *ItemRepository) Close() error {
	return r.db.Close()
}

func first(db *gorm.DB, id int64) (itemRow, error) {
	var row itemRow
	if err := db.First(&row, id).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return itemRow{}, fmt.Errorf("item %d: %w", id, models.ErrNotFound)
		}
		return itemRow{}, fmt.Errorf("load item %d: %w", id, err)
	}
	return row, nil
}

func toRow(item models.Item) itemRow {
	return itemRow{
		ID:         item.ID,
		Name:       item.Name,
		Quantity:   item.Quantity,
		ExpiryDate: models.DateOf(item.ExpiryDate),
	}
}

func fromRow(row itemRow) models.Item {
	return models.Item{
		ID:         row.ID,
		Name:       row.Name,
		Quantity:   row.Quantity,
		ExpiryDate: models.DateOf(row.ExpiryDate.UTC()),
	}
}
