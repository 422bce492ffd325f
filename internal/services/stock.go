package services

import (
	"time"

	"github.com/bloodlink/backend/internal/models"

	"gorm.io/gorm"
)

// DebitOutcome reports whether a request approval actually consumed stock.
// Approval succeeds either way; the ledger only moves when the group row
// exists and holds enough units.
type DebitOutcome int

const (
	DebitSkipped DebitOutcome = iota
	DebitApplied
)

func (o DebitOutcome) Applied() bool { return o == DebitApplied }

type StockService struct {
	db *gorm.DB
}

func NewStockService(db *gorm.DB) *StockService { return &StockService{db: db} }

// List returns every stock row, lazily seeding the eight canonical blood
// groups at zero units when the table is empty.
func (s *StockService) List() ([]models.BloodStock, error) {
	var stock []models.BloodStock
	if err := s.db.Order("id asc").Find(&stock).Error; err != nil {
		return nil, err
	}
	if len(stock) > 0 {
		return stock, nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, group := range models.CanonicalBloodGroups {
			row := models.BloodStock{BloodGroup: group, UnitsAvailable: 0, UnitsReserved: 0, LastUpdated: time.Now().UTC()}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.db.Order("id asc").Find(&stock).Error; err != nil {
		return nil, err
	}
	return stock, nil
}

// Update overwrites the counters supplied by the caller. Nil fields are left
// untouched. No bounds checking beyond what the caller provides.
func (s *StockService) Update(id uint, available, reserved *int) (*models.BloodStock, error) {
	var stock models.BloodStock
	if err := s.db.First(&stock, id).Error; err != nil {
		return nil, err
	}
	if available != nil {
		stock.UnitsAvailable = *available
	}
	if reserved != nil {
		stock.UnitsReserved = *reserved
	}
	stock.LastUpdated = time.Now().UTC()
	if err := s.db.Save(&stock).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

// Debit removes units from the group's available counter when the row exists
// and has enough on hand. The check and decrement are a single conditional
// UPDATE so concurrent approvals cannot drive the counter negative.
func (s *StockService) Debit(tx *gorm.DB, bloodGroup string, units int) (DebitOutcome, error) {
	if tx == nil {
		tx = s.db
	}
	res := tx.Model(&models.BloodStock{}).
		Where("blood_group = ? AND units_available >= ?", bloodGroup, units).
		Updates(map[string]any{
			"units_available": gorm.Expr("units_available - ?", units),
			"last_updated":    time.Now().UTC(),
		})
	if res.Error != nil {
		return DebitSkipped, res.Error
	}
	if res.RowsAffected == 0 {
		return DebitSkipped, nil
	}
	return DebitApplied, nil
}
