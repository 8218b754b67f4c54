package farmer

import (
	"fmt"

	"harvestease-backend/internal/database"
	"harvestease-backend/internal/logger"
	"harvestease-backend/internal/models"

	"gorm.io/gorm"
)

// EnsureForUser returns the farmer aggregate for a user, creating it on
// demand from the user record the first time a ledger entry lands.
func EnsureForUser(userID uint) (*models.Farmer, error) {
	var f models.Farmer
	err := database.DB.Where("user_id = ?", userID).First(&f).Error
	if err == nil {
		return &f, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user %d not found: %w", userID, err)
	}

	f = models.Farmer{
		UserID: userID,
		Name:   user.Name,
		Status: models.FarmerActive,
	}
	if err := database.DB.Create(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// ApplySalesDelta shifts the denormalized sales counter. This write is a
// separate statement from the ledger write; a failure in between leaves
// the totals stale, which is logged and accepted.
func ApplySalesDelta(userID uint, delta float64) {
	if delta == 0 {
		return
	}
	applyDelta(userID, "total_sales", delta)
}

// ApplyExpensesDelta shifts the denormalized expenses counter.
func ApplyExpensesDelta(userID uint, delta float64) {
	if delta == 0 {
		return
	}
	applyDelta(userID, "total_expenses", delta)
}

func applyDelta(userID uint, column string, delta float64) {
	f, err := EnsureForUser(userID)
	if err != nil {
		logger.WithModule("farmer").Warnf("skipping %s delta %.2f for user %d: %v", column, delta, userID, err)
		return
	}

	err = database.DB.Model(&models.Farmer{}).
		Where("id = ?", f.ID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
	if err != nil {
		logger.WithModule("farmer").Errorf("could not apply %s delta %.2f for user %d: %v", column, delta, userID, err)
	}
}
