package audit

import (
	"encoding/json"
	"fmt"

	"harvestease-backend/internal/database"
	"harvestease-backend/internal/models"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog appends an audit record for a ledger mutation.
func WriteLog(opts LogOptions) error {
	beforeJSON := json.RawMessage("null")
	afterJSON := json.RawMessage("null")

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeJSON = b
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterJSON = b
		}
	}

	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  []byte(beforeJSON),
		AfterData:   []byte(afterJSON),
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("could not write audit log: %w", err)
	}

	return nil
}
