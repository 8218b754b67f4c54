package expense

import (
	"fmt"
	"strings"
	"time"

	"harvestease-backend/internal/audit"
	"harvestease-backend/internal/auth"
	"harvestease-backend/internal/database"
	"harvestease-backend/internal/farmer"
	"harvestease-backend/internal/logger"
	"harvestease-backend/internal/models"
	"harvestease-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type CreateExpenseRequest struct {
	Category    string  `json:"category" validate:"required,max=100"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"max=500"`
	Crop        string  `json:"crop" validate:"max=50"` // optional tag
	Date        string  `json:"date" validate:"required"`
	UserID      *uint   `json:"user_id"` // used when no token is presented, or by admins
}

type UpdateExpenseRequest struct {
	Category    *string  `json:"category"`
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
	Crop        *string  `json:"crop"`
	Date        *string  `json:"date"`
}

type ExpenseResponse struct {
	ID          uint    `json:"id"`
	UserID      uint    `json:"user_id"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Crop        string  `json:"crop,omitempty"`
	Date        string  `json:"date"`
}

func toExpenseResponse(e *models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		Category:    e.Category,
		Amount:      e.Amount,
		Description: e.Description,
		Crop:        e.Crop,
		Date:        e.Date.Format("2006-01-02"),
	}
}

func resolveOwnerID(c *fiber.Ctx, bodyUserID *uint) (uint, error) {
	callerID, authed := auth.CallerID(c)
	if !authed {
		if bodyUserID == nil || *bodyUserID == 0 {
			return 0, fiber.NewError(fiber.StatusBadRequest, "user_id is required")
		}
		return *bodyUserID, nil
	}
	role, _ := auth.CallerRole(c)
	if role == models.RoleAdmin && bodyUserID != nil && *bodyUserID != 0 {
		return *bodyUserID, nil
	}
	return callerID, nil
}

func auditUserInfo(c *fiber.Ctx) (uint, string) {
	callerID, ok := auth.CallerID(c)
	if !ok {
		return 0, "anonymous"
	}
	var user models.User
	if err := database.DB.First(&user, callerID).Error; err != nil {
		return callerID, ""
	}
	return user.ID, user.Name
}

func loadExpense(c *fiber.Ctx) (*models.Expense, error) {
	var e models.Expense
	if err := database.DB.First(&e, "id = ?", c.Params("id")).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Expense not found")
	}

	if callerID, authed := auth.CallerID(c); authed {
		role, _ := auth.CallerRole(c)
		if role != models.RoleAdmin && e.UserID != callerID {
			return nil, fiber.NewError(fiber.StatusForbidden, "You do not own this expense")
		}
	}
	return &e, nil
}

// parseExpenseDate rejects dates in the future.
func parseExpenseDate(dateStr string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "date must be 'YYYY-MM-DD'")
	}
	if d.After(time.Now()) {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "date cannot be in the future")
	}
	return d, nil
}

// POST /api/expenses
// Persists the expense, then applies the amount to the owning farmer's
// running total. The two writes are sequential and not atomic.
func CreateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Category = strings.TrimSpace(body.Category)
		body.Crop = strings.TrimSpace(body.Crop)

		if err := validation.Struct(body); err != nil {
			return err
		}

		d, err := parseExpenseDate(body.Date)
		if err != nil {
			return err
		}

		ownerID, err := resolveOwnerID(c, body.UserID)
		if err != nil {
			return err
		}

		e := models.Expense{
			UserID:      ownerID,
			Category:    body.Category,
			Amount:      body.Amount,
			Description: body.Description,
			Crop:        body.Crop,
			Date:        d,
		}

		if err := database.DB.Create(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save expense")
		}

		farmer.ApplyExpensesDelta(e.UserID, e.Amount)

		userID, userName := auditUserInfo(c)
		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "expense",
			EntityID:    e.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Expense recorded: %s - %.2f", e.Category, e.Amount),
			After:       toExpenseResponse(&e),
		}); logErr != nil {
			logger.WithModule("expense").Warnf("audit log failed: %v", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(toExpenseResponse(&e))
	}
}

// GET /api/expenses?from=...&to=...&category=...&crop=...&user_id=...
func ListExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Expense{})

		if callerID, authed := auth.CallerID(c); authed {
			role, _ := auth.CallerRole(c)
			if role != models.RoleAdmin {
				dbq = dbq.Where("user_id = ?", callerID)
			} else if uid := c.QueryInt("user_id"); uid > 0 {
				dbq = dbq.Where("user_id = ?", uid)
			}
		} else if uid := c.QueryInt("user_id"); uid > 0 {
			dbq = dbq.Where("user_id = ?", uid)
		}

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from is invalid")
			}
			dbq = dbq.Where("date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to is invalid")
			}
			dbq = dbq.Where("date <= ?", to)
		}
		if category := c.Query("category"); category != "" {
			dbq = dbq.Where("category = ?", category)
		}
		if crop := c.Query("crop"); crop != "" {
			dbq = dbq.Where("crop = ?", crop)
		}

		var rows []models.Expense
		if err := dbq.Order("date asc, id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list expenses")
		}

		resp := make([]ExpenseResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toExpenseResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/expenses/:id
func GetExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		e, err := loadExpense(c)
		if err != nil {
			return err
		}
		return c.JSON(toExpenseResponse(e))
	}
}

// PUT /api/expenses/:id
// Applies the signed old/new amount delta to the farmer total, only
// when the delta is non-zero.
func UpdateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		e, err := loadExpense(c)
		if err != nil {
			return err
		}

		var body UpdateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		before := toExpenseResponse(e)
		oldAmount := e.Amount

		if body.Category != nil {
			category := strings.TrimSpace(*body.Category)
			if category == "" {
				return fiber.NewError(fiber.StatusBadRequest, "category cannot be empty")
			}
			e.Category = category
		}
		if body.Amount != nil {
			if *body.Amount <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "amount must be greater than 0")
			}
			e.Amount = *body.Amount
		}
		if body.Description != nil {
			if len(*body.Description) > 500 {
				return fiber.NewError(fiber.StatusBadRequest, "description must be at most 500 characters")
			}
			e.Description = *body.Description
		}
		if body.Crop != nil {
			e.Crop = strings.TrimSpace(*body.Crop)
		}
		if body.Date != nil {
			d, err := parseExpenseDate(*body.Date)
			if err != nil {
				return err
			}
			e.Date = d
		}

		if err := database.DB.Save(e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update expense")
		}

		farmer.ApplyExpensesDelta(e.UserID, e.Amount-oldAmount)

		userID, userName := auditUserInfo(c)
		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "expense",
			EntityID:    e.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Expense updated: %s - %.2f", e.Category, e.Amount),
			Before:      before,
			After:       toExpenseResponse(e),
		}); logErr != nil {
			logger.WithModule("expense").Warnf("audit log failed: %v", logErr)
		}

		return c.JSON(toExpenseResponse(e))
	}
}

// DELETE /api/expenses/:id
func DeleteExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		e, err := loadExpense(c)
		if err != nil {
			return err
		}

		if err := database.DB.Delete(e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete expense")
		}

		farmer.ApplyExpensesDelta(e.UserID, -e.Amount)

		userID, userName := auditUserInfo(c)
		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "expense",
			EntityID:    e.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Expense deleted: %s - %.2f", e.Category, e.Amount),
			Before:      toExpenseResponse(e),
		}); logErr != nil {
			logger.WithModule("expense").Warnf("audit log failed: %v", logErr)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
