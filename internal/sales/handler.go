package sales

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

type CreateSaleRequest struct {
	CropType     string  `json:"crop_type" validate:"required,max=50"`
	Quantity     float64 `json:"quantity" validate:"required,gt=0"`
	Price        float64 `json:"price" validate:"required,gt=0"`
	BuyerName    string  `json:"buyer_name" validate:"required,max=100"`
	BuyerContact string  `json:"buyer_contact" validate:"max=50"`
	Date         string  `json:"date" validate:"required"`
	UserID       *uint   `json:"user_id"` // used when no token is presented, or by admins
}

type UpdateSaleRequest struct {
	CropType     *string  `json:"crop_type"`
	Quantity     *float64 `json:"quantity"`
	Price        *float64 `json:"price"`
	BuyerName    *string  `json:"buyer_name"`
	BuyerContact *string  `json:"buyer_contact"`
	Date         *string  `json:"date"`
}

type SaleResponse struct {
	ID           uint    `json:"id"`
	UserID       uint    `json:"user_id"`
	CropType     string  `json:"crop_type"`
	Quantity     float64 `json:"quantity"`
	Price        float64 `json:"price"`
	Amount       float64 `json:"amount"`
	BuyerName    string  `json:"buyer_name"`
	BuyerContact string  `json:"buyer_contact"`
	Date         string  `json:"date"`
}

func toSaleResponse(s *models.Sale) SaleResponse {
	return SaleResponse{
		ID:           s.ID,
		UserID:       s.UserID,
		CropType:     s.CropType,
		Quantity:     s.Quantity,
		Price:        s.Price,
		Amount:       s.Amount,
		BuyerName:    s.BuyerName,
		BuyerContact: s.BuyerContact,
		Date:         s.Date.Format("2006-01-02"),
	}
}

// resolveOwnerID: token identity wins for non-admins; admins and
// anonymous callers name the owning user explicitly.
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

func loadSale(c *fiber.Ctx) (*models.Sale, error) {
	var s models.Sale
	if err := database.DB.First(&s, "id = ?", c.Params("id")).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Sale not found")
	}

	if callerID, authed := auth.CallerID(c); authed {
		role, _ := auth.CallerRole(c)
		if role != models.RoleAdmin && s.UserID != callerID {
			return nil, fiber.NewError(fiber.StatusForbidden, "You do not own this sale")
		}
	}
	return &s, nil
}

// POST /api/sales
// Persists the sale, then applies quantity*price to the owning farmer's
// running total. The two writes are sequential and not atomic.
func CreateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.CropType = strings.TrimSpace(body.CropType)
		body.BuyerName = strings.TrimSpace(body.BuyerName)

		if err := validation.Struct(body); err != nil {
			return err
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be 'YYYY-MM-DD'")
		}

		ownerID, err := resolveOwnerID(c, body.UserID)
		if err != nil {
			return err
		}

		s := models.Sale{
			UserID:       ownerID,
			CropType:     body.CropType,
			Quantity:     body.Quantity,
			Price:        body.Price,
			Amount:       body.Quantity * body.Price,
			BuyerName:    body.BuyerName,
			BuyerContact: body.BuyerContact,
			Date:         d,
		}

		if err := database.DB.Create(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save sale")
		}

		farmer.ApplySalesDelta(s.UserID, s.Amount)

		userID, userName := auditUserInfo(c)
		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "sale",
			EntityID:    s.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Sale recorded: %s - %.2f", s.CropType, s.Amount),
			After:       toSaleResponse(&s),
		}); logErr != nil {
			logger.WithModule("sales").Warnf("audit log failed: %v", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(toSaleResponse(&s))
	}
}

// GET /api/sales?from=...&to=...&crop=...&user_id=...
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Sale{})

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
		if crop := c.Query("crop"); crop != "" {
			dbq = dbq.Where("crop_type = ?", crop)
		}

		var rows []models.Sale
		if err := dbq.Order("date asc, id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list sales")
		}

		resp := make([]SaleResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toSaleResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/sales/:id
func GetSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := loadSale(c)
		if err != nil {
			return err
		}
		return c.JSON(toSaleResponse(s))
	}
}

// PUT /api/sales/:id
// The amount is recomputed whenever quantity or price changes and the
// signed delta is applied to the farmer total, only when non-zero.
func UpdateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := loadSale(c)
		if err != nil {
			return err
		}

		var body UpdateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		before := toSaleResponse(s)
		oldAmount := s.Amount

		if body.CropType != nil {
			cropType := strings.TrimSpace(*body.CropType)
			if cropType == "" {
				return fiber.NewError(fiber.StatusBadRequest, "crop_type cannot be empty")
			}
			s.CropType = cropType
		}
		if body.Quantity != nil {
			if *body.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "quantity must be greater than 0")
			}
			s.Quantity = *body.Quantity
		}
		if body.Price != nil {
			if *body.Price <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "price must be greater than 0")
			}
			s.Price = *body.Price
		}
		if body.BuyerName != nil {
			buyer := strings.TrimSpace(*body.BuyerName)
			if buyer == "" {
				return fiber.NewError(fiber.StatusBadRequest, "buyer_name cannot be empty")
			}
			s.BuyerName = buyer
		}
		if body.BuyerContact != nil {
			s.BuyerContact = strings.TrimSpace(*body.BuyerContact)
		}
		if body.Date != nil {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date must be 'YYYY-MM-DD'")
			}
			s.Date = d
		}

		s.Amount = s.Quantity * s.Price

		if err := database.DB.Save(s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update sale")
		}

		farmer.ApplySalesDelta(s.UserID, s.Amount-oldAmount)

		userID, userName := auditUserInfo(c)
		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "sale",
			EntityID:    s.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Sale updated: %s - %.2f", s.CropType, s.Amount),
			Before:      before,
			After:       toSaleResponse(s),
		}); logErr != nil {
			logger.WithModule("sales").Warnf("audit log failed: %v", logErr)
		}

		return c.JSON(toSaleResponse(s))
	}
}

// DELETE /api/sales/:id
func DeleteSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := loadSale(c)
		if err != nil {
			return err
		}

		if err := database.DB.Delete(s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete sale")
		}

		farmer.ApplySalesDelta(s.UserID, -s.Amount)

		userID, userName := auditUserInfo(c)
		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "sale",
			EntityID:    s.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Sale deleted: %s - %.2f", s.CropType, s.Amount),
			Before:      toSaleResponse(s),
		}); logErr != nil {
			logger.WithModule("sales").Warnf("audit log failed: %v", logErr)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
