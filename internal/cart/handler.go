package cart

import (
	"harvestease-backend/internal/auth"
	"harvestease-backend/internal/database"
	"harvestease-backend/internal/models"
	"harvestease-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AddItemRequest struct {
	StockID  uint    `json:"stock_id" validate:"required"`
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
}

type UpdateItemRequest struct {
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
}

type CartItemResponse struct {
	ID         uint    `json:"id"`
	StockID    uint    `json:"stock_id"`
	Quantity   float64 `json:"quantity"`
	Price      float64 `json:"price"`
	TotalPrice float64 `json:"total_price"`
}

type CartResponse struct {
	ID          uint               `json:"id"`
	UserID      uint               `json:"user_id"`
	Items       []CartItemResponse `json:"items"`
	TotalAmount float64            `json:"total_amount"`
}

func toCartResponse(cart *models.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, CartItemResponse{
			ID:         it.ID,
			StockID:    it.StockID,
			Quantity:   it.Quantity,
			Price:      it.Price,
			TotalPrice: it.TotalPrice,
		})
	}
	return CartResponse{
		ID:          cart.ID,
		UserID:      cart.UserID,
		Items:       items,
		TotalAmount: cart.TotalAmount,
	}
}

func ensureCart(userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := database.DB.Preload("Items").Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	cart = models.Cart{UserID: userID}
	if err := database.DB.Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// recomputeTotal makes the cart total the sum of current line totals.
// Invoked after every mutation; the line write and the total write are
// sequential, not transactional.
func recomputeTotal(cart *models.Cart) error {
	var total float64
	if err := database.DB.Model(&models.CartItem{}).
		Where("cart_id = ?", cart.ID).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&total).Error; err != nil {
		return err
	}
	cart.TotalAmount = total
	return database.DB.Model(&models.Cart{}).
		Where("id = ?", cart.ID).
		Update("total_amount", total).Error
}

// GET /api/cart
func GetCartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := auth.CallerID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}

		cart, err := ensureCart(userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load cart")
		}
		return c.JSON(toCartResponse(cart))
	}
}

// POST /api/cart/items
//
// First insert freezes the unit price as it was at add time. Adding the
// same stock item again merges into the existing line: quantities sum
// and the whole line is re-priced from the current stock price. The two
// behaviors are intentionally different and both covered by tests.
func AddItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := auth.CallerID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}

		var body AddItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		var stockItem models.Stock
		if err := database.DB.First(&stockItem, body.StockID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stock item not found")
		}

		cart, err := ensureCart(userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load cart")
		}

		var item models.CartItem
		err = database.DB.Where("cart_id = ? AND stock_id = ?", cart.ID, body.StockID).First(&item).Error
		switch {
		case err == nil:
			item.Quantity += body.Quantity
			item.Price = stockItem.Price // live re-price on merge
			item.TotalPrice = item.Quantity * item.Price
			if err := database.DB.Save(&item).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not update cart item")
			}
		case err == gorm.ErrRecordNotFound:
			item = models.CartItem{
				CartID:     cart.ID,
				StockID:    body.StockID,
				Quantity:   body.Quantity,
				Price:      stockItem.Price, // snapshot at add time
				TotalPrice: body.Quantity * stockItem.Price,
			}
			if err := database.DB.Create(&item).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not add cart item")
			}
		default:
			return fiber.NewError(fiber.StatusInternalServerError, "Could not read cart")
		}

		if err := recomputeTotal(cart); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update cart total")
		}

		return loadAndRespond(c, userID)
	}
}

// PUT /api/cart/items/:id
// Quantity changes keep the line's stored unit price.
func UpdateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := auth.CallerID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}

		var body UpdateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		cart, item, err := loadOwnedItem(c, userID)
		if err != nil {
			return err
		}

		item.Quantity = body.Quantity
		item.TotalPrice = item.Quantity * item.Price
		if err := database.DB.Save(item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update cart item")
		}

		if err := recomputeTotal(cart); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update cart total")
		}

		return loadAndRespond(c, userID)
	}
}

// DELETE /api/cart/items/:id
func RemoveItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := auth.CallerID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}

		cart, item, err := loadOwnedItem(c, userID)
		if err != nil {
			return err
		}

		if err := database.DB.Delete(item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not remove cart item")
		}

		if err := recomputeTotal(cart); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update cart total")
		}

		return loadAndRespond(c, userID)
	}
}

func loadOwnedItem(c *fiber.Ctx, userID uint) (*models.Cart, *models.CartItem, error) {
	var cart models.Cart
	if err := database.DB.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, nil, fiber.NewError(fiber.StatusNotFound, "Cart not found")
	}

	var item models.CartItem
	if err := database.DB.Where("id = ? AND cart_id = ?", c.Params("id"), cart.ID).First(&item).Error; err != nil {
		return nil, nil, fiber.NewError(fiber.StatusNotFound, "Cart item not found")
	}
	return &cart, &item, nil
}

func loadAndRespond(c *fiber.Ctx, userID uint) error {
	var cart models.Cart
	if err := database.DB.Preload("Items").Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not load cart")
	}
	return c.JSON(toCartResponse(&cart))
}
