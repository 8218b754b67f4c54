package cart

import (
	"net/http"
	"testing"

	"harvestease-backend/internal/database"
	"harvestease-backend/internal/models"
	"harvestease-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartApp(userID uint) *fiber.App {
	app := testutil.NewApp()
	app.Use(testutil.AsUser(userID, models.RoleBuyer))
	app.Get("/cart", GetCartHandler())
	app.Post("/cart/items", AddItemHandler())
	app.Put("/cart/items/:id", UpdateItemHandler())
	app.Delete("/cart/items/:id", RemoveItemHandler())
	return app
}

func seedStock(t *testing.T, price float64) *models.Stock {
	t.Helper()
	s := models.Stock{
		UserID:     1,
		FarmerName: "Sunil Perera",
		CropType:   "paddy",
		Variety:    "Samba",
		Quantity:   500,
		Unit:       "kg",
		Price:      price,
		Status:     models.StockAvailable,
	}
	require.NoError(t, database.DB.Create(&s).Error)
	return &s
}

func TestGetCartCreatesEmptyCartOnDemand(t *testing.T) {
	testutil.SetupDB(t)
	app := newCartApp(7)

	var resp CartResponse
	status := testutil.DoJSON(t, app, "GET", "/cart", nil, &resp)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, uint(7), resp.UserID)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0.0, resp.TotalAmount)
}

// Adding the same stock twice merges into one line: quantities sum and
// the line is re-priced from the live stock price.
func TestAddItemMergesAndReprices(t *testing.T) {
	testutil.SetupDB(t)
	stock := seedStock(t, 10)
	app := newCartApp(7)

	var resp CartResponse
	status := testutil.DoJSON(t, app, "POST", "/cart/items", fiber.Map{
		"stock_id": stock.ID,
		"quantity": 2.0,
	}, &resp)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 20.0, resp.Items[0].TotalPrice)

	status = testutil.DoJSON(t, app, "POST", "/cart/items", fiber.Map{
		"stock_id": stock.ID,
		"quantity": 3.0,
	}, &resp)
	require.Equal(t, http.StatusOK, status)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, 5.0, resp.Items[0].Quantity)
	assert.Equal(t, 10.0, resp.Items[0].Price)
	assert.Equal(t, 50.0, resp.Items[0].TotalPrice)
	assert.Equal(t, 50.0, resp.TotalAmount)
}

// First add snapshots the price; a later merge picks up the live one.
func TestMergeUsesLiveStockPrice(t *testing.T) {
	testutil.SetupDB(t)
	stock := seedStock(t, 10)
	app := newCartApp(7)

	var resp CartResponse
	status := testutil.DoJSON(t, app, "POST", "/cart/items", fiber.Map{
		"stock_id": stock.ID,
		"quantity": 2.0,
	}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 10.0, resp.Items[0].Price)

	// Seller raises the price after the first add.
	require.NoError(t, database.DB.Model(stock).Update("price", 12.0).Error)

	status = testutil.DoJSON(t, app, "POST", "/cart/items", fiber.Map{
		"stock_id": stock.ID,
		"quantity": 1.0,
	}, &resp)
	require.Equal(t, http.StatusOK, status)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, 12.0, resp.Items[0].Price)
	assert.Equal(t, 36.0, resp.Items[0].TotalPrice) // 3 * 12, whole line re-priced
	assert.Equal(t, 36.0, resp.TotalAmount)
}

// Quantity updates keep the stored unit price even if the stock price
// moved in the meantime.
func TestUpdateItemKeepsStoredPrice(t *testing.T) {
	testutil.SetupDB(t)
	stock := seedStock(t, 10)
	app := newCartApp(7)

	var resp CartResponse
	status := testutil.DoJSON(t, app, "POST", "/cart/items", fiber.Map{
		"stock_id": stock.ID,
		"quantity": 2.0,
	}, &resp)
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, database.DB.Model(stock).Update("price", 99.0).Error)

	itemID := resp.Items[0].ID
	status = testutil.DoJSON(t, app, "PUT", "/cart/items/1", fiber.Map{"quantity": 4.0}, &resp)
	require.Equal(t, http.StatusOK, status)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, itemID, resp.Items[0].ID)
	assert.Equal(t, 10.0, resp.Items[0].Price)
	assert.Equal(t, 40.0, resp.Items[0].TotalPrice)
	assert.Equal(t, 40.0, resp.TotalAmount)
}

func TestRemoveItemRecomputesTotal(t *testing.T) {
	testutil.SetupDB(t)
	first := seedStock(t, 10)
	second := seedStock(t, 5)
	app := newCartApp(7)

	var resp CartResponse
	status := testutil.DoJSON(t, app, "POST", "/cart/items", fiber.Map{
		"stock_id": first.ID,
		"quantity": 2.0,
	}, &resp)
	require.Equal(t, http.StatusOK, status)

	status = testutil.DoJSON(t, app, "POST", "/cart/items", fiber.Map{
		"stock_id": second.ID,
		"quantity": 4.0,
	}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 40.0, resp.TotalAmount)

	status = testutil.DoJSON(t, app, "DELETE", "/cart/items/1", nil, &resp)
	require.Equal(t, http.StatusOK, status)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, second.ID, resp.Items[0].StockID)
	assert.Equal(t, 20.0, resp.TotalAmount)
}

func TestCartNotFoundCases(t *testing.T) {
	testutil.SetupDB(t)
	app := newCartApp(7)

	// Unknown stock.
	status := testutil.DoJSON(t, app, "POST", "/cart/items", fiber.Map{
		"stock_id": 999,
		"quantity": 1.0,
	}, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// No cart exists yet for this user.
	status = testutil.DoJSON(t, app, "PUT", "/cart/items/1", fiber.Map{"quantity": 1.0}, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Cart exists but the item id does not belong to it.
	stock := seedStock(t, 10)
	status = testutil.DoJSON(t, app, "POST", "/cart/items", fiber.Map{
		"stock_id": stock.ID,
		"quantity": 1.0,
	}, nil)
	require.Equal(t, http.StatusOK, status)

	status = testutil.DoJSON(t, app, "DELETE", "/cart/items/42", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	testutil.SetupDB(t)
	stock := seedStock(t, 10)

	buyerA := newCartApp(7)
	buyerB := newCartApp(8)

	var resp CartResponse
	status := testutil.DoJSON(t, buyerA, "POST", "/cart/items", fiber.Map{
		"stock_id": stock.ID,
		"quantity": 2.0,
	}, &resp)
	require.Equal(t, http.StatusOK, status)

	status = testutil.DoJSON(t, buyerB, "GET", "/cart", nil, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, resp.Items)

	// Buyer B cannot touch buyer A's line.
	status = testutil.DoJSON(t, buyerB, "PUT", "/cart/items/1", fiber.Map{"quantity": 9.0}, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
