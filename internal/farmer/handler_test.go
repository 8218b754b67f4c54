package farmer

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

func newFarmerApp() *fiber.App {
	app := testutil.NewApp()
	app.Use(testutil.AsUser(99, models.RoleAdmin))
	app.Post("/farmers", CreateFarmerHandler())
	app.Get("/farmers", ListFarmersHandler())
	app.Get("/farmers/:id", GetFarmerHandler())
	app.Put("/farmers/:id", UpdateFarmerHandler())
	app.Delete("/farmers/:id", DeleteFarmerHandler())
	return app
}

func TestCreateFarmerRejectsDuplicateUser(t *testing.T) {
	testutil.SetupDB(t)
	u := seedUser(t, "sunil")
	app := newFarmerApp()

	var resp FarmerResponse
	status := testutil.DoJSON(t, app, "POST", "/farmers", fiber.Map{
		"user_id": u.ID,
		"name":    "Sunil Perera",
		"region":  "Anuradhapura",
	}, &resp)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "active", resp.Status)

	status = testutil.DoJSON(t, app, "POST", "/farmers", fiber.Map{
		"user_id": u.ID,
		"name":    "Sunil Again",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestFarmerResponseIncludesDerivedFigures(t *testing.T) {
	testutil.SetupDB(t)
	u := seedUser(t, "sunil")

	f := models.Farmer{
		UserID: u.ID, Name: "Sunil Perera", Region: "Anuradhapura",
		Status: models.FarmerActive, TotalSales: 300, TotalExpenses: 120,
	}
	require.NoError(t, database.DB.Create(&f).Error)

	app := newFarmerApp()
	var resp FarmerResponse
	status := testutil.DoJSON(t, app, "GET", "/farmers/1", nil, &resp)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 180.0, resp.Profit)
	assert.Equal(t, 150.0, resp.ROI)
}

func TestUpdateFarmerCannotTouchTotals(t *testing.T) {
	testutil.SetupDB(t)
	u := seedUser(t, "sunil")

	f := models.Farmer{
		UserID: u.ID, Name: "Sunil Perera",
		Status: models.FarmerActive, TotalSales: 300, TotalExpenses: 120,
	}
	require.NoError(t, database.DB.Create(&f).Error)

	app := newFarmerApp()
	var resp FarmerResponse
	status := testutil.DoJSON(t, app, "PUT", "/farmers/1", fiber.Map{
		"region":         "Polonnaruwa",
		"total_sales":    9999.0,
		"total_expenses": 0.0,
	}, &resp)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "Polonnaruwa", resp.Region)
	assert.Equal(t, 300.0, resp.TotalSales)
	assert.Equal(t, 120.0, resp.TotalExpenses)
}

func TestUpdateFarmerValidatesStatus(t *testing.T) {
	testutil.SetupDB(t)
	u := seedUser(t, "sunil")
	require.NoError(t, database.DB.Create(&models.Farmer{
		UserID: u.ID, Name: "Sunil", Status: models.FarmerActive,
	}).Error)

	app := newFarmerApp()
	status := testutil.DoJSON(t, app, "PUT", "/farmers/1", fiber.Map{"status": "retired"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var resp FarmerResponse
	status = testutil.DoJSON(t, app, "PUT", "/farmers/1", fiber.Map{"status": "inactive"}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "inactive", resp.Status)
}

func TestListFarmersRegionFilter(t *testing.T) {
	testutil.SetupDB(t)
	a := seedUser(t, "sunil")
	b := seedUser(t, "kamal")
	require.NoError(t, database.DB.Create(&models.Farmer{UserID: a.ID, Name: "Sunil", Region: "Anuradhapura", Status: models.FarmerActive}).Error)
	require.NoError(t, database.DB.Create(&models.Farmer{UserID: b.ID, Name: "Kamal", Region: "Polonnaruwa", Status: models.FarmerActive}).Error)

	app := newFarmerApp()
	var list []FarmerResponse
	status := testutil.DoJSON(t, app, "GET", "/farmers?region=Polonnaruwa", nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	assert.Equal(t, "Kamal", list[0].Name)
}

func TestDeleteFarmerLeavesLedgerAlone(t *testing.T) {
	testutil.SetupDB(t)
	u := seedUser(t, "sunil")
	require.NoError(t, database.DB.Create(&models.Farmer{UserID: u.ID, Name: "Sunil", Status: models.FarmerActive}).Error)
	require.NoError(t, database.DB.Create(&models.Sale{
		UserID: u.ID, CropType: "Samba", Quantity: 1, Price: 10, Amount: 10, BuyerName: "b",
	}).Error)

	app := newFarmerApp()
	status := testutil.DoJSON(t, app, "DELETE", "/farmers/1", nil, nil)
	require.Equal(t, http.StatusNoContent, status)

	// Ledger rows survive; references are weak.
	var count int64
	database.DB.Model(&models.Sale{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
