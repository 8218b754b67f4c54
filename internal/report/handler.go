package report

import (
	"time"

	"harvestease-backend/internal/database"
	"harvestease-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// round2 rounds for presentation only; intermediate sums stay exact.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// ratio returns a/b*100 with the zero-denominator case pinned to 0.
func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b * 100
}

func parseWindow(c *fiber.Ctx) (from, to *time.Time, err error) {
	if fromStr := c.Query("from"); fromStr != "" {
		d, perr := time.Parse("2006-01-02", fromStr)
		if perr != nil {
			return nil, nil, fiber.NewError(fiber.StatusBadRequest, "from is invalid")
		}
		from = &d
	}
	if toStr := c.Query("to"); toStr != "" {
		d, perr := time.Parse("2006-01-02", toStr)
		if perr != nil {
			return nil, nil, fiber.NewError(fiber.StatusBadRequest, "to is invalid")
		}
		to = &d
	}
	return from, to, nil
}

func applyWindow(dbq *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		dbq = dbq.Where("date >= ?", *from)
	}
	if to != nil {
		dbq = dbq.Where("date <= ?", *to)
	}
	return dbq
}

type SummaryResponse struct {
	Count   int64   `json:"count"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
}

// GET /api/report/sales/summary?from=...&to=...&crop=...
func SalesSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseWindow(c)
		if err != nil {
			return err
		}

		dbq := applyWindow(database.DB.Model(&models.Sale{}), from, to)
		if crop := c.Query("crop"); crop != "" {
			dbq = dbq.Where("crop_type = ?", crop)
		}

		var row struct {
			Count int64   `gorm:"column:count"`
			Total float64 `gorm:"column:total"`
		}
		if err := dbq.Select("COUNT(*) as count, COALESCE(SUM(quantity * price), 0) as total").
			Scan(&row).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute sales summary")
		}

		avg := 0.0
		if row.Count > 0 {
			avg = row.Total / float64(row.Count)
		}

		return c.JSON(SummaryResponse{
			Count:   row.Count,
			Total:   round2(row.Total),
			Average: round2(avg),
		})
	}
}

// GET /api/report/expenses/summary?from=...&to=...&category=...
func ExpensesSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseWindow(c)
		if err != nil {
			return err
		}

		dbq := applyWindow(database.DB.Model(&models.Expense{}), from, to)
		if category := c.Query("category"); category != "" {
			dbq = dbq.Where("category = ?", category)
		}

		var row struct {
			Count int64   `gorm:"column:count"`
			Total float64 `gorm:"column:total"`
		}
		if err := dbq.Select("COUNT(*) as count, COALESCE(SUM(amount), 0) as total").
			Scan(&row).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute expense summary")
		}

		avg := 0.0
		if row.Count > 0 {
			avg = row.Total / float64(row.Count)
		}

		return c.JSON(SummaryResponse{
			Count:   row.Count,
			Total:   round2(row.Total),
			Average: round2(avg),
		})
	}
}

type ProfitResponse struct {
	Region   string  `json:"region,omitempty"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
	ROI      float64 `json:"roi"`
}

// regionUserIDs resolves the owning user ids of farmers in a region.
func regionUserIDs(region string) ([]uint, error) {
	var ids []uint
	err := database.DB.Model(&models.Farmer{}).
		Where("region = ?", region).
		Pluck("user_id", &ids).Error
	return ids, err
}

// GET /api/report/profit?from=...&to=...&region=...
func ProfitHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseWindow(c)
		if err != nil {
			return err
		}

		salesQ := applyWindow(database.DB.Model(&models.Sale{}), from, to)
		expenseQ := applyWindow(database.DB.Model(&models.Expense{}), from, to)

		region := c.Query("region")
		if region != "" {
			ids, err := regionUserIDs(region)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not resolve region")
			}
			if len(ids) == 0 {
				return c.JSON(ProfitResponse{Region: region})
			}
			salesQ = salesQ.Where("user_id IN ?", ids)
			expenseQ = expenseQ.Where("user_id IN ?", ids)
		}

		var revenue, expenses float64
		if err := salesQ.Select("COALESCE(SUM(quantity * price), 0)").Scan(&revenue).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute revenue")
		}
		if err := expenseQ.Select("COALESCE(SUM(amount), 0)").Scan(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute expenses")
		}

		profit := revenue - expenses
		return c.JSON(ProfitResponse{
			Region:   region,
			Revenue:  round2(revenue),
			Expenses: round2(expenses),
			Profit:   round2(profit),
			ROI:      round2(ratio(profit, expenses)),
		})
	}
}

type CropProfitItem struct {
	Crop           string  `json:"crop"`
	Revenue        float64 `json:"revenue"`
	TaggedExpenses float64 `json:"tagged_expenses"`
	GeneralShare   float64 `json:"general_share"`
	Expenses       float64 `json:"expenses"`
	Profit         float64 `json:"profit"`
	ROI            float64 `json:"roi"`
}

type CropProfitResponse struct {
	Items           []CropProfitItem `json:"items"`
	GeneralExpenses float64          `json:"general_expenses"`
}

// GET /api/report/crop-profit?from=...&to=...
//
// Revenue groups by crop type; tagged expenses group by their crop tag;
// untagged ("general") expenses are split evenly across the crops that
// recorded revenue in the window, then profit and ROI are computed per
// crop after adding the apportioned share.
func CropProfitHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseWindow(c)
		if err != nil {
			return err
		}

		type cropRow struct {
			Crop  string  `gorm:"column:crop"`
			Total float64 `gorm:"column:total"`
		}

		var revenueRows []cropRow
		if err := applyWindow(database.DB.Model(&models.Sale{}), from, to).
			Select("crop_type as crop, SUM(quantity * price) as total").
			Group("crop_type").
			Scan(&revenueRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute crop revenue")
		}

		var expenseRows []cropRow
		if err := applyWindow(database.DB.Model(&models.Expense{}), from, to).
			Select("crop as crop, SUM(amount) as total").
			Where("crop <> ''").
			Group("crop").
			Scan(&expenseRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute crop expenses")
		}

		var general float64
		if err := applyWindow(database.DB.Model(&models.Expense{}), from, to).
			Select("COALESCE(SUM(amount), 0)").
			Where("crop = ''").
			Scan(&general).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute general expenses")
		}

		revenueByCrop := make(map[string]float64, len(revenueRows))
		for _, r := range revenueRows {
			revenueByCrop[r.Crop] = r.Total
		}
		expensesByCrop := make(map[string]float64, len(expenseRows))
		for _, r := range expenseRows {
			expensesByCrop[r.Crop] = r.Total
		}

		// Every crop that appears on either side of the ledger is listed.
		crops := make([]string, 0, len(revenueByCrop)+len(expensesByCrop))
		seen := make(map[string]bool)
		for _, r := range revenueRows {
			if !seen[r.Crop] {
				seen[r.Crop] = true
				crops = append(crops, r.Crop)
			}
		}
		for _, r := range expenseRows {
			if !seen[r.Crop] {
				seen[r.Crop] = true
				crops = append(crops, r.Crop)
			}
		}

		// General expenses are spread only over crops with revenue.
		share := 0.0
		if len(revenueByCrop) > 0 {
			share = general / float64(len(revenueByCrop))
		}

		items := make([]CropProfitItem, 0, len(crops))
		for _, crop := range crops {
			revenue := revenueByCrop[crop]
			tagged := expensesByCrop[crop]

			generalShare := 0.0
			if _, hasRevenue := revenueByCrop[crop]; hasRevenue {
				generalShare = share
			}

			expenses := tagged + generalShare
			profit := revenue - expenses

			items = append(items, CropProfitItem{
				Crop:           crop,
				Revenue:        round2(revenue),
				TaggedExpenses: round2(tagged),
				GeneralShare:   round2(generalShare),
				Expenses:       round2(expenses),
				Profit:         round2(profit),
				ROI:            round2(ratio(profit, expenses)),
			})
		}

		return c.JSON(CropProfitResponse{
			Items:           items,
			GeneralExpenses: round2(general),
		})
	}
}

type RegionalProfitItem struct {
	Region             string  `json:"region"`
	Revenue            float64 `json:"revenue"`
	Expenses           float64 `json:"expenses"`
	Profit             float64 `json:"profit"`
	ROI                float64 `json:"roi"`
	FarmerCount        int     `json:"farmer_count"`
	AvgProfitPerFarmer float64 `json:"avg_profit_per_farmer"`
}

// GET /api/report/regional-profit?from=...&to=...
//
// Sales and expenses are joined to regions through the farmer's owning
// user id; every distinct region among known farmers is reported.
func RegionalProfitHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseWindow(c)
		if err != nil {
			return err
		}

		var farmers []models.Farmer
		if err := database.DB.Find(&farmers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load farmers")
		}

		type userRow struct {
			UserID uint    `gorm:"column:user_id"`
			Total  float64 `gorm:"column:total"`
		}

		var salesRows []userRow
		if err := applyWindow(database.DB.Model(&models.Sale{}), from, to).
			Select("user_id, SUM(quantity * price) as total").
			Group("user_id").
			Scan(&salesRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute regional revenue")
		}

		var expenseRows []userRow
		if err := applyWindow(database.DB.Model(&models.Expense{}), from, to).
			Select("user_id, SUM(amount) as total").
			Group("user_id").
			Scan(&expenseRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute regional expenses")
		}

		salesByUser := make(map[uint]float64, len(salesRows))
		for _, r := range salesRows {
			salesByUser[r.UserID] = r.Total
		}
		expensesByUser := make(map[uint]float64, len(expenseRows))
		for _, r := range expenseRows {
			expensesByUser[r.UserID] = r.Total
		}

		type regionAgg struct {
			revenue     float64
			expenses    float64
			farmerCount int
		}
		regions := make(map[string]*regionAgg)
		order := make([]string, 0)

		for _, f := range farmers {
			agg, ok := regions[f.Region]
			if !ok {
				agg = &regionAgg{}
				regions[f.Region] = agg
				order = append(order, f.Region)
			}
			agg.farmerCount++
			agg.revenue += salesByUser[f.UserID]
			agg.expenses += expensesByUser[f.UserID]
		}

		items := make([]RegionalProfitItem, 0, len(order))
		for _, region := range order {
			agg := regions[region]
			profit := agg.revenue - agg.expenses

			avgProfit := 0.0
			if agg.farmerCount > 0 {
				avgProfit = profit / float64(agg.farmerCount)
			}

			items = append(items, RegionalProfitItem{
				Region:             region,
				Revenue:            round2(agg.revenue),
				Expenses:           round2(agg.expenses),
				Profit:             round2(profit),
				ROI:                round2(ratio(profit, agg.expenses)),
				FarmerCount:        agg.farmerCount,
				AvgProfitPerFarmer: round2(avgProfit),
			})
		}

		return c.JSON(items)
	}
}
