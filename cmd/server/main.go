package main

import (
	"strings"

	"harvestease-backend/internal/admin"
	"harvestease-backend/internal/audit"
	"harvestease-backend/internal/auth"
	"harvestease-backend/internal/cart"
	"harvestease-backend/internal/config"
	"harvestease-backend/internal/crop"
	"harvestease-backend/internal/database"
	"harvestease-backend/internal/disease"
	"harvestease-backend/internal/expense"
	"harvestease-backend/internal/farmer"
	"harvestease-backend/internal/knowledge"
	"harvestease-backend/internal/logger"
	"harvestease-backend/internal/models"
	"harvestease-backend/internal/report"
	"harvestease-backend/internal/sales"
	"harvestease-backend/internal/stock"
	"harvestease-backend/internal/upload"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		BodyLimit: upload.MaxImageSize + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			logger.WithModule("http").Errorf("unexpected error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(fiberlogger.New())

	// Uploaded images, read-only
	app.Static("/uploads", cfg.UploadPath)

	identifier := disease.NewHTTPIdentifier(cfg.DiseaseAPIURL, cfg.DiseaseAPIKey)

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Optional auth: identity is attached when a token is presented,
	// anonymous requests pass through
	optional := api.Group("")
	optional.Use(auth.OptionalJWTMiddleware(cfg))

	// Sales ledger
	optional.Post("/sales", sales.CreateSaleHandler())
	optional.Get("/sales", sales.ListSalesHandler())
	optional.Get("/sales/:id", sales.GetSaleHandler())
	optional.Put("/sales/:id", sales.UpdateSaleHandler())
	optional.Delete("/sales/:id", sales.DeleteSaleHandler())

	// Expense ledger
	optional.Post("/expenses", expense.CreateExpenseHandler())
	optional.Get("/expenses", expense.ListExpensesHandler())
	optional.Get("/expenses/:id", expense.GetExpenseHandler())
	optional.Put("/expenses/:id", expense.UpdateExpenseHandler())
	optional.Delete("/expenses/:id", expense.DeleteExpenseHandler())

	// Marketplace stock, public browsing
	optional.Get("/stocks", stock.ListStocksHandler())
	optional.Get("/stocks/:id", stock.GetStockHandler())

	// Disease knowledge base, public lookup
	optional.Get("/diseases", disease.ListDiseasesHandler())
	optional.Post("/diseases/search", disease.SearchDiseasesHandler(identifier))
	optional.Get("/diseases/:id", disease.GetDiseaseHandler())

	// Community posts
	optional.Post("/posts", knowledge.CreatePostHandler())
	optional.Get("/posts", knowledge.ListPostsHandler())
	optional.Get("/posts/:id", knowledge.GetPostHandler())
	optional.Put("/posts/:id", knowledge.UpdatePostHandler())
	optional.Delete("/posts/:id", knowledge.DeletePostHandler())

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Stock writes
	protected.Post("/stocks", stock.CreateStockHandler())
	protected.Put("/stocks/:id", stock.UpdateStockHandler())
	protected.Delete("/stocks/:id", stock.DeleteStockHandler())

	// Shopping cart
	protected.Get("/cart", cart.GetCartHandler())
	protected.Post("/cart/items", cart.AddItemHandler())
	protected.Put("/cart/items/:id", cart.UpdateItemHandler())
	protected.Delete("/cart/items/:id", cart.RemoveItemHandler())

	// Image upload, shared by diseases, stock and posts
	protected.Post("/uploads/images", upload.ImageHandler(cfg.UploadPath))

	// Crop lifecycle, token required on every route
	crops := app.Group("/crops")
	crops.Use(auth.JWTMiddleware(cfg))
	crops.Post("/", crop.CreateCropHandler())
	crops.Get("/", crop.ListCropsHandler())
	crops.Get("/varieties", crop.ListVarietiesHandler())
	crops.Get("/:id", crop.GetCropHandler())
	crops.Put("/:id", crop.UpdateCropHandler())
	crops.Delete("/:id", crop.DeleteCropHandler())

	// Admin
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	adminRoutes.Get("/users", admin.ListUsersHandler())
	adminRoutes.Put("/users/:id", admin.UpdateUserHandler())
	adminRoutes.Delete("/users/:id", admin.DeleteUserHandler())

	adminRoutes.Post("/farmers", farmer.CreateFarmerHandler())
	adminRoutes.Get("/farmers", farmer.ListFarmersHandler())
	adminRoutes.Get("/farmers/:id", farmer.GetFarmerHandler())
	adminRoutes.Put("/farmers/:id", farmer.UpdateFarmerHandler())
	adminRoutes.Delete("/farmers/:id", farmer.DeleteFarmerHandler())

	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler())

	// Disease knowledge writes
	adminRoutes.Post("/diseases", disease.CreateDiseaseHandler())
	adminRoutes.Put("/diseases/:id", disease.UpdateDiseaseHandler())
	adminRoutes.Delete("/diseases/:id", disease.DeleteDiseaseHandler())

	// Analytics and reporting, admin only
	reports := protected.Group("/report")
	reports.Use(auth.RequireRole(models.RoleAdmin))
	reports.Get("/sales/summary", report.SalesSummaryHandler())
	reports.Get("/expenses/summary", report.ExpensesSummaryHandler())
	reports.Get("/profit", report.ProfitHandler())
	reports.Get("/crop-profit", report.CropProfitHandler())
	reports.Get("/regional-profit", report.RegionalProfitHandler())

	logger.WithModule("server").Infof("listening on port %s", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logger.WithModule("server").Fatalf("server stopped: %v", err)
	}
}
