// Package router assembles the HTTP engine: middleware, documentation,
// health check and the authenticated /api/v1 routes.
package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"budgetbook/internal/config"
	_ "budgetbook/internal/docs" // registers the swagger spec
	"budgetbook/internal/handlers"
	"budgetbook/internal/middleware"
	"budgetbook/internal/services"
)

// New wires services, handlers and middleware over db.
func New(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	verifier, err := middleware.NewTokenVerifier(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build token verifier: %w", err)
	}

	// Services
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	accountService := services.NewAccountService(db)
	categoryService := services.NewCategoryService(db)
	budgetService := services.NewBudgetService(db)
	monthService := services.NewMonthService(db)
	transactionService := services.NewTransactionService(db)
	reportService := services.NewReportService(db)
	searchService := services.NewSearchService(db)

	// Handlers
	profileHandler := handlers.NewProfileHandler(userService)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	monthHandler := handlers.NewMonthHandler(monthService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	reportHandler := handlers.NewReportHandler(reportService)
	searchHandler := handlers.NewSearchHandler(searchService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	router.Use(middleware.ErrorHandler())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(verifier, userService))

	v1.GET("/profile", profileHandler.GetProfile)

	accounts := v1.Group("/accounts")
	accounts.GET("", accountHandler.ListAccounts)
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	categories := v1.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	budgets := v1.Group("/budgets")
	budgets.GET("", budgetHandler.ListTemplates)
	budgets.POST("", budgetHandler.CreateTemplate)
	budgets.GET("/:id", budgetHandler.GetTemplate)
	budgets.PUT("/:id", budgetHandler.UpdateTemplate)
	budgets.DELETE("/:id", budgetHandler.DeleteTemplate)
	budgets.POST("/:id/definitions", budgetHandler.CreateDefinition)
	budgets.PUT("/:id/definitions/:defId", budgetHandler.UpdateDefinition)
	budgets.DELETE("/:id/definitions/:defId", budgetHandler.DeleteDefinition)

	months := v1.Group("/months")
	months.GET("", monthHandler.ListMonths)
	months.POST("", monthHandler.CreateMonth)
	months.GET("/:id", monthHandler.GetMonth)
	months.PUT("/:id", monthHandler.UpdateMonth)
	months.DELETE("/:id", monthHandler.DeleteMonth)
	months.POST("/:id/apply-budget", monthHandler.ApplyBudget)

	transactions := v1.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.PATCH("/:id/status", transactionHandler.UpdateStatus)
	transactions.POST("/:id/cycle-status", transactionHandler.CycleStatus)

	reports := v1.Group("/reports")
	reports.GET("/account-summary", reportHandler.AccountSummary)
	reports.GET("/category-detail", reportHandler.CategoryDetail)
	reports.GET("/monthly-summary/:monthId", reportHandler.MonthlySummary)

	v1.GET("/search", searchHandler.Search)

	return router, nil
}
