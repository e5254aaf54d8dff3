package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/arushi-crafts/storefront-api/config"
	"github.com/arushi-crafts/storefront-api/controllers"
	"github.com/arushi-crafts/storefront-api/middleware"
	"github.com/arushi-crafts/storefront-api/models"
	"github.com/arushi-crafts/storefront-api/services"
)

func main() {
	log.Println("Starting Storefront API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Size{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.PersonalizationRequest{},
		&models.UserAddress{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.UPIPaymentMethod{},
		&models.Order{},
		&models.OrderItem{},
		&models.ReturnRequest{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Design image storage
	s3Service, err := services.InitS3Service()
	if err != nil {
		log.Fatalf("Failed to initialize S3 service: %v", err)
	}
	services.InitImageService(s3Service)

	router := setupRouter(cfg)

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the Gin engine with all API routes.
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", cfg.SessionKeyHeader)
	corsConfig.ExposeHeaders = append(corsConfig.ExposeHeaders, cfg.SessionKeyHeader)
	router.Use(cors.New(corsConfig))

	identity := middleware.ResolveIdentity(cfg)
	authenticated := middleware.EnsureValidToken(cfg)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		// Catalog (public)
		v1.GET("/products", controllers.ListProducts)
		v1.GET("/products/:id", controllers.GetProduct)
		v1.GET("/upi-methods", controllers.ListUPIMethods)

		// Cart and checkout (users and guests)
		cart := v1.Group("", identity)
		{
			cart.GET("/cart", controllers.GetCart)
			cart.POST("/cart/items", controllers.AddCartItem)
			cart.PUT("/cart/items", controllers.UpdateCartItem)
			cart.DELETE("/cart/items", controllers.RemoveCartItem)
			cart.DELETE("/cart", controllers.ClearCart)
			cart.GET("/cart/count", controllers.CartCount)
			cart.GET("/cart/validate-stock", controllers.ValidateCartStock)
			cart.POST("/checkout", controllers.PlaceOrder)
		}

		// Registered users only
		user := v1.Group("", authenticated)
		{
			user.POST("/users", controllers.CreateUser)
			user.GET("/users/me", controllers.GetCurrentUser)
			user.PUT("/users/me", controllers.UpdateCurrentUser)

			user.POST("/cart/merge", controllers.MergeCart)

			user.POST("/personalizations", controllers.SubmitPersonalization)
			user.GET("/personalizations", controllers.ListPersonalizations)
			user.POST("/personalizations/:id/accept", controllers.AcceptPersonalization)
			user.PUT("/personalizations/:id/quantity", controllers.SetPersonalizationQuantity)

			user.GET("/orders", controllers.ListOrders)
			user.GET("/orders/:id", controllers.GetOrder)
			user.POST("/orders/:id/return", controllers.CreateReturnRequest)

			user.GET("/wallet", controllers.GetWallet)
			user.GET("/wallet/transactions", controllers.ListWalletTransactions)
			user.POST("/wallet/top-up", controllers.TopUpWallet)

			user.GET("/addresses", controllers.ListAddresses)
			user.POST("/addresses", controllers.CreateAddress)
		}

		// Admin (role checked in the handlers)
		admin := v1.Group("/admin", authenticated)
		{
			admin.POST("/personalizations/:id/approve", controllers.ApprovePersonalization)
			admin.POST("/personalizations/:id/reject", controllers.RejectPersonalization)

			admin.GET("/orders", controllers.ListAllOrders)
			admin.POST("/orders/:id/ship", controllers.ShipOrder)
			admin.POST("/orders/:id/deliver", controllers.DeliverOrder)
			admin.POST("/orders/:id/approve-payment", controllers.ApproveOrderPayment)
			admin.POST("/orders/:id/cancel", controllers.CancelOrder)
			admin.POST("/orders/promote-shipped", controllers.PromoteShipped)

			admin.GET("/return-requests", controllers.ListReturnRequests)
			admin.POST("/return-requests/:id/approve", controllers.ApproveReturn)
			admin.POST("/return-requests/:id/reject", controllers.RejectReturn)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Storefront API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
