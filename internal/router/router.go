package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/olatunbossun/craftcart/internal/config"
	"github.com/olatunbossun/craftcart/internal/handler"
	"github.com/olatunbossun/craftcart/internal/middleware"
	"github.com/olatunbossun/craftcart/internal/model"
	"github.com/olatunbossun/craftcart/internal/repository"
	"github.com/olatunbossun/craftcart/internal/service"
	"github.com/olatunbossun/craftcart/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, categoryRepo)
	categorySvc := service.NewCategoryService(categoryRepo)
	saleSvc := service.NewSaleService(saleRepo, productRepo, rdb)
	reviewSvc := service.NewReviewService(reviewRepo, productRepo)
	orderSvc := service.NewOrderService(orderRepo, productRepo, saleRepo, userRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	categoriesH := handler.NewCategoriesHandler(categorySvc)
	salesH := handler.NewSalesHandler(saleSvc)
	reviewsH := handler.NewReviewsHandler(reviewSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)
	priceH := handler.NewPriceCheckHandler(productRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Public catalog — browsing needs no account
	r.GET("/v1/products", productsH.List)
	r.GET("/v1/products/featured", productsH.ListFeatured)
	r.GET("/v1/products/:id", productsH.Get)
	r.GET("/v1/products/:id/price", priceH.GetPrice)
	r.GET("/v1/products/:id/reviews", reviewsH.ListByProduct)
	r.GET("/v1/products/:id/sales", salesH.ListByProduct)
	r.GET("/v1/categories", categoriesH.List)
	r.GET("/v1/categories/:id", categoriesH.Get)
	r.GET("/v1/sales/active", salesH.ListActive)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Sales — artisans manage their own, admins manage all
		sales := v1.Group("/sales", middleware.RequireRole(model.RoleArtisan, model.RoleAdmin))
		{
			sales.POST("", salesH.Create)
			sales.GET("", salesH.List)
			sales.GET("/:id", salesH.Get)
			sales.PUT("/:id", salesH.Update)
			sales.POST("/:id/activate", salesH.Activate)
			sales.POST("/:id/deactivate", salesH.Deactivate)
			sales.DELETE("/:id", salesH.Delete)
		}
		v1.GET("/artisans/:id/sales", middleware.RequireRole(model.RoleArtisan, model.RoleAdmin), salesH.ListByArtisan)

		// Products — artisans create and manage their own listings
		prods := v1.Group("/products", middleware.RequireRole(model.RoleArtisan, model.RoleAdmin))
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Delete)
		}

		// Categories — admin only writes
		cats := v1.Group("/categories", middleware.RequireRole(model.RoleAdmin))
		{
			cats.POST("", categoriesH.Create)
			cats.PUT("/:id", categoriesH.Update)
			cats.DELETE("/:id", categoriesH.Delete)
		}

		// Reviews — any authenticated user, ownership enforced in the service
		reviews := v1.Group("/reviews")
		{
			reviews.POST("", reviewsH.Create)
			reviews.GET("/mine", reviewsH.ListMine)
			reviews.PUT("/:id", reviewsH.Update)
			reviews.DELETE("/:id", reviewsH.Delete)
		}

		// Orders — buyers place and read their own
		orders := v1.Group("/orders")
		{
			orders.POST("", middleware.RequireRole(model.RoleBuyer, model.RoleAdmin), ordersH.Create)
			orders.GET("", ordersH.ListMine)
			orders.GET("/:id", ordersH.Get)
		}

		// Admin order management
		admin := v1.Group("/admin", middleware.RequireRole(model.RoleAdmin))
		{
			admin.GET("/orders", ordersH.ListAll)
			admin.PUT("/orders/:id/status", ordersH.UpdateStatus)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
