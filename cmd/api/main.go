package main

import (
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/marcosvbento/storefront-backend/internal/address"
	"github.com/marcosvbento/storefront-backend/internal/cart"
	"github.com/marcosvbento/storefront-backend/internal/category"
	"github.com/marcosvbento/storefront-backend/internal/config"
	"github.com/marcosvbento/storefront-backend/internal/database"
	"github.com/marcosvbento/storefront-backend/internal/favorite"
	"github.com/marcosvbento/storefront-backend/internal/order"
	"github.com/marcosvbento/storefront-backend/internal/payment"
	"github.com/marcosvbento/storefront-backend/internal/product"
	"github.com/marcosvbento/storefront-backend/internal/shipping"
	"github.com/marcosvbento/storefront-backend/internal/testimonial"
	"github.com/marcosvbento/storefront-backend/internal/user"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Stripe-Signature",
	}))

	userService := user.NewService(user.NewPostgresRepository(db))
	userHandler := user.NewHandler(userService)

	productService := product.NewService(product.NewPostgresRepository(db))
	productHandler := product.NewHandler(productService)

	cartService := cart.NewService(cart.NewPostgresRepository(db), productService)
	cartHandler := cart.NewHandler(cartService)

	addressService := address.NewService(address.NewPostgresRepository(db))
	addressHandler := address.NewHandler(addressService)

	favoriteHandler := favorite.NewHandler(favorite.NewService(favorite.NewPostgresRepository(db), productService))
	categoryHandler := category.NewHandler(category.NewPostgresRepository(db))
	testimonialHandler := testimonial.NewHandler(testimonial.NewPostgresRepository(db))

	var zipcodes shipping.ZipCodeClient = shipping.NewViaCEPClient(cfg.ViaCEPBaseURL)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		zipcodes = shipping.NewCachedZipCodeClient(zipcodes, rdb)
	}
	shippingService := shipping.NewService(
		shipping.NewPostgresRulesRepository(db),
		productService,
		zipcodes,
		shipping.NewSimulatedCarrier(),
	)
	shippingHandler := shipping.NewHandler(shippingService)

	orderService := order.NewService(order.NewPostgresRepository(db), cartService, addressService)
	orderHandler := order.NewHandler(orderService)

	gateway, err := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	if err != nil {
		logger.Fatal("configure payment gateway", zap.Error(err))
	}
	paymentService := payment.NewService(payment.NewPostgresRepository(db), orderService, gateway, logger)
	paymentHandler := payment.NewHandler(paymentService)

	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	categoryHandler.RegisterPublicRoutes(app)
	testimonialHandler.RegisterPublicRoutes(app)
	shippingHandler.RegisterPublicRoutes(app)
	paymentHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
		Filter: func(c *fiber.Ctx) bool {
			// the gateway signs webhook deliveries itself
			return strings.HasPrefix(c.Path(), "/api/v1/payments/webhook")
		},
	}))

	userHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)
	favoriteHandler.RegisterProtectedRoutes(app)
	categoryHandler.RegisterProtectedRoutes(app)
	testimonialHandler.RegisterProtectedRoutes(app)
	shippingHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	paymentHandler.RegisterProtectedRoutes(app)

	logger.Info("listening", zap.String("addr", cfg.Addr))
	if err := app.Listen(cfg.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
