package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wichananm65/apparel-shop-backend/internal/admin"
	"github.com/wichananm65/apparel-shop-backend/internal/cart"
	"github.com/wichananm65/apparel-shop-backend/internal/category"
	"github.com/wichananm65/apparel-shop-backend/internal/checkout"
	"github.com/wichananm65/apparel-shop-backend/internal/config"
	"github.com/wichananm65/apparel-shop-backend/internal/database"
	"github.com/wichananm65/apparel-shop-backend/internal/enquiry"
	"github.com/wichananm65/apparel-shop-backend/internal/logging"
	"github.com/wichananm65/apparel-shop-backend/internal/notification"
	"github.com/wichananm65/apparel-shop-backend/internal/order"
	"github.com/wichananm65/apparel-shop-backend/internal/postal"
	"github.com/wichananm65/apparel-shop-backend/internal/product"
	"github.com/wichananm65/apparel-shop-backend/internal/storage"
	"github.com/wichananm65/apparel-shop-backend/internal/upload"
)

// bodyLimit leaves room for a 10 MB image plus multipart framing.
const bodyLimit = upload.MaxImageBytes + 2<<20

type repositories struct {
	products   product.Repository
	categories category.Repository
	orders     order.Repository
	enquiries  enquiry.Repository
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL, database.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		log.Warn("no database configured, using in-memory repositories")
	case err != nil:
		log.Fatal("database connection failed", zap.Error(err))
	default:
		defer db.Close()
		if err := database.EnsureSchema(ctx, db); err != nil {
			log.Fatal("schema bootstrap failed", zap.Error(err))
		}
	}
	repos := buildRepositories(db, log)

	kv, closeKV := buildStorage(ctx, cfg, log)
	defer closeKV()

	productService := product.NewService(repos.products)
	categoryService := category.NewService(repos.categories, log)
	cartService := cart.NewService(kv, productService)
	orderService := order.NewService(repos.orders, buildNotifier(cfg, log), log)
	enquiryService := enquiry.NewService(repos.enquiries, log)
	checkoutService := checkout.NewService(nil, cartService, orderService, kv,
		postal.NewClient(cfg.PostalLookupURL, cfg.PostalTimeout, log),
		checkout.Merchant{Name: cfg.Merchant.Name, UPIID: cfg.Merchant.UPIID, WhatsApp: cfg.Merchant.WhatsApp},
		log)
	adminService := admin.NewService(cfg.AdminEmail, cfg.AdminPassword, cfg.JWTSecret, log)

	productHandler := product.NewHandler(productService)
	orderHandler := order.NewHandler(orderService)
	enquiryHandler := enquiry.NewHandler(enquiryService)

	app := fiber.New(fiber.Config{BodyLimit: bodyLimit, Immutable: true})
	setupCORS(app, cfg.CORSOrigins)
	app.Use(logging.Requests(log))

	category.NewHandler(categoryService).RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	cart.NewHandler(cartService).RegisterPublicRoutes(app)
	checkout.NewHandler(checkoutService).RegisterPublicRoutes(app)
	orderHandler.RegisterPublicRoutes(app)
	enquiryHandler.RegisterPublicRoutes(app)

	// sign-in must be registered before the guarded group
	admin.NewHandler(adminService).RegisterPublicRoutes(app)
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty, admin routes will reject every request")
	}
	adminGroup := app.Group("/api/v1/admin",
		jwtware.New(jwtware.Config{SigningKey: []byte(cfg.JWTSecret)}),
		admin.RequireAdmin,
	)
	productHandler.RegisterAdminRoutes(adminGroup)
	orderHandler.RegisterAdminRoutes(adminGroup)
	enquiryHandler.RegisterAdminRoutes(adminGroup)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("listening", zap.String("addr", cfg.Addr), zap.String("env", cfg.Env))
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func buildRepositories(db *sql.DB, log *zap.Logger) repositories {
	if db != nil {
		return repositories{
			products:   product.NewPostgresRepository(db),
			categories: category.NewPostgresRepository(db),
			orders:     order.NewPostgresRepository(db, log),
			enquiries:  enquiry.NewPostgresRepository(db),
		}
	}
	products := product.NewInMemoryRepository(devCatalog())
	return repositories{
		products:   products,
		categories: category.NewInMemoryRepository(category.Defaults()),
		orders:     order.NewInMemoryRepository(products, log),
		enquiries:  enquiry.NewInMemoryRepository(),
	}
}

// buildStorage returns the cart and pending-payment slot store and a close func.
func buildStorage(ctx context.Context, cfg config.Config, log *zap.Logger) (cart.Storage, func()) {
	if cfg.RedisURL == "" {
		log.Warn("no redis configured, session data is kept in memory")
		return storage.NewMemoryStore(), func() {}
	}
	client, err := storage.DialRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	return storage.NewRedisStore(client, "apparel", cfg.SessionTTL), func() {
		if err := client.Close(); err != nil {
			log.Warn("redis close failed", zap.Error(err))
		}
	}
}

func buildNotifier(cfg config.Config, log *zap.Logger) notification.Notifier {
	if cfg.SMTP.Host == "" {
		log.Info("no SMTP relay configured, notifications go to the log")
		return notification.NewLogNotifier(log)
	}
	return notification.NewSMTPNotifier(notification.SMTPConfig{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		From:        cfg.SMTP.From,
		AdminNotify: cfg.SMTP.AdminNotify,
	})
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + logging.SessionHeader,
	}))
}

// devCatalog seeds the in-memory catalog for database-less runs.
func devCatalog() []product.Product {
	now := time.Now().UTC()
	variants := func(colors []string, sizes []string, stock int) []product.Variant {
		out := make([]product.Variant, 0, len(colors)*len(sizes))
		for _, c := range colors {
			for _, s := range sizes {
				out = append(out, product.Variant{Color: c, Size: s, Stock: stock})
			}
		}
		return out
	}
	return []product.Product{
		{ID: 1, Name: "Classic Crew Tee", Description: "180 GSM combed cotton", Price: 450, Category: "T-Shirts", IsActive: true,
			Variants: variants([]string{"Black", "White", "Navy"}, []string{"S", "M", "L", "XL"}, 25), CreatedAt: now, UpdatedAt: now},
		{ID: 2, Name: "Pullover Hoodie", Description: "Fleece lined, kangaroo pocket", Price: 1100, Category: "Hoodies", IsActive: true,
			Variants: variants([]string{"Black", "Grey"}, []string{"M", "L", "XL"}, 10), CreatedAt: now, UpdatedAt: now},
		{ID: 3, Name: "Embroidered Cap", Description: "Adjustable strap", Price: 350, Category: "Caps", IsActive: true,
			Variants: variants([]string{"Black", "Red"}, []string{"Free"}, 40), CreatedAt: now, UpdatedAt: now},
	}
}
