package main

import (
	"log"
	"time"

	"store/internal/config"
	"store/internal/domain/model"
	"store/internal/handler"
	infraAuth "store/internal/infra/auth"
	"store/internal/infra/db"
	infraRepo "store/internal/infra/repository"
	"store/internal/metrics"
	"store/internal/payment"
	"store/internal/server"
	"store/internal/usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal(err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Supplier{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Sale{},
		&model.SaleItem{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	); err != nil {
		log.Fatal(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	supplierRepo := infraRepo.NewSupplierGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	saleRepo := infraRepo.NewSaleGormRepository(gormDB)
	saleItemRepo := infraRepo.NewSaleItemGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := infraAuth.NewBcryptPasswordHasher(12)
	verifier := infraAuth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := infraAuth.NewJWTIssuer(cfg.JWTSecret)

	//決済。外部プロバイダを繋ぐまではシミュレータ
	gateway := payment.NewSimulated()

	//Prometheus
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector())
	promReg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	checkoutMetrics := metrics.NewCheckoutMetrics(promReg)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, hasher, verifier, issuer, clock)
	productUC := usecase.NewProductUsecase(productRepo, categoryRepo, supplierRepo, inventoryRepo, auditRepo)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo)
	supplierUC := usecase.NewSupplierUsecase(supplierRepo)
	cartUC := usecase.NewCartUsecase(txManager, cartRepo, cartRepo, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, idGen, gateway)
	saleUC := usecase.NewSaleUsecase(saleRepo, saleItemRepo)
	adminSaleUC := usecase.NewAdminSaleUsecase(txManager, saleRepo, saleItemRepo, auditRepo)
	reportUC := usecase.NewReportUsecase(saleRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:          handler.NewAuthHandler(authUC),
		Product:       handler.NewProductHandler(productUC),
		Category:      handler.NewCategoryHandler(categoryUC),
		Cart:          handler.NewCartHandler(cartUC),
		Checkout:      handler.NewCheckoutHandler(checkoutUC, checkoutMetrics),
		Sale:          handler.NewSaleHandler(saleUC),
		AdminProduct:  handler.NewAdminProductHandler(productUC),
		AdminCategory: handler.NewAdminCategoryHandler(categoryUC),
		AdminSupplier: handler.NewAdminSupplierHandler(supplierUC),
		AdminSale:     handler.NewAdminSaleHandler(adminSaleUC, reportUC),
	}

	//Server起動
	if err := server.Start(cfg, handlers, userRepo, promReg); err != nil {
		log.Fatal(err)
	}
}
