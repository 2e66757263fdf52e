package main // Entry point package

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/procafees/cafe-pos/internal/config"
	"github.com/procafees/cafe-pos/internal/database"
	"github.com/procafees/cafe-pos/internal/handler"
	"github.com/procafees/cafe-pos/internal/middleware"
	"github.com/procafees/cafe-pos/internal/projection"
	"github.com/procafees/cafe-pos/internal/queue"
	"github.com/procafees/cafe-pos/internal/repository"
	"github.com/procafees/cafe-pos/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Redis backs the response cache and the rate limiter.  A nil
	// client disables both; orders still flow.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	rateMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	orderRepo := repository.NewOrderRepo(db)
	tableRepo := repository.NewTableRepo(db)
	ticketRepo := repository.NewBarTicketRepo(db)
	sessionRepo := repository.NewCashSessionRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)

	// The in-process projection mirrors what every terminal-side
	// consumer sees.  Feeding it from the same queue keeps the
	// consumer path honest; the live overview endpoint serves it.
	store := projection.NewStore()
	seedProjection(db, tableRepo, store)

	handlers := router.Handlers{
		Orders:    handler.NewOrderHandler(orderRepo, tableRepo, ticketRepo, sessionRepo),
		Tables:    handler.NewTableHandler(tableRepo),
		Bar:       handler.NewBarHandler(ticketRepo, orderRepo),
		Cash:      handler.NewCashHandler(sessionRepo),
		Inventory: handler.NewInventoryHandler(inventoryRepo),
		Live:      handler.NewLiveHandler(store),
	}
	go func() {
		if err := queue.StartChangeConsumer(store); err != nil {
			log.Printf("change consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAPI(e, handlers, cfg.JWTSecret, cacheMW, rateMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// seedProjection loads the current floor plan of every tenant so table
// counts are correct before the first change event arrives.
func seedProjection(db *sql.DB, tables *repository.TableRepo, store *projection.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT tenant_id FROM tables`)
	if err != nil {
		log.Printf("projection seed skipped: %v", err)
		return
	}
	defer rows.Close()
	for rows.Next() {
		var tenantID uint64
		if err := rows.Scan(&tenantID); err != nil {
			log.Printf("projection seed skipped: %v", err)
			return
		}
		plan, err := tables.ListByTenant(ctx, tenantID)
		if err != nil {
			log.Printf("projection seed tenant %d skipped: %v", tenantID, err)
			continue
		}
		store.SeedTables(tenantID, plan)
	}
}
