package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/aladdin-hotel/operations-sync-service/internal/adapters/handler"
	"github.com/aladdin-hotel/operations-sync-service/internal/adapters/middleware"
	"github.com/aladdin-hotel/operations-sync-service/internal/adapters/repository"
	"github.com/aladdin-hotel/operations-sync-service/internal/config"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/services"
	"github.com/aladdin-hotel/operations-sync-service/internal/hub"
)

func main() {

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changeHub := hub.New()

	// Change events go to Redis when a fanout channel is configured so
	// every API instance sees every commit; otherwise straight to the
	// local hub.
	var (
		sink        ports.ChangeSink = changeHub
		redisClient *redis.Client
	)
	if cfg.RedisAddress != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		log.Println("Connected to Redis successfully")

		fanout := hub.NewRedisFanout(redisClient, cfg.RedisChannel, uuid.NewString(), changeHub, config.NewCircuitBreaker("Redis-Fanout"))
		sink = fanout
		go func() {
			if err := fanout.Run(ctx); err != nil && ctx.Err() == nil {
				log.Fatalf("redis fanout stopped: %v", err)
			}
		}()
	}

	var (
		store ports.Store
		db    *sql.DB
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store = repository.NewMemoryStore(sink)
		log.Println("Using in-memory document store")
	case config.StoreDriverPostgres:
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		pgStore := repository.NewPostgresStore(db, sink)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to apply schema: %v", err)
		}
		store = pgStore
		log.Println("Connected to PostgreSQL successfully")
	}

	if cfg.SeedRooms {
		if err := repository.SeedRooms(ctx, store); err != nil {
			log.Fatalf("failed to seed rooms: %v", err)
		}
	}

	auditRecorder := services.NewAuditRecorder(store.Audit())
	coordinator := services.NewCoordinator(store, auditRecorder)
	requestsService := services.NewRequests(store, auditRecorder)
	leaveService := services.NewLeave(store, auditRecorder)
	laundryService := services.NewLaundry(store, auditRecorder)
	stockService := services.NewStock(store, auditRecorder)
	staffService := services.NewStaffDirectory(store, auditRecorder)
	auditExport := services.NewAuditExport(store.Audit())

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTPublicKey)

	maintenanceHandler := handler.NewMaintenanceHandler(coordinator, store.Rooms(), store.Tickets())
	requestsHandler := handler.NewRequestsHandler(requestsService, store.Requests())
	leaveHandler := handler.NewLeaveHandler(leaveService, store.Leave())
	laundryHandler := handler.NewLaundryHandler(laundryService, store.Laundry())
	stockHandler := handler.NewStockHandler(stockService)
	staffHandler := handler.NewStaffHandler(staffService)
	auditHandler := handler.NewAuditHandler(auditExport)
	watchHandler := handler.NewWatchHandler(changeHub, store)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := handler.NewMetrics(registry, changeHub.Len)

	staffOnly := []string{"admin", "staff"}
	adminOnly := []string{"admin"}

	route := func(mux *http.ServeMux, pattern, label string, roles []string, fn http.HandlerFunc) {
		mux.HandleFunc(pattern, metrics.Instrument(label, authMiddleware.RequireRole(roles, fn)))
	}

	mux := http.NewServeMux()

	// Health endpoints (OpenShift compatible)
	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/health/ready", healthHandler.Ready)
	mux.HandleFunc("/health/live", healthHandler.Live)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Rooms and maintenance tickets
	route(mux, "GET /api/rooms", "rooms.list", staffOnly, maintenanceHandler.ListRooms)
	route(mux, "GET /api/rooms/{id}", "rooms.get", staffOnly, maintenanceHandler.GetRoom)
	route(mux, "PUT /api/rooms/{id}/status", "rooms.status", staffOnly, maintenanceHandler.SetRoomStatus)
	route(mux, "GET /api/tickets", "tickets.list", staffOnly, maintenanceHandler.ListTickets)
	route(mux, "POST /api/tickets", "tickets.create", staffOnly, maintenanceHandler.CreateTicket)
	route(mux, "POST /api/tickets/{id}/resolve", "tickets.resolve", staffOnly, maintenanceHandler.ResolveTicket)

	// Staff-to-staff requests
	route(mux, "GET /api/requests", "requests.list", staffOnly, requestsHandler.List)
	route(mux, "POST /api/requests", "requests.send", staffOnly, requestsHandler.Send)
	route(mux, "POST /api/requests/{id}/respond", "requests.respond", staffOnly, requestsHandler.Respond)
	route(mux, "POST /api/requests/{id}/complete", "requests.complete", staffOnly, requestsHandler.Complete)

	// Leave applications
	route(mux, "GET /api/leave", "leave.list", staffOnly, leaveHandler.List)
	route(mux, "POST /api/leave", "leave.apply", staffOnly, leaveHandler.Apply)
	route(mux, "POST /api/leave/{id}/decide", "leave.decide", adminOnly, leaveHandler.Decide)
	route(mux, "DELETE /api/leave/{id}", "leave.remove", adminOnly, leaveHandler.Remove)

	// Laundry batches
	route(mux, "GET /api/laundry", "laundry.list", staffOnly, laundryHandler.List)
	route(mux, "GET /api/laundry/{id}", "laundry.get", staffOnly, laundryHandler.Get)
	route(mux, "POST /api/laundry", "laundry.send", staffOnly, laundryHandler.SendBatch)
	route(mux, "POST /api/laundry/{id}/items", "laundry.adjudicate", staffOnly, laundryHandler.AdjudicateItem)
	route(mux, "POST /api/laundry/{id}/finalize", "laundry.finalize", staffOnly, laundryHandler.FinalizeBatch)

	// Stock
	route(mux, "GET /api/stock", "stock.list", staffOnly, stockHandler.List)
	route(mux, "PUT /api/stock", "stock.upsert", staffOnly, stockHandler.Upsert)
	route(mux, "DELETE /api/stock/{id}", "stock.remove", adminOnly, stockHandler.Remove)

	// Staff directory
	route(mux, "GET /api/staff", "staff.list", staffOnly, staffHandler.List)
	route(mux, "POST /api/staff", "staff.create", adminOnly, staffHandler.Create)
	route(mux, "DELETE /api/staff/{id}", "staff.remove", adminOnly, staffHandler.Remove)

	// Audit export
	route(mux, "GET /api/audit", "audit.export", adminOnly, auditHandler.Export)

	// Live change feed; not instrumented, the connection is hijacked
	mux.HandleFunc("GET /api/watch", authMiddleware.RequireRole(staffOnly, watchHandler.Watch))

	corsOrigins := []string{"*"}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		corsOrigins = []string{origins}
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: middleware.CORSMiddleware(corsOrigins)(mux),
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal %v, shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Shutdown complete")
}
