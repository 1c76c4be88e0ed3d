package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"tourdesk-service/internal/domain/query"
	"tourdesk-service/internal/infrastructure/config"
	"tourdesk-service/internal/infrastructure/persistence"
	mongoRepo "tourdesk-service/internal/interface/repository"
	"tourdesk-service/internal/usecase"
	"tourdesk-service/pkg/apperr"
	"tourdesk-service/pkg/logger"
	"tourdesk-service/pkg/metrics"
	"tourdesk-service/pkg/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	domainRepo "tourdesk-service/internal/domain/repository"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Tourdesk Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	db := persistence.GetDatabase(mongoClient, cfg.MongoDB)

	// Set up the optional country directory
	var countryRepository domainRepo.CountryRepository
	if cfg.PostgresURI != "" {
		gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		countryRepository = mongoRepo.NewGormCountryRepository(gormDB)
	}

	// Set up repositories
	operatorRepo := mongoRepo.NewMongoOperatorRepository(db)
	agentRepo := mongoRepo.NewMongoAgentRepository(db)
	bookingRepo := mongoRepo.NewMongoBookingRepository(db)

	// Set up the optional summary cache
	var summaryCache *usecase.SummaryCache
	if cfg.RedisAddr != "" {
		redisClient, err := persistence.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatal("Failed to connect to redis", "error", err)
		}
		summaryCache = usecase.NewSummaryCache(redisClient, cfg.SummaryCacheTTL, log)
	}

	appMetrics := metrics.NewMetrics("tourdesk")
	resolver := usecase.NewResolver(operatorRepo, agentRepo, summaryCache, appMetrics, log)
	transfer := usecase.NewTransfer(bookingRepo, agentRepo, countryRepository, resolver, appMetrics, log)

	// The full CRUD API lives in the gateway service; this binary exposes
	// read endpoints for operational checks plus metrics and health.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, pingCancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer pingCancel()
		if err := mongoClient.Ping(pingCtx, nil); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Store unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	mux.HandleFunc("/bookings", func(w http.ResponseWriter, r *http.Request) {
		f, page, err := bookingQuery(r)
		if err != nil {
			writeError(w, appMetrics, "bookings.list", err)
			return
		}
		opCtx, opCancel := context.WithTimeout(r.Context(), cfg.StoreTimeout)
		defer opCancel()

		bookings, err := bookingRepo.FindMany(opCtx, f, query.DefaultSort(), page)
		if err != nil {
			writeError(w, appMetrics, "bookings.list", err)
			return
		}
		views, err := resolver.BookingViews(opCtx, bookings)
		if err != nil {
			writeError(w, appMetrics, "bookings.list", err)
			return
		}
		writeJSON(w, map[string]interface{}{"bookings": views})
	})

	mux.HandleFunc("/bookings/export", func(w http.ResponseWriter, r *http.Request) {
		f, page, err := bookingQuery(r)
		if err != nil {
			writeError(w, appMetrics, "bookings.export", err)
			return
		}
		opCtx, opCancel := context.WithTimeout(r.Context(), cfg.StoreTimeout)
		defer opCancel()

		rows, err := transfer.ExportBookings(opCtx, f, query.DefaultSort(), page)
		if err != nil {
			writeError(w, appMetrics, "bookings.export", err)
			return
		}
		writeJSON(w, map[string]interface{}{"columns": usecase.BookingColumns, "rows": rows})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info("HTTP server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", "error", err)
		}
	}()

	// Wait for termination signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect failed", "error", err)
	}
	log.Info("Stopped")
}

// bookingQuery maps URL parameters to a structured filter request
func bookingQuery(r *http.Request) (query.Filter, query.Page, error) {
	f := query.Filter{}
	q := r.URL.Query()

	if country := q.Get("country"); country != "" {
		f["country"] = query.Contains{Text: country}
	}
	if name := q.Get("name"); name != "" {
		f["name"] = query.Contains{Text: name}
	}
	if agent := q.Get("agent_id"); agent != "" {
		f["agent_id"] = query.RefEq{ID: agent}
	}

	dateRange := query.Range{}
	if from := q.Get("from"); from != "" {
		t, err := utils.ParseDate("from", from)
		if err != nil {
			return nil, query.Page{}, err
		}
		dateRange.From = &t
	}
	if to := q.Get("to"); to != "" {
		t, err := utils.ParseDate("to", to)
		if err != nil {
			return nil, query.Page{}, err
		}
		dateRange.To = &t
	}
	if dateRange.From != nil || dateRange.To != nil {
		f["date_from"] = dateRange
	}

	page := query.Page{}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.ParseInt(limit, 10, 64)
		if err != nil {
			return nil, query.Page{}, apperr.Validationf("limit: invalid number %q", limit)
		}
		page.Limit = n
	}
	if offset := q.Get("offset"); offset != "" {
		n, err := strconv.ParseInt(offset, 10, 64)
		if err != nil {
			return nil, query.Page{}, apperr.Validationf("offset: invalid number %q", offset)
		}
		page.Offset = n
	}
	return f, page, nil
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, m *metrics.Metrics, op string, err error) {
	m.ErrorsCount.WithLabelValues(op).Inc()
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrInvalidIdentifier),
		errors.Is(err, apperr.ErrUnsupportedFilter):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrDuplicateKey):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
