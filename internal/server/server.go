package server

import (
	"log/slog"
	"net/http"

	"finboard/internal/handlers"
	"finboard/internal/services"
)

type Server struct {
	engine      *services.FilterEngine
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(engine *services.FilterEngine, dataset *services.Dataset, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		engine:      engine,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(engine, dataset, logger),
		sseHandlers: handlers.NewSSEHandlers(engine, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// Filter boundary
	s.mux.HandleFunc("GET /api/filters", s.apiHandlers.HandleFilters)
	s.mux.HandleFunc("POST /api/filters", s.apiHandlers.HandleUpdateFilters)
	s.mux.HandleFunc("POST /api/filters/reset", s.apiHandlers.HandleResetFilters)

	// Query boundary: one endpoint per aggregation view
	s.mux.HandleFunc("GET /api/kpi", s.apiHandlers.HandleKPI)
	s.mux.HandleFunc("GET /api/pnl", s.apiHandlers.HandlePnL)
	s.mux.HandleFunc("GET /api/yearly-series", s.apiHandlers.HandleYearlySeries)
	s.mux.HandleFunc("GET /api/monthly-series", s.apiHandlers.HandleMonthlySeries)
	s.mux.HandleFunc("GET /api/expense-series", s.apiHandlers.HandleExpenseSeries)
	s.mux.HandleFunc("GET /api/country-totals", s.apiHandlers.HandleCountryTotals)
	s.mux.HandleFunc("GET /api/region-totals", s.apiHandlers.HandleRegionTotals)
	s.mux.HandleFunc("GET /api/sales-pivot", s.apiHandlers.HandleSalesPivot)
	s.mux.HandleFunc("GET /api/scatter", s.apiHandlers.HandleScatter)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/kpi", s.sseHandlers.HandleKPI)
	s.mux.HandleFunc("GET /sse/pnl", s.sseHandlers.HandlePnL)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
	s.mux.HandleFunc("POST /sse/filters", s.sseHandlers.HandleApplyFilters)
	s.mux.HandleFunc("POST /sse/filters/reset", s.sseHandlers.HandleResetFilters)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
