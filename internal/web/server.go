package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/stakeflow/ledger/internal/ledger"
	"github.com/stakeflow/ledger/internal/logger"
	"github.com/stakeflow/ledger/internal/state"
	"github.com/stakeflow/ledger/internal/types"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer exposes read-only ledger queries and the event history over HTTP.
// All mutations go through the engine directly; the web layer is an observer.
type WebServer struct {
	router *mux.Router
	engine *ledger.Engine
	port   string
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, engine *ledger.Engine) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		engine: engine,
		port:   port,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Routes register OPTIONS too: mux middleware only runs on matched
	// routes, so preflight requests need a matching method to reach the
	// CORS handler.
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET", http.MethodOptions)

	// API endpoints
	api := ws.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET", http.MethodOptions)
	api.HandleFunc("/pools", ws.handleGetPools).Methods("GET", http.MethodOptions)
	api.HandleFunc("/pools/{id:[0-9]+}", ws.handleGetPool).Methods("GET", http.MethodOptions)
	api.HandleFunc("/pools/{id:[0-9]+}/apy", ws.handleGetPoolAPY).Methods("GET", http.MethodOptions)
	api.HandleFunc("/users/{user}/positions", ws.handleGetUserPositions).Methods("GET", http.MethodOptions)
	api.HandleFunc("/events", ws.handleGetEvents).Methods("GET", http.MethodOptions)
	api.HandleFunc("/stats", ws.handleGetStats).Methods("GET", http.MethodOptions)
	api.HandleFunc("/treasury/{asset}", ws.handleGetTreasury).Methods("GET", http.MethodOptions)

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if !dbHealthy {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"gc_cycles":        memStats.NumGC,
		},
		"ledger_status": map[string]interface{}{
			"database_healthy": dbHealthy,
			"pool_count":       ws.engine.PoolCount(),
		},
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleGetPools returns all pools
func (ws *WebServer) handleGetPools(w http.ResponseWriter, r *http.Request) {
	pools := ws.engine.ListPools()

	response := map[string]interface{}{
		"pools": pools,
		"count": len(pools),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetPool returns a specific pool by ID
func (ws *WebServer) handleGetPool(w http.ResponseWriter, r *http.Request) {
	id, ok := ws.poolIDFromRequest(w, r)
	if !ok {
		return
	}

	pool, err := ws.engine.GetPool(id)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusNotFound, "Pool not found")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, pool)
}

// handleGetPoolAPY returns the pool's annualized rate in basis points
func (ws *WebServer) handleGetPoolAPY(w http.ResponseWriter, r *http.Request) {
	id, ok := ws.poolIDFromRequest(w, r)
	if !ok {
		return
	}

	apy, err := ws.engine.PoolAPY(id)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusNotFound, "Pool not found")
		return
	}

	response := map[string]interface{}{
		"poolId": id,
		"apyBps": apy,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetUserPositions returns a user's staked positions across all pools
func (ws *WebServer) handleGetUserPositions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	user := vars["user"]

	positions, err := ws.engine.UserPositions(user, time.Now().Unix())
	if err != nil {
		webLogger.Error().Err(err).Str("user", user).Msg("Failed to get user positions")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve positions")
		return
	}
	if positions == nil {
		positions = []types.UserPoolPosition{}
	}

	response := map[string]interface{}{
		"user":      user,
		"positions": positions,
		"count":     len(positions),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetEvents returns the recorded event history, newest first
func (ws *WebServer) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	filter := state.EventFilter{
		Kind: types.EventKind(r.URL.Query().Get("kind")),
		User: r.URL.Query().Get("user"),
	}
	if poolStr := r.URL.Query().Get("pool"); poolStr != "" {
		parsed, err := strconv.ParseUint(poolStr, 10, 64)
		if err != nil {
			ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid pool ID")
			return
		}
		poolID := types.PoolID(parsed)
		filter.PoolID = &poolID
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 || parsed > 1000 {
			ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		filter.Limit = parsed
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil || parsed < 0 {
			ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid offset")
			return
		}
		filter.Offset = parsed
	}

	events, err := state.GetEvents(filter)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get events")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}
	if events == nil {
		events = []types.Event{}
	}

	response := map[string]interface{}{
		"events": events,
		"count":  len(events),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetStats returns protocol-wide and per-day aggregates
func (ws *WebServer) handleGetStats(w http.ResponseWriter, r *http.Request) {
	protocol, err := state.GetProtocolStats()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get protocol stats")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve stats")
		return
	}

	days := 30
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		if parsed, err := strconv.Atoi(daysStr); err == nil && parsed > 0 && parsed <= 365 {
			days = parsed
		}
	}
	daily, err := state.GetDailyStats(days)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get daily stats")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve stats")
		return
	}
	if daily == nil {
		daily = []state.DailyStats{}
	}

	response := map[string]interface{}{
		"protocol": protocol,
		"daily":    daily,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetTreasury returns the accumulated fee balance for an asset
func (ws *WebServer) handleGetTreasury(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	asset := types.Asset(vars["asset"])

	response := map[string]interface{}{
		"asset":   asset,
		"balance": ws.engine.TreasuryBalance(asset),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// poolIDFromRequest parses the {id} path variable
func (ws *WebServer) poolIDFromRequest(w http.ResponseWriter, r *http.Request) (types.PoolID, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid pool ID")
		return 0, false
	}
	return types.PoolID(id), true
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		webLogger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// responseWriterWrapper captures the response status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriterWrapper) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}
