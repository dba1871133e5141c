// Package server exposes the sizing engine over HTTP for integration with
// plant engineering tools. Endpoints are stateless; the valve catalog is
// read through the configured store.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/procflow/sizer-cli/internal/cavitation"
	"github.com/procflow/sizer-cli/internal/model"
	"github.com/procflow/sizer-cli/internal/noise"
	"github.com/procflow/sizer-cli/internal/sizing"
	"github.com/procflow/sizer-cli/internal/units"
	"github.com/procflow/sizer-cli/internal/validate"
	"github.com/procflow/sizer-cli/internal/valvedb"
)

// Config tunes the HTTP server.
type Config struct {
	Port           int     `yaml:"port" mapstructure:"port"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	Burst          int     `yaml:"burst" mapstructure:"burst"`
}

// Server wires the sizing engine behind a chi router.
type Server struct {
	cfg   Config
	store valvedb.Store
	sys   units.System
}

// New builds a Server. The store may be nil, in which case the catalog
// endpoints report 503.
func New(cfg Config, store valvedb.Store, sys units.System) *Server {
	return &Server{cfg: cfg, store: store, sys: sys}
}

// Router assembles the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.throttle())

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/size/liquid", s.handleLiquid)
		r.Post("/size/gas", s.handleGas)
		r.Post("/cavitation", s.handleCavitation)
		r.Post("/noise", s.handleNoise)
		r.Get("/valves", s.handleListValves)
		r.Get("/fluids/liquid", s.handleListLiquids)
		r.Get("/fluids/gas", s.handleListGases)
	})

	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", s.cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

// throttle applies a shared token bucket across all clients. Sizing is
// cheap but the catalog store is not unlimited.
func (s *Server) throttle() func(http.Handler) http.Handler {
	rps := s.cfg.RequestsPerSec
	if rps <= 0 {
		rps = 50
	}
	burst := s.cfg.Burst
	if burst <= 0 {
		burst = 100
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// liquidRequest is the wire shape of a liquid sizing call.
type liquidRequest struct {
	System string                  `json:"system"`
	Proc   model.ProcessConditions `json:"process"`
	Fluid  model.LiquidProperties  `json:"fluid"`
	Valve  valveRequest            `json:"valve"`
}

type gasRequest struct {
	System string                  `json:"system"`
	Proc   model.ProcessConditions `json:"process"`
	Gas    model.GasProperties     `json:"gas"`
	Valve  valveRequest            `json:"valve"`
}

type valveRequest struct {
	Style         string  `json:"style"`
	ValveDiameter float64 `json:"valve_diameter"`
	PipeDiameter  float64 `json:"pipe_diameter"`
	FL            float64 `json:"fl"`
	XT            float64 `json:"xt"`
	Fd            float64 `json:"fd"`
	RatedCv       float64 `json:"rated_cv"`
}

func (v valveRequest) geometry() (model.ValveGeometry, error) {
	style, ok := model.ParseStyle(v.Style)
	if !ok {
		return model.ValveGeometry{}, eris.Errorf("unknown valve style %q", v.Style)
	}
	return model.ValveGeometry{
		Style:         style,
		ValveDiameter: v.ValveDiameter,
		PipeDiameter:  v.PipeDiameter,
		FL:            v.FL,
		XT:            v.XT,
		Fd:            v.Fd,
		RatedCv:       v.RatedCv,
	}, nil
}

func parseSystem(name string) units.System {
	sys, err := units.ParseSystem(name)
	if err != nil {
		return units.Metric
	}
	return sys
}

func (s *Server) handleLiquid(w http.ResponseWriter, r *http.Request) {
	var req liquidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	valve, err := req.Valve.geometry()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	findings := validate.Liquid(req.Proc, req.Fluid, valve)
	if err := findings.Err(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	sys := parseSystem(req.System)
	res, err := sizing.NewLiquid(sys).Size(req.Proc, req.Fluid, valve)
	if err != nil {
		status := http.StatusInternalServerError
		if sizing.IsInputError(err) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}
	res.Warnings = append(findings.Warnings(), res.Warnings...)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGas(w http.ResponseWriter, r *http.Request) {
	var req gasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	valve, err := req.Valve.geometry()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	findings := validate.Gas(req.Proc, req.Gas, valve)
	if err := findings.Err(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	sys := parseSystem(req.System)
	res, err := sizing.NewGas(sys).Size(req.Proc, req.Gas, valve)
	if err != nil {
		status := http.StatusInternalServerError
		if sizing.IsInputError(err) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}
	res.Warnings = append(findings.Warnings(), res.Warnings...)
	writeJSON(w, http.StatusOK, res)
}

type cavitationRequest struct {
	Proc          model.ProcessConditions `json:"process"`
	VaporPressure float64                 `json:"vapor_pressure"`
	Valve         valveRequest            `json:"valve"`
}

func (s *Server) handleCavitation(w http.ResponseWriter, r *http.Request) {
	var req cavitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	valve, err := req.Valve.geometry()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := cavitation.Assess(cavitation.Params{
		Proc:          req.Proc,
		VaporPressure: req.VaporPressure,
		Valve:         valve,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if sizing.IsInputError(err) || sizing.IsConfigError(err) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type noiseRequest struct {
	Proc          model.ProcessConditions `json:"process"`
	Gas           model.GasProperties     `json:"gas"`
	Cv            float64                 `json:"cv"`
	PipeDiameter  float64                 `json:"pipe_diameter"`
	WallThickness float64                 `json:"wall_thickness"`
	Schedule      string                  `json:"schedule"`
	Distance      float64                 `json:"distance"`
}

func (s *Server) handleNoise(w http.ResponseWriter, r *http.Request) {
	var req noiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := noise.Predict(noise.Params{
		Proc:          req.Proc,
		Gas:           req.Gas,
		Cv:            req.Cv,
		PipeDiameter:  req.PipeDiameter,
		WallThickness: req.WallThickness,
		Schedule:      req.Schedule,
		Distance:      req.Distance,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if sizing.IsInputError(err) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListValves(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog store not configured")
		return
	}
	filter := valvedb.ValveFilter{
		Style:       r.URL.Query().Get("style"),
		NominalSize: r.URL.Query().Get("size"),
	}
	valves, err := s.store.ListValves(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, valves)
}

func (s *Server) handleListLiquids(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog store not configured")
		return
	}
	fluids, err := s.store.ListLiquids(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, fluids)
}

func (s *Server) handleListGases(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog store not configured")
		return
	}
	fluids, err := s.store.ListGases(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, fluids)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
