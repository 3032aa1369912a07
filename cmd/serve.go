package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/segmentio/encoding/json"
	"github.com/urfave/cli"

	"github.com/achilleasa/go-sightline/geom"
	"github.com/achilleasa/go-sightline/nav"
	"github.com/achilleasa/go-sightline/types"
)

// Box queries allocate the result buffer from the request; cap it so a
// client cannot ask for an arbitrarily large one.
const (
	defaultBoxLimit = 256
	maxBoxLimit     = 4096
)

// clampBoxLimit bounds a caller-supplied box-result capacity before it
// sizes an allocation: non-positive values fall back to the default and
// oversized ones are capped.
func clampBoxLimit(limit int) int {
	if limit <= 0 {
		return defaultBoxLimit
	}
	if limit > maxBoxLimit {
		return maxBoxLimit
	}
	return limit
}

type rayRequest struct {
	Origin        types.Vec3 `json:"origin"`
	Dir           types.Vec3 `json:"dir"`
	MaxDist       float32    `json:"maxDist"`
	First         bool       `json:"first"`
	IgnoreDynamic bool       `json:"ignoreDynamic"`
}

type pointRequest struct {
	Point types.Vec3 `json:"point"`
}

type boxRequest struct {
	Min   types.Vec3 `json:"min"`
	Max   types.Vec3 `json:"max"`
	Limit int        `json:"limit"`
}

type idsResponse struct {
	IDs   []uint32 `json:"ids"`
	Count int      `json:"count"`
}

type boxResponse struct {
	IDs       []uint32 `json:"ids"`
	Count     int      `json:"count"`
	Truncated bool     `json:"truncated"`
}

type statsResponse struct {
	Name       string    `json:"name"`
	Bounds     geom.AABB `json:"bounds"`
	Primitives uint32    `json:"primitives"`
	UsesRemap  bool      `json:"usesRemap"`
}

// queryService answers broad-phase queries against one loaded map.
type queryService struct {
	m *nav.Map
}

func (s *queryService) handleRay(w http.ResponseWriter, r *http.Request) {
	defer observeQuery("ray", time.Now())

	var req rayRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	ids := s.m.RayCandidates(req.Origin, req.Dir, req.MaxDist, req.First, req.IgnoreDynamic)
	writeJSON(w, idsResponse{IDs: nonNil(ids), Count: len(ids)})
}

func (s *queryService) handlePoint(w http.ResponseWriter, r *http.Request) {
	defer observeQuery("point", time.Now())

	var req pointRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	ids := s.m.ObjectsAt(req.Point)
	writeJSON(w, idsResponse{IDs: nonNil(ids), Count: len(ids)})
}

func (s *queryService) handleBox(w http.ResponseWriter, r *http.Request) {
	defer observeQuery("box", time.Now())

	var req boxRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	limit := clampBoxLimit(req.Limit)
	out := make([]uint32, limit)
	count, found := s.m.ObjectsInBox(geom.AABB{Min: req.Min, Max: req.Max}, out)
	writeJSON(w, boxResponse{
		IDs:       out[:count],
		Count:     count,
		Truncated: found && count == limit,
	})
}

func (s *queryService) handleStats(w http.ResponseWriter, r *http.Request) {
	defer observeQuery("stats", time.Now())

	writeJSON(w, statsResponse{
		Name:       s.m.Name(),
		Bounds:     s.m.Bounds(),
		Primitives: s.m.PrimitiveCount(),
		UsesRemap:  s.m.UsesRemap(),
	})
}

// newRouter wires the query endpoints under /api and exposes the Prometheus
// registry on /metrics.
func newRouter(svc *queryService) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/ray", svc.handleRay).Methods(http.MethodPost)
	api.HandleFunc("/point", svc.handlePoint).Methods(http.MethodPost)
	api.HandleFunc("/box", svc.handleBox).Methods(http.MethodPost)
	api.HandleFunc("/stats", svc.handleStats).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// Serve loads an index and answers queries over HTTP.
func Serve(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return fmt.Errorf("serve: expected an index file argument")
	}

	m, err := nav.Load(ctx.Args().First(), nil)
	if err != nil {
		logger.Error(err)
		return err
	}

	srv := &http.Server{
		Addr:         ctx.String("addr"),
		Handler:      cors.Default().Handler(newRouter(&queryService{m: m})),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Noticef(`answering queries for "%s" on %s`, m.Name(), srv.Addr)
	if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error(err)
		return err
	}
	return nil
}

func decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %s", err), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Errorf("failed to encode response: %s", err)
	}
}

// nonNil keeps empty result sets rendering as [] rather than null.
func nonNil(ids []uint32) []uint32 {
	if ids == nil {
		return []uint32{}
	}
	return ids
}
