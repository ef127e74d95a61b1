package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/multierr"

	"hexisland/internal/astro"
	"hexisland/internal/config"
	"hexisland/internal/environment"
	"hexisland/internal/registry"
	"hexisland/internal/scenery"
	"hexisland/internal/simulation"
	"hexisland/internal/terrain"
)

type Server struct {
	cfg     *config.Config
	sim     *simulation.Simulation
	hub     *Hub
	httpSrv *http.Server
	logger  *log.Logger
}

func New(cfg *config.Config, sim *simulation.Simulation) *Server {
	s := &Server{
		cfg:    cfg,
		sim:    sim,
		logger: log.New(log.Writer(), "hexisland ", log.LstdFlags|log.Lmicroseconds),
	}
	s.hub = NewHub(s.logger, s.handleSocketMessage)
	return s
}

// Handler returns the HTTP routes without starting any background work.
// /ws answers 503 until Run has started the hub.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /map", s.handleMap)
	mux.HandleFunc("GET /environment", s.handleEnvironment)
	mux.HandleFunc("POST /environment", s.handleUpdateEnvironment)
	mux.HandleFunc("GET /buildings", s.handleBuildings)
	mux.HandleFunc("POST /buildings", s.handlePlaceBuilding)
	mux.HandleFunc("POST /buildings/rotate", s.handleRotateBuilding)
	mux.HandleFunc("DELETE /buildings", s.handleRemoveBuilding)
	mux.HandleFunc("GET /materials", s.handleMaterials)
	mux.HandleFunc("POST /regenerate", s.handleRegenerate)
	mux.HandleFunc("GET /ws", s.hub.serveWs)
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.hub.Run(ctx)

	simErr := make(chan error, 1)
	go func() {
		simErr <- s.sim.Run(ctx, s.cfg.TickRate(), nil)
	}()
	go s.stream(ctx)

	addr := s.cfg.Address()
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP server listening on %s", addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	runErr = multierr.Append(runErr, s.httpSrv.Shutdown(shutdownCtx))
	if err := <-simErr; err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		runErr = multierr.Append(runErr, err)
	}
	return runErr
}

// stream pushes the latest snapshot to every client at the configured
// stream rate, which is usually slower than the tick rate.
func (s *Server) stream(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.StreamRate())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.hub.Len() == 0 {
				continue
			}
			s.broadcast(MessageFrame, s.sim.Last())
		}
	}
}

func (s *Server) broadcast(kind string, payload any) {
	msg, err := newMessage(kind, payload)
	if err != nil {
		s.logger.Printf("encode %s message: %v", kind, err)
		return
	}
	s.hub.Broadcast(msg)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

type mapResponse struct {
	Map     *terrain.Map         `json:"map"`
	Seeds   []terrain.IslandSeed `json:"seeds"`
	Stats   terrain.Stats        `json:"stats"`
	Scenery *scenery.Layout      `json:"scenery"`
}

func (s *Server) mapView() mapResponse {
	m := s.sim.Map()
	return mapResponse{
		Map:     m,
		Seeds:   s.sim.Seeds(),
		Stats:   m.Stats(),
		Scenery: s.sim.Layout(),
	}
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.mapView())
}

func (s *Server) handleEnvironment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.Environment().Current())
}

// environmentUpdate carries the UI controls. Absent fields are left alone.
// Season is a name or an index 0..3.
type environmentUpdate struct {
	TimeOfDay *float64        `json:"timeOfDay"`
	Season    json.RawMessage `json:"season"`
	Weather   *string         `json:"weather"`
}

func parseSeason(raw json.RawMessage) (astro.Season, error) {
	var index int
	if err := json.Unmarshal(raw, &index); err == nil {
		if index < 0 || index > int(astro.Winter) {
			return 0, fmt.Errorf("%w: %d", environment.ErrUnknownSeason, index)
		}
		return astro.Season(index), nil
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return 0, fmt.Errorf("%w: %s", environment.ErrUnknownSeason, raw)
	}
	season, err := astro.ParseSeason(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", environment.ErrUnknownSeason, name)
	}
	return season, nil
}

func (s *Server) applyEnvironment(update environmentUpdate) (environment.Frame, error) {
	env := s.sim.Environment()
	var (
		season  astro.Season
		weather environment.Weather
		err     error
	)
	hasSeason := len(update.Season) > 0 && string(update.Season) != "null"
	if hasSeason {
		if season, err = parseSeason(update.Season); err != nil {
			return environment.Frame{}, err
		}
	}
	if update.Weather != nil {
		if weather, err = environment.ParseWeather(*update.Weather); err != nil {
			return environment.Frame{}, err
		}
	}

	frame := env.Current()
	if update.TimeOfDay != nil {
		frame = env.SetTimeOfDay(*update.TimeOfDay)
	}
	if hasSeason {
		if frame, err = env.SetSeason(season); err != nil {
			return environment.Frame{}, err
		}
	}
	if update.Weather != nil {
		if frame, err = env.SetWeather(weather); err != nil {
			return environment.Frame{}, err
		}
	}
	return frame, nil
}

func (s *Server) handleUpdateEnvironment(w http.ResponseWriter, r *http.Request) {
	var update environmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid environment update", http.StatusBadRequest)
		return
	}
	frame, err := s.applyEnvironment(update)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.broadcast(MessageEnvironment, frame)
	writeJSON(w, http.StatusOK, frame)
}

type buildingView struct {
	registry.Building
	IsLit          bool    `json:"isLit"`
	LightIntensity float64 `json:"lightIntensity"`
}

func (s *Server) buildingViews() []buildingView {
	hour := s.sim.Environment().Current().TimeOfDay
	all := s.sim.Registry().All()
	out := make([]buildingView, 0, len(all))
	for _, b := range all {
		out = append(out, buildingView{
			Building:       b,
			IsLit:          registry.IsLit(b.Type, hour),
			LightIntensity: registry.LightIntensity(b.Type, hour),
		})
	}
	return out
}

func (s *Server) handleBuildings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.buildingViews())
}

type placeRequest struct {
	Column   int      `json:"column"`
	Row      int      `json:"row"`
	Type     string   `json:"type"`
	Rotation *float64 `json:"rotation"`
}

func (s *Server) handlePlaceBuilding(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid building request", http.StatusBadRequest)
		return
	}
	t, err := registry.ParseBuildingType(req.Type)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b, err := s.sim.PlaceBuilding(terrain.GridKey{Column: req.Column, Row: req.Row}, t, req.Rotation)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	s.broadcast(MessageBuildings, s.buildingViews())
	writeJSON(w, http.StatusCreated, b)
}

type rotateRequest struct {
	Column  int     `json:"column"`
	Row     int     `json:"row"`
	Radians float64 `json:"radians"`
}

func (s *Server) handleRotateBuilding(w http.ResponseWriter, r *http.Request) {
	var req rotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid rotate request", http.StatusBadRequest)
		return
	}
	b, err := s.sim.RotateBuilding(terrain.GridKey{Column: req.Column, Row: req.Row}, req.Radians)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	s.broadcast(MessageBuildings, s.buildingViews())
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleRemoveBuilding(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.sim.RemoveBuilding(key); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	s.broadcast(MessageBuildings, s.buildingViews())
	w.WriteHeader(http.StatusNoContent)
}

type materialsResponse struct {
	Materials []scenery.Material `json:"materials"`
	Tints     []scenery.Tint     `json:"tints"`
}

func (s *Server) handleMaterials(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, materialsResponse{
		Materials: s.sim.Materials().All(),
		Tints:     s.sim.Last().Tints,
	})
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sim.Regenerate(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	view := s.mapView()
	s.broadcast(MessageMap, view)
	writeJSON(w, http.StatusOK, view)
}

// handleSocketMessage lets renderers drive the environment controls over
// the websocket. The reply carries the resulting frame or the error.
func (s *Server) handleSocketMessage(msg Message) (Message, bool) {
	if msg.Type != MessageEnvironment {
		return Message{}, false
	}
	var update environmentUpdate
	if err := json.Unmarshal(msg.Payload, &update); err != nil {
		reply, _ := newMessage(MessageError, err.Error())
		return reply, true
	}
	frame, err := s.applyEnvironment(update)
	if err != nil {
		reply, _ := newMessage(MessageError, err.Error())
		return reply, true
	}
	reply, err := newMessage(MessageEnvironment, frame)
	if err != nil {
		return Message{}, false
	}
	return reply, true
}

func keyFromQuery(r *http.Request) (terrain.GridKey, error) {
	q := r.URL.Query()
	cStr := q.Get("c")
	rStr := q.Get("r")
	if cStr == "" || rStr == "" {
		return terrain.GridKey{}, errors.New("c and r query parameters required")
	}
	c, err := strconv.Atoi(cStr)
	if err != nil {
		return terrain.GridKey{}, errors.New("invalid c parameter")
	}
	row, err := strconv.Atoi(rStr)
	if err != nil {
		return terrain.GridKey{}, errors.New("invalid r parameter")
	}
	return terrain.GridKey{Column: c, Row: row}, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrNotFound), errors.Is(err, registry.ErrOutOfBounds):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrNotBuildable), errors.Is(err, registry.ErrNotCoastal):
		return http.StatusConflict
	case errors.Is(err, registry.ErrUnknownBuilding):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		log.Printf("write response: %v", err)
	}
}
