package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/wumpus/game/boundary"
	"github.com/wricardo/wumpus/game/config"
	"github.com/wricardo/wumpus/game/handle"
	"github.com/wricardo/wumpus/game/wumpus"
	"github.com/wricardo/wumpus/transport/websocket"
)

// maxPayloadSize bounds action, event and config bodies
const maxPayloadSize = 64 << 10

// Server represents the HTTP host
type Server struct {
	service boundary.Service
	configs *config.Manager
	hub     *websocket.Hub
	router  *mux.Router
	log     *zap.Logger
}

// NewServer creates a new API server. configs and hub may be nil: games then
// use the built-in default configuration and /ws is not served.
func NewServer(service boundary.Service, configs *config.Manager, hub *websocket.Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		service: service,
		configs: configs,
		hub:     hub,
		router:  mux.NewRouter(),
		log:     logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/execute", s.handleExecute).Methods("POST")
	api.HandleFunc("/sessions/{id}/events", s.handleEvent).Methods("POST")
	api.HandleFunc("/sessions/{id}/response", s.handleLastResponse).Methods("GET")
	api.HandleFunc("/sessions/{id}/error", s.handleLastError).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// Browser play
	s.router.HandleFunc("/", s.handleNewGame).Methods("GET")
	s.router.HandleFunc("/play/{id}", s.handlePlay).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	if s.hub != nil {
		s.router.HandleFunc("/ws", s.handleWebSocket)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondRaw writes a payload that is already JSON
func respondRaw(w http.ResponseWriter, status int, data string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondBoundaryError maps a boundary failure to an HTTP status
func respondBoundaryError(w http.ResponseWriter, err error) {
	status := boundary.StatusOf(err)
	respondJSON(w, httpStatus(status), map[string]string{
		"error":  err.Error(),
		"status": status.String(),
	})
}

func httpStatus(status boundary.Status) int {
	switch status {
	case boundary.StatusInvalidHandle:
		return http.StatusNotFound
	case boundary.StatusDecode, boundary.StatusConfig:
		return http.StatusBadRequest
	case boundary.StatusEngine:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func sessionHandle(r *http.Request) (handle.Handle, error) {
	return handle.Parse(mux.Vars(r)["id"])
}

// SessionInfo describes a live game
type SessionInfo struct {
	SessionID      string    `json:"session_id"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed"`
	PlayURL        string    `json:"play_url"`
}

// sessionInfo reads only registry data so listing never counts as use
func sessionInfo(info handle.Info) SessionInfo {
	return SessionInfo{
		SessionID:      info.Handle.String(),
		CreatedAt:      info.CreatedAt,
		LastAccessedAt: info.LastAccessedAt,
		PlayURL:        "/play/" + info.Handle.String(),
	}
}

// findSession returns the live session for h
func (s *Server) findSession(h handle.Handle) (handle.Info, bool) {
	for _, info := range s.service.List() {
		if info.Handle == h {
			return info, true
		}
	}
	return handle.Info{}, false
}

// resolveConfig loads a named configuration, or the default when name is
// empty, and encodes it for the boundary.
func (s *Server) resolveConfig(name string) (wumpus.Config, []byte, error) {
	cfg := wumpus.DefaultConfig()
	if s.configs != nil {
		cfg = s.configs.GetDefault()
		if name != "" {
			loaded, err := s.configs.LoadConfig(name)
			if err != nil {
				return wumpus.Config{}, nil, err
			}
			cfg = loaded
		}
	} else if name != "" && name != cfg.Name {
		return wumpus.Config{}, nil, config.ErrConfigNotFound
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return wumpus.Config{}, nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return cfg, data, nil
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id,omitempty"`
	}

	if r.Body != nil {
		json.NewDecoder(io.LimitReader(r.Body, maxPayloadSize)).Decode(&req)
	}

	cfg, data, err := s.resolveConfig(req.ConfigID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h, err := s.service.Create(data)
	if err != nil {
		respondBoundaryError(w, err)
		return
	}

	info, _ := s.findSession(h)
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"session": sessionInfo(info),
		"config":  cfg,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	infos := s.service.List()

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.SliceStable(infos, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = infos[i].CreatedAt, infos[j].CreatedAt
		} else {
			ti, tj = infos[i].LastAccessedAt, infos[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(infos)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(infos) {
			infos = infos[:l]
		}
	}

	sessions := make([]SessionInfo, 0, len(infos))
	for _, info := range infos {
		sessions = append(sessions, sessionInfo(info))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	h, err := sessionHandle(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	info, ok := s.findSession(h)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("session %s not found", h))
		return
	}

	shutdown, err := s.service.IsShutdownRequired(h)
	if err != nil {
		respondBoundaryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session":           sessionInfo(info),
		"shutdown_required": shutdown,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	h, err := sessionHandle(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.service.Destroy(h); err != nil {
		respondBoundaryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", h),
	})
}

// Game Operation Handlers

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, "execute", s.service.Execute)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, "event", s.service.HandleEvent)
}

// apply feeds the request body to op and answers with the new response,
// which is also pushed to any browser watching the game
func (s *Server) apply(w http.ResponseWriter, r *http.Request, kind string, op func(handle.Handle, []byte) error) {
	h, err := sessionHandle(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadSize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := op(h, payload); err != nil {
		respondBoundaryError(w, err)
		return
	}

	resp, err := s.service.LastResponseText(h)
	if err != nil {
		respondBoundaryError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.Broadcast(h, []byte(resp))
	}

	s.log.Debug("applied payload",
		zap.String("kind", kind),
		zap.Stringer("handle", h),
		zap.ByteString("payload", payload))

	respondRaw(w, http.StatusOK, resp)
}

func (s *Server) handleLastResponse(w http.ResponseWriter, r *http.Request) {
	h, err := sessionHandle(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.service.LastResponseText(h)
	if err != nil {
		respondBoundaryError(w, err)
		return
	}

	respondRaw(w, http.StatusOK, resp)
}

func (s *Server) handleLastError(w http.ResponseWriter, r *http.Request) {
	h, err := sessionHandle(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := s.service.LastErrorText(h)
	if err != nil {
		respondBoundaryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"error": msg})
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	if s.configs == nil {
		def := wumpus.DefaultConfig()
		respondJSON(w, http.StatusOK, []*config.ConfigInfo{{
			ConfigID:    def.Name,
			Name:        def.Name,
			Description: def.Description,
			Arrows:      def.Arrows,
		}})
		return
	}

	configs, err := s.configs.ListConfigs()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, _, err := s.resolveConfig(mux.Vars(r)["name"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	if s.configs == nil {
		respondError(w, http.StatusNotImplemented, "no config directory")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadSize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cfg, err := wumpus.DecodeConfig(data)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if cfg.Name == "" || cfg.Name != sanitizeName(cfg.Name) {
		respondError(w, http.StatusBadRequest, "Config name is required and may only contain letters, digits, '-' and '_'")
		return
	}

	if err := s.configs.SaveConfig(cfg.Name, cfg); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": cfg.Name,
	})
}

// sanitizeName drops every character that is unsafe in a file name
func sanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		}
	}
	return string(out)
}

// Browser Handlers

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	_, data, err := s.resolveConfig(r.URL.Query().Get("config"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h, err := s.service.Create(data)
	if err != nil {
		respondBoundaryError(w, err)
		return
	}

	http.Redirect(w, r, "/play/"+h.String(), http.StatusSeeOther)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	h, err := sessionHandle(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	html, err := s.service.InitialHTMLText(h)
	if err != nil && boundary.StatusOf(err) == boundary.StatusInvalidHandle {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, html)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	h, err := handle.Parse(sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, ok := s.findSession(h); !ok {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, h)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"sessions": s.service.Count(),
	})
}
