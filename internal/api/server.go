// Package api serves a world over HTTP.
// GET endpoints are public read contracts (observation only).
// POST endpoints require a bearer token and are rate limited per client.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/bias"
	"github.com/talgya/hearsay/internal/engine"
	"github.com/talgya/hearsay/internal/events"
	"github.com/talgya/hearsay/internal/host"
	"github.com/talgya/hearsay/internal/memory"
	"github.com/talgya/hearsay/internal/persistence"
	"github.com/talgya/hearsay/internal/rumor"
	"github.com/talgya/hearsay/internal/social"
	"github.com/talgya/hearsay/internal/world"
)

const maxBodyBytes = 1 << 20

// Server serves the world state over HTTP.
type Server struct {
	World      *host.World
	DB         *persistence.DB // Optional; snapshot and emergent log endpoints need it
	Port       int
	AdminKey   string        // Bearer token for POST endpoints. Empty = POST disabled.
	MaxStreams int32         // Concurrent websocket streams
	Tick       func() uint64 // Optional tick counter for status and snapshots

	limiter *RateLimiter
	streams int32
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	if s.limiter == nil {
		s.limiter = NewRateLimiter(120, time.Minute)
	}
	if s.MaxStreams <= 0 {
		s.MaxStreams = 8
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return RateLimitMiddleware(s.limiter, s.adminOnly(h))
	}

	mux := http.NewServeMux()

	// Public read contracts.
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/npcs", s.handleNPCs)
	mux.HandleFunc("GET /api/v1/npc/{id}", s.handleNPC)
	mux.HandleFunc("GET /api/v1/npc/{id}/memories", s.handleMemories)
	mux.HandleFunc("GET /api/v1/relation/{from}/{to}", s.handleRelation)
	mux.HandleFunc("GET /api/v1/atmosphere/{x}/{y}", s.handleAtmosphere)
	mux.HandleFunc("GET /api/v1/dangerous", s.handleDangerous)
	mux.HandleFunc("GET /api/v1/rumors", s.handleRumors)
	mux.HandleFunc("GET /api/v1/storylines", s.handleStorylines)
	mux.HandleFunc("GET /api/v1/emergent", s.handleEmergent)
	mux.HandleFunc("GET /api/v1/stream", s.handleStream)

	// Admin writes.
	mux.HandleFunc("POST /api/v1/npcs", admin(s.handleRegister))
	mux.HandleFunc("POST /api/v1/events", admin(s.handleEvent))
	mux.HandleFunc("POST /api/v1/interactions", admin(s.handleInteraction))
	mux.HandleFunc("POST /api/v1/relations", admin(s.handleRecordAct))
	mux.HandleFunc("POST /api/v1/advance", admin(s.handleAdvance))
	mux.HandleFunc("POST /api/v1/rumors/player", admin(s.handlePlayerRumor))
	mux.HandleFunc("POST /api/v1/secrets", admin(s.handleSecret))
	mux.HandleFunc("POST /api/v1/snapshot", admin(s.handleSnapshot))
	mux.HandleFunc("POST /api/v1/restore", admin(s.handleRestore))

	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", srv.Addr, "admin_auth", s.AdminKey != "")

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.limiter.Stop()
	return nil
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no HEARSAY_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) tick() uint64 {
	if s.Tick == nil {
		return 0
	}
	return s.Tick()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var stats engine.Stats
	s.World.Read(func(e *engine.Engine) { stats = e.Stats() })
	out := map[string]any{
		"name":     "hearsay",
		"tick":     s.tick(),
		"sim_time": host.SimTime(stats.Now),
		"stats":    stats,
	}
	if s.DB != nil {
		saved, err := s.DB.LastTick(r.Context())
		if err != nil {
			slog.Error("last tick lookup failed", "error", err)
		} else {
			out["saved_tick"] = saved
		}
	}
	writeJSON(w, out)
}

type npcSummary struct {
	ID            string         `json:"id"`
	Type          agents.NPCType `json:"type"`
	Memories      int            `json:"memories"`
	WillCooperate bool           `json:"will_cooperate"`
	WillShare     bool           `json:"will_share"`
}

func (s *Server) handleNPCs(w http.ResponseWriter, r *http.Request) {
	var out []npcSummary
	s.World.Read(func(e *engine.Engine) {
		for _, st := range e.NPCs() {
			out = append(out, npcSummary{
				ID:            st.ID,
				Type:          st.Type,
				Memories:      st.Memories.Len(),
				WillCooperate: e.WillCooperate(st.ID),
				WillShare:     e.WillShareInfo(st.ID),
			})
		}
	})
	writeJSON(w, out)
}

func (s *Server) handleNPC(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var (
		found bool
		out   map[string]any
	)
	s.World.Read(func(e *engine.Engine) {
		st, ok := e.NPC(id)
		if !ok {
			return
		}
		found = true
		hints, _ := e.BehaviorHints(id)
		out = map[string]any{
			"id":        st.ID,
			"type":      st.Type,
			"bias":      st.Bias.Clone(),
			"hints":     hints,
			"memories":  st.Memories.Len(),
			"capacity":  st.Memories.Capacity,
			"updated":   st.LastUpdate,
			"relations": cloneRelations(e, id),
		}
	})
	if !found {
		http.Error(w, "npc not found", http.StatusNotFound)
		return
	}
	writeJSON(w, out)
}

func (s *Server) handleMemories(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if about := r.URL.Query().Get("about"); about != "" {
		s.handleRecall(w, id, about)
		return
	}
	limit := queryInt(r, "limit", 20)
	var (
		found bool
		out   any
	)
	s.World.Read(func(e *engine.Engine) {
		st, ok := e.NPC(id)
		if !ok {
			return
		}
		found = true
		var mems []any
		for _, m := range st.RecentMemories(limit) {
			mems = append(mems, m.Clone())
		}
		out = mems
	})
	if !found {
		http.Error(w, "npc not found", http.StatusNotFound)
		return
	}
	writeJSON(w, out)
}

// handleRecall answers ?about= on the memories endpoint. Recalling a memory
// reinforces it, so this takes the write lock.
func (s *Server) handleRecall(w http.ResponseWriter, id, about string) {
	var (
		mems  []*memory.Memory
		found bool
	)
	s.World.Write(func(e *engine.Engine) {
		mems, found = e.Recall(id, about)
	})
	if !found {
		http.Error(w, "npc not found", http.StatusNotFound)
		return
	}
	writeJSON(w, mems)
}

func (s *Server) handleRelation(w http.ResponseWriter, r *http.Request) {
	var out any
	s.World.Read(func(e *engine.Engine) {
		if rel, ok := e.Relation(r.PathValue("from"), r.PathValue("to")); ok {
			out = rel.Clone()
		}
	})
	if out == nil {
		http.Error(w, "relation not found", http.StatusNotFound)
		return
	}
	writeJSON(w, out)
}

func (s *Server) handleAtmosphere(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.Atoi(r.PathValue("x"))
	y, errY := strconv.Atoi(r.PathValue("y"))
	if errX != nil || errY != nil {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}
	var (
		out any
		ok  bool
	)
	s.World.Read(func(e *engine.Engine) {
		out, ok = e.AtmosphereAt(world.Coord{X: x, Y: y})
	})
	if !ok {
		http.Error(w, "nothing remembered here", http.StatusNotFound)
		return
	}
	writeJSON(w, out)
}

func (s *Server) handleDangerous(w http.ResponseWriter, r *http.Request) {
	var out any
	s.World.Read(func(e *engine.Engine) { out = e.DangerousLocations() })
	writeJSON(w, out)
}

func (s *Server) handleRumors(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	var out []any
	s.World.Read(func(e *engine.Engine) {
		for _, ru := range e.Rumors() {
			if activeOnly && !ru.Active {
				continue
			}
			out = append(out, ru.Clone())
		}
	})
	writeJSON(w, out)
}

func (s *Server) handleStorylines(w http.ResponseWriter, r *http.Request) {
	var out any
	s.World.Read(func(e *engine.Engine) { out = e.Storylines() })
	writeJSON(w, out)
}

// handleEmergent serves the persisted emergent log when a database is
// attached, otherwise the engine's in-memory tail.
func (s *Server) handleEmergent(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if s.DB != nil {
		recs, err := s.DB.RecentEmergent(r.Context(), limit)
		if err != nil {
			slog.Error("emergent log query failed", "error", err)
			http.Error(w, "query failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, recs)
		return
	}
	var out []engine.EmergentEvent
	s.World.Read(func(e *engine.Engine) {
		all := e.Emergent()
		start := len(all) - limit
		if start < 0 {
			start = 0
		}
		out = append(out, all[start:]...)
	})
	writeJSON(w, out)
}

type registerRequest struct {
	ID      string             `json:"id"`
	Type    agents.NPCType     `json:"type"`
	Traits  map[string]float64 `json:"traits,omitempty"`
	Allies  []string           `json:"allies,omitempty"`
	Enemies []string           `json:"enemies,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var b *bias.Bias
	if len(req.Traits) > 0 {
		tr, err := bias.TraitsFromMap(req.Traits)
		if err == nil {
			b, err = bias.New(req.ID, tr)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	var (
		out npcSummary
		err error
	)
	s.World.Write(func(e *engine.Engine) {
		st, rerr := e.RegisterNPC(req.ID, req.Type, b)
		if rerr != nil {
			err = rerr
			return
		}
		for _, a := range req.Allies {
			st.Bias.AddAlly(a)
		}
		for _, en := range req.Enemies {
			st.Bias.AddEnemy(en)
		}
		out = npcSummary{ID: st.ID, Type: st.Type, Memories: st.Memories.Len()}
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, out)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var in events.WorldEvent
	if !decodeBody(w, r, &in) {
		return
	}
	// Rebuild through the constructors so ranges are clamped.
	ev := events.New(in.ID, in.Timestamp, in.Location, in.Type, in.Actors, in.Notability)
	for k, v := range in.Details {
		ev.WithDetail(k, v)
	}
	for _, wt := range in.Witnesses {
		ev.AddWitness(wt.NPC, wt.Kind, wt.Clarity, wt.Distance)
	}

	var formed int
	s.World.Write(func(e *engine.Engine) {
		formed = len(e.ProcessEvent(ev))
	})
	writeJSON(w, map[string]any{"memories_formed": formed})
}

type interactionRequest struct {
	Teller   string          `json:"teller"`
	Listener string          `json:"listener"`
	Trigger  rumor.Trigger   `json:"trigger"`
	Location *world.Location `json:"location,omitempty"`
}

func (s *Server) handleInteraction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var res engine.InteractionResult
	s.World.Write(func(e *engine.Engine) {
		res = e.SimulateInteraction(req.Teller, req.Listener, req.Trigger, req.Location)
	})
	if !res.Recorded {
		http.Error(w, "unknown teller or listener", http.StatusNotFound)
		return
	}
	writeJSON(w, res)
}

type actRequest struct {
	Actor  string                 `json:"actor"`
	Target string                 `json:"target"`
	Kind   social.InteractionKind `json:"kind"`
}

func (s *Server) handleRecordAct(w http.ResponseWriter, r *http.Request) {
	var req actRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var (
		rel *social.Relation
		err error
	)
	s.World.Write(func(e *engine.Engine) {
		if rel, err = e.RecordInteraction(req.Actor, req.Target, req.Kind); err == nil {
			rel = rel.Clone()
		}
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, rel)
}

type secretRequest struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Secret string `json:"secret"`
}

func (s *Server) handleSecret(w http.ResponseWriter, r *http.Request) {
	var req secretRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var err error
	s.World.Write(func(e *engine.Engine) {
		err = e.ShareSecret(req.A, req.B, req.Secret)
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"message": "secret shared"})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DT float64 `json:"dt"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.DT < 0 {
		http.Error(w, "dt must be non-negative", http.StatusBadRequest)
		return
	}
	raised := s.World.Advance(req.DT)
	s.persistEmergent(r.Context(), raised)
	writeJSON(w, map[string]any{"emergent": raised})
}

func (s *Server) handlePlayerRumor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Target      string  `json:"target"`
		Content     string  `json:"content"`
		Credibility float64 `json:"credibility"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	var (
		out any
		ok  bool
	)
	s.World.Write(func(e *engine.Engine) {
		m, planted := e.PlayerSpreadsRumor(req.Target, req.Content, req.Credibility)
		if planted {
			out, ok = m.Clone(), true
		}
	})
	if !ok {
		http.Error(w, "unknown target or empty content", http.StatusBadRequest)
		return
	}
	writeJSON(w, out)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	tick := s.tick()
	if err := s.DB.SaveWorldState(r.Context(), tick, s.World.Snapshot(), 10); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"tick":    tick,
		"message": "snapshot saved",
	})
}

// handleRestore swaps the running world for the newest saved snapshot. The
// tick counter is not rewound.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	snap, info, err := s.DB.LatestSnapshot(r.Context())
	if errors.Is(err, persistence.ErrNoSnapshot) {
		http.Error(w, "no snapshot saved", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("snapshot load failed", "error", err)
		http.Error(w, "restore failed", http.StatusInternalServerError)
		return
	}
	eng, err := engine.Restore(snap, engine.Options{Logger: slog.Default()})
	if err != nil {
		slog.Error("snapshot restore failed", "snapshot", info.ID, "error", err)
		http.Error(w, "restore failed", http.StatusInternalServerError)
		return
	}
	s.World.Replace(eng)
	slog.Info("world restored", "snapshot", info.ID, "tick", info.Tick)
	writeJSON(w, map[string]any{
		"snapshot": info.ID,
		"tick":     info.Tick,
		"message":  "world restored",
	})
}

func (s *Server) persistEmergent(ctx context.Context, raised []engine.EmergentEvent) {
	if s.DB == nil || len(raised) == 0 {
		return
	}
	if err := s.DB.SaveEmergent(ctx, raised); err != nil {
		slog.Error("emergent log write failed", "error", err)
	}
}

func cloneRelations(e *engine.Engine, id string) []any {
	var out []any
	for _, st := range e.NPCs() {
		if rel, ok := e.Relation(id, st.ID); ok {
			out = append(out, rel.Clone())
		}
	}
	return out
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
