package game

import (
	"go.uber.org/zap"
)

// SessionDef describes one fixed session in the registry.
type SessionDef struct {
	Code string
	Type SessionType
}

// DefaultSessions is the session set used when none are configured.
var DefaultSessions = []SessionDef{
	{Code: "session1", Type: SessionTypeStandard},
	{Code: "session2", Type: SessionTypeStandard},
	{Code: "session3", Type: SessionTypeStandard},
	{Code: "session4", Type: SessionTypeStandard},
	{Code: "commander1", Type: SessionTypeCommander},
	{Code: "commander2", Type: SessionTypeCommander},
}

// Registry holds the fixed set of sessions. It is built once at startup
// and never structurally modified afterwards, so lookups need no lock;
// each session guards its own state.
type Registry struct {
	sessions map[string]*Session
	order    []string
	logger   *zap.Logger
}

// NewRegistry creates the registry from its session definitions.
func NewRegistry(defs []SessionDef, logger *zap.Logger) *Registry {
	if len(defs) == 0 {
		defs = DefaultSessions
	}
	r := &Registry{
		sessions: make(map[string]*Session, len(defs)),
		logger:   logger,
	}
	for _, def := range defs {
		if _, exists := r.sessions[def.Code]; exists {
			logger.Warn("duplicate session code in registry", zap.String("code", def.Code))
			continue
		}
		r.sessions[def.Code] = NewSession(def.Code, def.Type)
		r.order = append(r.order, def.Code)
	}
	logger.Info("session registry initialized", zap.Int("sessions", len(r.order)))
	return r
}

// Get retrieves a session by code.
func (r *Registry) Get(code string) (*Session, bool) {
	s, ok := r.sessions[code]
	return s, ok
}

// Codes returns the session codes in configuration order.
func (r *Registry) Codes() []string {
	return append([]string(nil), r.order...)
}

// Stats returns the player count per session code.
func (r *Registry) Stats() map[string]int {
	stats := make(map[string]int, len(r.order))
	for _, code := range r.order {
		stats[code] = r.sessions[code].PlayerCount()
	}
	return stats
}
