// Package http exposes the operator-facing surface of the store: health,
// metrics, flush and cache introspection, and command-gate toggles. The chat
// layer is an external collaborator and does not go through this server.
package http

import (
	"net/http"

	"github.com/echomasterleague/league-bot/internal/config"
	"github.com/echomasterleague/league-bot/internal/gate"
	"github.com/echomasterleague/league-bot/internal/league"
	"github.com/echomasterleague/league-bot/internal/store"
)

type Server struct {
	Store          *store.Store
	Tables         *league.Tables
	Service        *league.Service
	Gate           *gate.Gate
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
}

func NewServer(st *store.Store, tables *league.Tables, svc *league.Service, g *gate.Gate, metricsHandler http.Handler, cfg config.Config) *Server {
	server := &Server{
		Store:          st,
		Tables:         tables,
		Service:        svc,
		Gate:           g,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/flush", Chain(s.FlushHandler(), paramsMiddleware))
	s.Router.Handle("/pending", Chain(s.PendingWritesHandler(), paramsMiddleware))
	s.Router.Handle("/cache-times", Chain(s.CacheTimesHandler(), paramsMiddleware))
	s.Router.Handle("/gate/status", Chain(s.GateStatusHandler(), paramsMiddleware))
	s.Router.Handle("/gate/enable", Chain(s.GateToggleHandler(true), paramsMiddleware))
	s.Router.Handle("/gate/disable", Chain(s.GateToggleHandler(false), paramsMiddleware))
	s.Router.Handle("/roster", Chain(s.RosterHandler(), paramsMiddleware))
	s.Router.Handle("/invites/expire", Chain(s.ExpireInvitesHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
