// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/escrow/app/services/escrow/handlers/v1/private"
	"github.com/ardanlabs/escrow/app/services/escrow/handlers/v1/public"
	"github.com/ardanlabs/escrow/foundation/escrow/state"
	"github.com/ardanlabs/escrow/foundation/events"
	"github.com/ardanlabs/escrow/foundation/nameservice"
	"github.com/ardanlabs/escrow/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/accounts/:account", pbl.Account)
	app.Handle(http.MethodGet, version, "/escrow/status", pbl.Status)
	app.Handle(http.MethodGet, version, "/escrow/balance/:account", pbl.Balance)
	app.Handle(http.MethodGet, version, "/escrow/supply", pbl.Supply)
	app.Handle(http.MethodGet, version, "/escrow/locked", pbl.Locks)
	app.Handle(http.MethodGet, version, "/escrow/locked/:account", pbl.Locked)
	app.Handle(http.MethodGet, version, "/escrow/points/global/:epoch", pbl.GlobalPoint)
	app.Handle(http.MethodGet, version, "/escrow/points/user/:account/:epoch", pbl.UserPoint)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
	}

	app.Handle(http.MethodPost, version, "/node/tx/submit", prv.SubmitAdminTransaction)
	app.Handle(http.MethodGet, version, "/node/journal/list/:from/:to", prv.JournalByRange)
}
