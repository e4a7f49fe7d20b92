// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/gossipchain/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/gossipchain/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/state"
	"github.com/ardanlabs/gossipchain/foundation/events"
	"github.com/ardanlabs/gossipchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/status", pbl.Status)
	app.Handle(http.MethodGet, version, "/address", pbl.Addresses)
	app.Handle(http.MethodGet, version, "/address/:hash", pbl.AddressByHash)
	app.Handle(http.MethodPut, version, "/address", pbl.SubmitAddress)
	app.Handle(http.MethodGet, version, "/block", pbl.Blocks)
	app.Handle(http.MethodPut, version, "/block", pbl.ProposeBlock)
	app.Handle(http.MethodGet, version, "/block/start-miner", pbl.StartMiner)
	app.Handle(http.MethodPost, version, "/block/start-miner", pbl.StartMiner)
	app.Handle(http.MethodGet, version, "/block/stop-miner", pbl.StopMiner)
	app.Handle(http.MethodPost, version, "/block/stop-miner", pbl.StopMiner)
	app.Handle(http.MethodGet, version, "/transaction", pbl.Mempool)
	app.Handle(http.MethodPut, version, "/transaction", pbl.SubmitTransaction)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, version, "/node", prv.KnownPeers)
	app.Handle(http.MethodPut, version, "/node", prv.AddPeer)
	app.Handle(http.MethodDelete, version, "/node", prv.RemovePeer)
	app.Handle(http.MethodPost, version, "/node/remove", prv.RemovePeer)
	app.Handle(http.MethodGet, version, "/node/ip", prv.CallerIP)
}
