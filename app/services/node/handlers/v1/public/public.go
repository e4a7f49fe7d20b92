// Package public maintains the group of handlers for wallet and viewer access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ardanlabs/gossipchain/business/sys/metrics"
	"github.com/ardanlabs/gossipchain/business/web/errs"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/addresses"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/state"
	"github.com/ardanlabs/gossipchain/foundation/events"
	"github.com/ardanlabs/gossipchain/foundation/web"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client. The optional
// kind query parameter is a comma separated list of the event kinds to send.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// The upgrade wrote the status line.
	web.SetStatusCode(ctx, http.StatusSwitchingProtocols)

	var kinds []string
	if k := r.URL.Query().Get("kind"); k != "" {
		kinds = strings.Split(k, ",")
	}

	ch := h.Evts.Acquire(v.TraceID, kinds...)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(msg); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Status returns a summary of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveStatus(), http.StatusOK)
}

// Addresses returns the set of known addresses.
func (h Handlers) Addresses(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveAddresses(), http.StatusOK)
}

// AddressByHash returns the address for the 0x prefixed hex hash.
func (h Handlers) AddressByHash(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	hash, err := hexutil.Decode(web.Param(r, "hash"))
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("hash: %w", err), http.StatusBadRequest)
	}

	addr, exists := h.State.LookupAddress(hash)
	if !exists {
		return errs.NewTrusted(fmt.Errorf("address %s not found", hexutil.Encode(hash)), http.StatusNotFound)
	}

	return web.Respond(ctx, w, addr, http.StatusOK)
}

// SubmitAddress admits a new address and shares it with the known peers
// when publish is requested.
func (h Handlers) SubmitAddress(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var addr address
	if err := web.Decode(r, &addr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	dbAddr := addr.toDB()

	if err := h.State.SubmitAddress(dbAddr); err != nil {
		if errors.Is(err, addresses.ErrExists) {
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("add address", "traceid", web.GetTraceID(ctx), "address", dbAddr)

	if publish(r) {
		h.State.NetSendAddressToPeers(context.Background(), dbAddr)
	}

	return web.Respond(ctx, w, status{Status: "address added"}, http.StatusOK)
}

// Blocks returns the chain.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveBlocks(), http.StatusOK)
}

// ProposeBlock takes a block received from a peer or a wallet, validates it
// and if that passes, adds the block to the local blockchain.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var block database.Block
	if err := web.Decode(r, &block); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := h.State.ProcessProposedBlock(block); err != nil {
		metrics.AddRejections()
		return errs.NewTrusted(err, http.StatusNotAcceptable)
	}
	metrics.AddBlocks()

	h.Log.Infow("block accepted", "traceid", web.GetTraceID(ctx), "block", block)

	if publish(r) {
		h.State.NetSendBlockToPeers(context.Background(), block)
	}

	return web.Respond(ctx, w, status{Status: "accepted"}, http.StatusAccepted)
}

// StartMiner starts the mining worker.
func (h Handlers) StartMiner(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	started, err := h.State.StartMining()
	if err != nil {
		return errs.NewTrusted(err, http.StatusServiceUnavailable)
	}

	resp := status{Status: "mining started"}
	if !started {
		resp.Status = "mining already running"
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// StopMiner stops the mining worker.
func (h Handlers) StopMiner(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.State.StopMining(); err != nil {
		return errs.NewTrusted(err, http.StatusServiceUnavailable)
	}

	return web.Respond(ctx, w, status{Status: "mining stopped"}, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveMempool(), http.StatusOK)
}

// SubmitTransaction adds a new transaction to the mempool and shares it
// with the known peers when publish is requested.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var t tx
	if err := web.Decode(r, &t); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	dbTx := t.toDB()

	added, err := h.State.SubmitTransaction(dbTx)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if !added {
		return web.Respond(ctx, w, status{Status: "transaction already pending"}, http.StatusOK)
	}

	sender, _ := h.State.LookupAddress(dbTx.SenderHash)
	h.Log.Infow("add tran", "traceid", web.GetTraceID(ctx), "tx", dbTx, "sender", sender.Name)

	if publish(r) {
		h.State.NetSendTxToPeers(context.Background(), dbTx)
	}

	return web.Respond(ctx, w, status{Status: "transaction added to mempool"}, http.StatusOK)
}

// publish reports whether the caller asked for the change to be shared
// with the known peers.
func publish(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("publish"))
	return ok
}
