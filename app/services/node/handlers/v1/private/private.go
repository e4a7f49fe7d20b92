// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"net"
	"net/http"

	"github.com/ardanlabs/gossipchain/business/web/errs"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/peer"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/state"
	"github.com/ardanlabs/gossipchain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// KnownPeers returns the peers this node knows about.
func (h Handlers) KnownPeers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveKnownPeers(), http.StatusOK)
}

// AddPeer adds a node to the set of known peers.
func (h Handlers) AddPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	node, err := decodeNode(r)
	if err != nil {
		return err
	}

	if h.State.AddKnownPeer(node) {
		h.Log.Infow("add peer", "traceid", web.GetTraceID(ctx), "node", node)
	}

	return web.Respond(ctx, w, h.State.RetrieveKnownPeers(), http.StatusOK)
}

// RemovePeer removes a node from the set of known peers. It serves both the
// DELETE call and the notice a node sends when it shuts down.
func (h Handlers) RemovePeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	node, err := decodeNode(r)
	if err != nil {
		return err
	}

	if h.State.RemoveKnownPeer(node) {
		h.Log.Infow("remove peer", "traceid", web.GetTraceID(ctx), "node", node)
	}

	return web.Respond(ctx, w, h.State.RetrieveKnownPeers(), http.StatusOK)
}

// CallerIP returns the host the caller connected from so a joining node
// can work out how the network sees it.
func (h Handlers) CallerIP(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	resp := struct {
		IP string `json:"ip"`
	}{
		IP: host,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

func decodeNode(r *http.Request) (peer.Node, error) {
	var in peer.Node
	if err := web.Decode(r, &in); err != nil {
		return peer.Node{}, errs.NewTrusted(err, http.StatusBadRequest)
	}

	node, err := peer.New(in.Address)
	if err != nil {
		return peer.Node{}, errs.NewTrusted(err, http.StatusBadRequest)
	}

	return node, nil
}
