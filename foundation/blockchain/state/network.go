package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/addresses"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/peer"
)

// Set of endpoints used to talk to other nodes.
const (
	endpointAddress     = "v1/address"
	endpointBlock       = "v1/block"
	endpointTransaction = "v1/transaction"
	endpointNode        = "v1/node"
	endpointNodeRemove  = "v1/node/remove"
	endpointNodeIP      = "v1/node/ip"
)

// NetBootstrap works out the address this node is known by and, unless this
// node is the master, copies the peers, addresses, chain and pending
// transactions from the master before announcing itself to every peer.
// The port is the one the API is bound to locally.
func (s *State) NetBootstrap(ctx context.Context, master peer.Node, port string) error {
	s.evHandler("state: NetBootstrap: started: master[%s]", master)
	defer s.evHandler("state: NetBootstrap: completed")

	self, err := s.netResolveSelf(ctx, master, port)
	if err != nil {
		return fmt.Errorf("resolving self: %w", err)
	}
	s.setSelf(self)

	s.evHandler("state: NetBootstrap: self[%s]", self)

	if self.Match(master) {
		s.evHandler("state: NetBootstrap: running as master node, nothing to init")
		return nil
	}

	s.knownPeers.Add(master)

	if err := s.netRetrieveKnownPeers(ctx, master); err != nil {
		return fmt.Errorf("retrieve peers: %w", err)
	}

	if err := s.netRetrieveAddresses(ctx, master); err != nil {
		return fmt.Errorf("retrieve addresses: %w", err)
	}

	if err := s.netRetrieveBlocks(ctx, master); err != nil {
		return fmt.Errorf("retrieve blocks: %w", err)
	}

	if err := s.netRetrieveTransactions(ctx, master); err != nil {
		return fmt.Errorf("retrieve transactions: %w", err)
	}

	// Publish this node to everyone we now know about.
	select {
	case <-s.NetSendNodeToPeers(ctx, self):
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// NetShutdown tells every known peer this node is leaving and waits for the
// peers to be told or the context to expire.
func (s *State) NetShutdown(ctx context.Context) error {
	s.evHandler("state: NetShutdown: started")
	defer s.evHandler("state: NetShutdown: completed")

	self := s.RetrieveSelf()
	if self.Address == "" {
		return nil
	}

	nodes := s.RetrieveKnownPeers()

	select {
	case <-s.client.Broadcast(ctx, nodes, http.MethodPost, endpointNodeRemove, self):
		s.evHandler("state: NetShutdown: peers informed[%d]", len(nodes))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NetSendAddressToPeers shares a new address with the known peers.
func (s *State) NetSendAddressToPeers(ctx context.Context, addr database.Address) <-chan struct{} {
	s.evHandler("state: NetSendAddressToPeers: addr[%s]", addr)
	return s.client.Broadcast(ctx, s.RetrieveKnownPeers(), http.MethodPut, endpointAddress, addr)
}

// NetSendTxToPeers shares a new transaction with the known peers.
func (s *State) NetSendTxToPeers(ctx context.Context, tx database.Transaction) <-chan struct{} {
	s.evHandler("state: NetSendTxToPeers: tx[%s]", tx)
	return s.client.Broadcast(ctx, s.RetrieveKnownPeers(), http.MethodPut, endpointTransaction, tx)
}

// NetSendBlockToPeers takes the new mined block and sends it to all
// known peers.
func (s *State) NetSendBlockToPeers(ctx context.Context, block database.Block) <-chan struct{} {
	s.evHandler("state: NetSendBlockToPeers: blk[%s]", block)
	return s.client.Broadcast(ctx, s.RetrieveKnownPeers(), http.MethodPut, endpointBlock, block)
}

// NetSendNodeToPeers shares a node with the known peers.
func (s *State) NetSendNodeToPeers(ctx context.Context, node peer.Node) <-chan struct{} {
	s.evHandler("state: NetSendNodeToPeers: node[%s]", node)
	return s.client.Broadcast(ctx, s.RetrieveKnownPeers(), http.MethodPut, endpointNode, node)
}

// =============================================================================

// netResolveSelf asks the master which host it sees this node calling from
// and combines it with the local port, unless an address is configured.
func (s *State) netResolveSelf(ctx context.Context, master peer.Node, port string) (peer.Node, error) {
	if s.selfAddr != "" {
		return peer.New(s.selfAddr)
	}

	var resp struct {
		IP string `json:"ip"`
	}
	if err := s.client.Send(ctx, http.MethodGet, master.URL(endpointNodeIP), nil, &resp); err != nil {
		return peer.Node{}, err
	}

	return peer.New("http://" + net.JoinHostPort(resp.IP, port))
}

func (s *State) netRetrieveKnownPeers(ctx context.Context, master peer.Node) error {
	var nodes []peer.Node
	if err := s.client.Send(ctx, http.MethodGet, master.URL(endpointNode), nil, &nodes); err != nil {
		return err
	}

	for _, node := range nodes {
		s.AddKnownPeer(node)
	}

	s.evHandler("state: NetBootstrap: retrieved nodes[%d] from master[%s]", len(nodes), master)

	return nil
}

func (s *State) netRetrieveAddresses(ctx context.Context, master peer.Node) error {
	var addrs []database.Address
	if err := s.client.Send(ctx, http.MethodGet, master.URL(endpointAddress), nil, &addrs); err != nil {
		return err
	}

	for _, addr := range addrs {
		if err := s.addresses.Add(addr); err != nil && !errors.Is(err, addresses.ErrExists) {
			s.evHandler("state: NetBootstrap: WARNING: address: %s", err)
		}
	}

	s.evHandler("state: NetBootstrap: retrieved addresses[%d] from master[%s]", len(addrs), master)

	return nil
}

func (s *State) netRetrieveBlocks(ctx context.Context, master peer.Node) error {
	var blocks []database.Block
	if err := s.client.Send(ctx, http.MethodGet, master.URL(endpointBlock), nil, &blocks); err != nil {
		return err
	}

	local := s.ledger.Copy()
	for i, block := range blocks {
		if i < len(local) {
			if !bytes.Equal(local[i].Hash, block.Hash) {
				return fmt.Errorf("chain differs from master at block %d", i+1)
			}
			continue
		}

		if err := s.ledger.Import(block); err != nil {
			return fmt.Errorf("import block %d: %w", i+1, err)
		}
	}

	s.evHandler("state: NetBootstrap: retrieved blocks[%d] from master[%s]", len(blocks), master)

	return nil
}

func (s *State) netRetrieveTransactions(ctx context.Context, master peer.Node) error {
	var trans []database.Transaction
	if err := s.client.Send(ctx, http.MethodGet, master.URL(endpointTransaction), nil, &trans); err != nil {
		return err
	}

	for _, tx := range trans {
		if _, err := s.mempool.Add(tx); err != nil {
			s.evHandler("state: NetBootstrap: WARNING: transaction: %s", err)
		}
	}

	s.evHandler("state: NetBootstrap: retrieved transactions[%d] from master[%s]", len(trans), master)

	return nil
}
