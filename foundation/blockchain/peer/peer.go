// Package peer maintains the peer related information such as the set
// of known peers and the client used to talk to them.
package peer

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// ErrInvalidAddress is returned when a node address is not an absolute
// http url.
var ErrInvalidAddress = errors.New("invalid node address")

// Node represents information about a node in the network.
type Node struct {
	Address string `json:"address"`
}

// New constructs a node for the specified url, removing any trailing slash.
func New(address string) (Node, error) {
	u, err := url.Parse(strings.TrimRight(address, "/"))
	if err != nil {
		return Node{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Node{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	return Node{Address: u.Scheme + "://" + u.Host}, nil
}

// URL returns the full url for the endpoint on this node.
func (n Node) URL(endpoint string) string {
	return n.Address + "/" + strings.TrimLeft(endpoint, "/")
}

// Match validates if the specified node is the same as this node. The
// addresses match when they are equal, or when the scheme and port are the
// same and both hosts resolve to a common ip.
func (n Node) Match(other Node) bool {
	if n.Address == other.Address {
		return true
	}

	u1, err := url.Parse(n.Address)
	if err != nil {
		return false
	}
	u2, err := url.Parse(other.Address)
	if err != nil {
		return false
	}

	if u1.Scheme != u2.Scheme || port(u1) != port(u2) {
		return false
	}

	ips1, err := net.LookupHost(u1.Hostname())
	if err != nil {
		return false
	}
	ips2, err := net.LookupHost(u2.Hostname())
	if err != nil {
		return false
	}

	for _, ip1 := range ips1 {
		for _, ip2 := range ips2 {
			if net.ParseIP(ip1).Equal(net.ParseIP(ip2)) {
				return true
			}
		}
	}

	return false
}

// String implements the fmt.Stringer interface.
func (n Node) String() string {
	return n.Address
}

// port returns the explicit port or the default for the scheme.
func port(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}

	if u.Scheme == "https" {
		return "443"
	}
	return "80"
}

// =============================================================================

// Set represents the data representation to maintain a set of known peers.
type Set struct {
	mu  sync.RWMutex
	set map[Node]struct{}
}

// NewSet constructs a new set to manage node peer information.
func NewSet() *Set {
	return &Set{
		set: make(map[Node]struct{}),
	}
}

// Add adds a new node to the set.
func (s *Set) Add(node Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.set[node]
	if !exists {
		s.set[node] = struct{}{}
		return true
	}

	return false
}

// Remove removes a node from the set.
func (s *Set) Remove(node Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.set[node]
	delete(s.set, node)

	return exists
}

// Contains reports whether the node is in the set.
func (s *Set) Contains(node Node) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.set[node]
	return exists
}

// Copy returns a list of the known peers excluding the specified node,
// ordered by address.
func (s *Set) Copy(exclude Node) []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]Node, 0, len(s.set))
	for node := range s.set {
		if node != exclude {
			nodes = append(nodes, node)
		}
	}

	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Address < nodes[j].Address
	})

	return nodes
}
