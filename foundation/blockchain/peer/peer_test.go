package peer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/peer"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func mustNode(t *testing.T, address string) peer.Node {
	n, err := peer.New(address)
	if err != nil {
		t.Fatalf("Should be able to construct node %q: %s", address, err)
	}
	return n
}

// =============================================================================

func Test_CRUD(t *testing.T) {
	nodes := []peer.Node{
		mustNode(t, "http://host1:8080"),
		mustNode(t, "http://host2:8080/"),
		mustNode(t, "http://host3:8080"),
	}

	t.Log("Given the need to maintain a set of peers.")
	{
		ps := peer.NewSet()

		for _, n := range nodes {
			if !ps.Add(n) {
				t.Fatalf("\t%s\tShould be able to add %s.", failed, n)
			}
		}
		if ps.Add(nodes[0]) {
			t.Fatalf("\t%s\tShould not add a node twice.", failed)
		}
		t.Logf("\t%s\tShould add each node once.", success)

		if got := ps.Copy(peer.Node{}); len(got) != 3 {
			t.Fatalf("\t%s\tShould get back all peers, got %d.", failed, len(got))
		}
		t.Logf("\t%s\tShould get back all peers.", success)

		got := ps.Copy(mustNode(t, "http://host2:8080"))
		if len(got) != 2 || got[0].Address != "http://host1:8080" || got[1].Address != "http://host3:8080" {
			t.Fatalf("\t%s\tShould exclude the specified node: %v", failed, got)
		}
		t.Logf("\t%s\tShould exclude the specified node.", success)

		if !ps.Remove(nodes[1]) || ps.Remove(nodes[1]) || ps.Contains(nodes[1]) {
			t.Fatalf("\t%s\tShould be able to remove a node.", failed)
		}
		t.Logf("\t%s\tShould be able to remove a node.", success)
	}
}

func Test_Node(t *testing.T) {
	type table struct {
		name  string
		a     string
		b     string
		match bool
	}

	tt := []table{
		{name: "same", a: "http://10.0.0.5:8080", b: "http://10.0.0.5:8080/", match: true},
		{name: "localhost", a: "http://localhost:8080", b: "http://127.0.0.1:8080", match: true},
		{name: "port", a: "http://127.0.0.1:8080", b: "http://127.0.0.1:9080", match: false},
		{name: "scheme", a: "http://127.0.0.1:443", b: "https://127.0.0.1", match: false},
		{name: "host", a: "http://10.0.0.5:8080", b: "http://10.0.0.6:8080", match: false},
	}

	t.Log("Given the need to detect the same node behind different addresses.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				if got := mustNode(t, tst.a).Match(mustNode(t, tst.b)); got != tst.match {
					t.Fatalf("\t%s\tTest %d:\tShould get match %v for %s and %s.", failed, testID, tst.match, tst.a, tst.b)
				}
				t.Logf("\t%s\tTest %d:\tShould get match %v.", success, testID, tst.match)
			}

			t.Run(tst.name, f)
		}

		if _, err := peer.New("10.0.0.5:8080"); err == nil {
			t.Fatalf("\t%s\tShould reject an address without a scheme.", failed)
		}
		t.Logf("\t%s\tShould reject an address without a scheme.", success)

		if got := mustNode(t, "http://10.0.0.5:8080").URL("/v1/node"); got != "http://10.0.0.5:8080/v1/node" {
			t.Fatalf("\t%s\tShould build the endpoint url, got %s.", failed, got)
		}
		t.Logf("\t%s\tShould build the endpoint url.", success)
	}
}

func Test_Broadcast(t *testing.T) {
	var mu sync.Mutex
	var got []string

	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var n peer.Node
		json.NewDecoder(r.Body).Decode(&n)

		mu.Lock()
		got = append(got, r.Method+" "+r.URL.Path+" "+n.Address)
		mu.Unlock()

		w.WriteHeader(http.StatusNoContent)
	}))
	defer ok.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer bad.Close()

	var warnings int
	ev := func(v string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		if strings.HasPrefix(v, "peer: Broadcast: WARNING:") {
			warnings++
		}
	}

	t.Log("Given the need to send data to every peer.")
	{
		client := peer.NewClient(time.Second, 2, ev)
		nodes := []peer.Node{mustNode(t, ok.URL), mustNode(t, bad.URL), mustNode(t, "http://127.0.0.1:1")}

		payload := mustNode(t, "http://10.0.0.5:8080")

		select {
		case <-client.Broadcast(context.Background(), nodes, http.MethodPut, "v1/node", payload):
		case <-time.After(5 * time.Second):
			t.Fatalf("\t%s\tShould finish the broadcast.", failed)
		}
		t.Logf("\t%s\tShould finish the broadcast.", success)

		mu.Lock()
		defer mu.Unlock()

		if len(got) != 1 || got[0] != "PUT /v1/node http://10.0.0.5:8080" {
			t.Fatalf("\t%s\tShould deliver the payload to the healthy peer: %v", failed, got)
		}
		t.Logf("\t%s\tShould deliver the payload to the healthy peer.", success)

		if warnings != 2 {
			t.Fatalf("\t%s\tShould report each failed peer, got %d.", failed, warnings)
		}
		t.Logf("\t%s\tShould report each failed peer.", success)
	}
}

func Test_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"ip": "10.0.0.5"})
	}))
	defer srv.Close()

	client := peer.NewClient(time.Second, 1, nil)

	var resp struct {
		IP string `json:"ip"`
	}
	if err := client.Send(context.Background(), http.MethodGet, srv.URL+"/v1/node/ip", nil, &resp); err != nil {
		t.Fatalf("Should be able to send a request: %s", err)
	}
	if resp.IP != "10.0.0.5" {
		t.Fatalf("Should decode the response, got %q.", resp.IP)
	}

	if err := client.Send(context.Background(), http.MethodGet, srv.URL+"/missing", nil, nil); err == nil {
		t.Fatalf("Should get an error for a non 2xx status.")
	}
}
