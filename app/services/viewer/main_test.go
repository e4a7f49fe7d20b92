package main

import "testing"

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_EventsURL(t *testing.T) {
	type table struct {
		name  string
		node  string
		kinds []string
		exp   string
		err   bool
	}

	tt := []table{
		{name: "http", node: "http://localhost:8080", exp: "ws://localhost:8080/v1/events"},
		{name: "https", node: "https://node.example.com", exp: "wss://node.example.com/v1/events"},
		{name: "kinds", node: "http://localhost:8080", kinds: []string{"worker", "state"}, exp: "ws://localhost:8080/v1/events?kind=worker%2Cstate"},
		{name: "scheme", node: "ftp://localhost", err: true},
	}

	t.Log("Given the need to build the websocket url for a node.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				got, err := eventsURL(tst.node, tst.kinds)
				if tst.err {
					if err == nil {
						t.Fatalf("\t%s\tTest %d:\tShould reject the node url.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould reject the node url.", success, testID)
					return
				}

				if err != nil || got != tst.exp {
					t.Fatalf("\t%s\tTest %d:\tShould get %q, got %q: %v", failed, testID, tst.exp, got, err)
				}
				t.Logf("\t%s\tTest %d:\tShould get %q.", success, testID, tst.exp)
			}

			t.Run(tst.name, f)
		}
	}
}
