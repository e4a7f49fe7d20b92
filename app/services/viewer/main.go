// This program connects to a node's event stream and writes every event
// to the log.
package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/gossipchain/foundation/events"
	"github.com/ardanlabs/gossipchain/foundation/logger"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {
	log, err := logger.New("VIEWER")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Node struct {
			URL              string        `conf:"default:http://localhost:8080"`
			HandshakeTimeout time.Duration `conf:"default:5s"`
			Kinds            []string      `conf:"help:event kinds to show, all when empty"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "gossipchain event viewer",
		},
	}

	const prefix = "VIEWER"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	u, err := eventsURL(cfg.Node.URL, cfg.Node.Kinds)
	if err != nil {
		return err
	}

	// =========================================================================
	// Connect

	dialer := websocket.Dialer{HandshakeTimeout: cfg.Node.HandshakeTimeout}
	c, _, err := dialer.Dial(u, nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", u, err)
	}
	defer c.Close()

	log.Infow("startup", "status", "connected", "url", u)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	readErrors := make(chan error, 1)
	go func() {
		for {
			var e events.Event
			if err := c.ReadJSON(&e); err != nil {
				readErrors <- err
				return
			}
			log.Infow("event", "kind", e.Kind, "msg", e.Message)
		}
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-readErrors:
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil
		}
		return fmt.Errorf("reading events: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}

	return nil
}

// eventsURL turns the node's http address into its websocket events url,
// asking for only the specified kinds.
func eventsURL(node string, kinds []string) (string, error) {
	u, err := url.Parse(node)
	if err != nil {
		return "", fmt.Errorf("node url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("node url: unsupported scheme %q", u.Scheme)
	}
	u.Path = "/v1/events"
	u.RawQuery = ""
	if len(kinds) > 0 {
		u.RawQuery = url.Values{"kind": {strings.Join(kinds, ",")}}.Encode()
	}

	return u.String(), nil
}
