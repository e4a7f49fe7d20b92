package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/gossipchain/app/services/node/handlers"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/ledger"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/peer"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/state"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/storage/bolt"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/worker"
	"github.com/ardanlabs/gossipchain/foundation/events"
	"github.com/ardanlabs/gossipchain/foundation/logger"
	"github.com/ardanlabs/gossipchain/foundation/nameservice"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
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
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			APIHost         string        `conf:"default:0.0.0.0:8080"`
		}
		Node struct {
			MasterAddress    string        `conf:"default:http://127.0.0.1:8080"`
			SelfAddress      string        `conf:"help:address other nodes use to reach this node"`
			Difficulty       int           `conf:"default:2"`
			MaxTransPerBlock int           `conf:"default:5"`
			SelectStrategy   string        `conf:"default:oldest"`
			MiningPause      time.Duration `conf:"default:10s"`
			StartMining      bool          `conf:"default:false"`
			PeerTimeout      time.Duration `conf:"default:5s"`
			BroadcastLimit   int           `conf:"default:8"`
		}
		NameService struct {
			Folder string `conf:"help:folder of .ecdsa key files whose addresses are admitted at startup"`
		}
		Storage struct {
			Kind string `conf:"default:memory,help:memory|disk|bolt"`
			Path string `conf:"default:zblock/blocks"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "gossipchain node",
		},
	}

	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Blockchain Support

	master, err := peer.New(cfg.Node.MasterAddress)
	if err != nil {
		return fmt.Errorf("master address: %w", err)
	}

	store, err := openStorage(cfg.Storage.Kind, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	// The blockchain packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	st, err := state.New(state.Config{
		Difficulty:       cfg.Node.Difficulty,
		MaxTransPerBlock: cfg.Node.MaxTransPerBlock,
		SelectStrategy:   cfg.Node.SelectStrategy,
		SelfAddress:      cfg.Node.SelfAddress,
		Storage:          store,
		KnownPeers:       peer.NewSet(),
		Client:           peer.NewClient(cfg.Node.PeerTimeout, cfg.Node.BroadcastLimit, ev),
		EvHandler:        ev,
	})
	if err != nil {
		store.Close()
		return err
	}
	defer st.Shutdown()

	// The name service admits the addresses for a folder of key files so a
	// fresh network has known senders.
	if cfg.NameService.Folder != "" {
		ns, err := nameservice.New(cfg.NameService.Folder)
		if err != nil {
			return fmt.Errorf("unable to load name service: %w", err)
		}

		for _, addr := range ns.Addresses() {
			if err := st.SubmitAddress(addr); err != nil {
				log.Infow("startup", "status", "nameservice", "address", addr, "ERROR", err)
				continue
			}
			log.Infow("startup", "status", "nameservice", "name", addr.Name, "address", addr)
		}
	}

	// The worker registers itself with the state. Mining is started on
	// request or by configuration once the node has joined the network.
	worker.Run(st, worker.Config{
		MiningPause: cfg.Node.MiningPause,
		EvHandler:   ev,
	})

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	debugMux := handlers.DebugMux(build, log, st)

	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start API Service

	log.Infow("startup", "status", "initializing V1 API support")

	apiMux := handlers.APIMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
		Evts:     evts,
	})

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      apiMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Bind before bootstrapping so the master can reach this node when it
	// is told about it.
	ln, err := net.Listen("tcp", cfg.Web.APIHost)
	if err != nil {
		return fmt.Errorf("listening on api host: %w", err)
	}

	_, port, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		ln.Close()
		return fmt.Errorf("api port: %w", err)
	}

	go func() {
		log.Infow("startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.Serve(ln)
	}()

	// =========================================================================
	// Join The Network

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
	err = st.NetBootstrap(ctx, master, port)
	cancel()
	if err != nil {
		api.Close()
		return fmt.Errorf("bootstrap: %w", err)
	}

	log.Infow("startup", "status", "joined network", "self", st.RetrieveSelf(), "peers", len(st.RetrieveKnownPeers()))

	if cfg.Node.StartMining {
		if _, err := st.StartMining(); err != nil {
			log.Errorw("startup", "status", "start mining", "ERROR", err)
		}
	}

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		log.Infow("shutdown", "status", "tell peers this node is leaving")
		if err := st.NetShutdown(ctx); err != nil {
			log.Errorw("shutdown", "status", "peers not informed", "ERROR", err)
		}

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		log.Infow("shutdown", "status", "shutdown API started")
		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop api service gracefully: %w", err)
		}
	}

	return nil
}

// openStorage constructs the block store named by kind.
func openStorage(kind string, path string) (ledger.Storage, error) {
	switch kind {
	case "memory":
		return memory.New(), nil
	case "disk":
		return disk.New(path)
	case "bolt":
		return bolt.New(path)
	}

	return nil, fmt.Errorf("unknown storage kind %q", kind)
}
