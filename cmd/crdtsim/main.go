// Command crdtsim runs a two-replica editing session in one process:
// both replicas edit concurrently, exchange their operation logs via
// package comm, and the simulation reports whether they converged.
package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/maca/crdt-graph/comm"
	"github.com/maca/crdt-graph/config"
	"github.com/maca/crdt-graph/crdt"
	"github.com/maca/crdt-graph/replica"
)

// Functions

// initLogger initializes a JSON gokit-logger set
// to the according log level supplied via cli flag.
func initLogger(loglevel string) log.Logger {

	logger := log.NewJSONLogger(log.NewSyncWriter(os.Stdout))
	logger = log.With(logger,
		"ts", log.DefaultTimestampUTC,
		"caller", log.DefaultCaller,
	)

	switch strings.ToLower(loglevel) {
	case "info":
		logger = level.NewFilter(logger, level.AllowInfo())
	case "warn":
		logger = level.NewFilter(logger, level.AllowWarn())
	case "error":
		logger = level.NewFilter(logger, level.AllowError())
	default:
		logger = level.NewFilter(logger, level.AllowDebug())
	}

	return logger
}

// initService builds one replica's service stack: the engine wrapped
// with logging and metrics.
func initService(logger log.Logger, m *GraphMetrics, id uint64, maxReplicas uint64) (replica.Service, error) {

	s, err := replica.NewService(crdt.InitReplicaID(id), maxReplicas)
	if err != nil {
		return nil, err
	}

	s = replica.NewLoggingService(s, logger)
	s = replica.NewMetricsService(s, m.Replica.Applied, m.Replica.Rejected)

	return s, nil
}

func main() {

	// Parse command-line flag that defines a config path.
	configFlag := flag.String("config", "config.toml", "Provide path to configuration file in TOML syntax.")
	loglevelFlag := flag.String("loglevel", "debug", "This flag sets the default logging level.")
	flag.Parse()

	logger := initLogger(*loglevelFlag)

	// Read configuration from file.
	conf, err := config.LoadConfig(*configFlag)
	if err != nil {
		level.Error(logger).Log(
			"msg", "failed to load the config", "err", err,
		)
		os.Exit(1)
	}

	// Host-specific overrides are optional.
	if env, err := config.LoadEnv(); err == nil {
		conf.Merge(env)
	}

	metrics := NewGraphMetrics(conf.Prometheus.Addr)
	go runPromHTTP(logger, conf.Prometheus.Addr)

	// The simulation plays this replica against one configured peer,
	// both living in this process. With several peers configured, which
	// one is picked follows map iteration order and is not defined.
	var peerID uint64
	var peerName string
	for name, peer := range conf.Peers {
		peerID = peer.ID
		peerName = name
		break
	}

	if peerName == "" {
		level.Error(logger).Log("msg", "config declares no peers to synchronize with")
		os.Exit(1)
	}

	local, err := initService(log.With(logger, "replica", conf.Replica.Name), metrics, conf.Replica.ID, conf.Replica.MaxReplicas)
	if err != nil {
		level.Error(logger).Log("msg", "failed to initialize local replica", "err", err)
		os.Exit(1)
	}

	peer, err := initService(log.With(logger, "replica", peerName), metrics, peerID, conf.Replica.MaxReplicas)
	if err != nil {
		level.Error(logger).Log("msg", "failed to initialize peer replica", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	localSyncer := comm.InitSyncer(log.With(logger, "syncer", conf.Replica.Name), local)
	peerSyncer := comm.InitSyncer(log.With(logger, "syncer", peerName), peer)

	// The local replica authors a small document.
	err = local.Batch([]crdt.Instruction{
		crdt.AddBranch("groceries"),
		crdt.AddNode("milk"),
		crdt.AddNode("bread"),
	})
	if err != nil {
		level.Error(logger).Log("msg", "failed to author document", "err", err)
		os.Exit(1)
	}

	// First exchange hands the document to the peer.
	if err := peerSyncer.SyncWith(ctx, local); err != nil {
		level.Error(logger).Log("msg", "failed initial exchange", "err", err)
		os.Exit(1)
	}

	history := local.OperationsSince(crdt.RootTimestamp)
	groceries := crdt.Path{crdt.OperationTimestamp(history[0])}
	milk := append(append(crdt.Path{}, groceries...), crdt.OperationTimestamp(history[1]))

	// Concurrent edits on both sides.
	err = local.Batch([]crdt.Instruction{crdt.DeleteNode(milk)})
	if err != nil {
		level.Error(logger).Log("msg", "failed local edit", "err", err)
		os.Exit(1)
	}

	err = peer.Batch([]crdt.Instruction{crdt.AddBranch("chores"), crdt.AddNode("dishes")})
	if err != nil {
		level.Error(logger).Log("msg", "failed peer edit", "err", err)
		os.Exit(1)
	}

	// One round in each direction settles both sides.
	if err := localSyncer.SyncWith(ctx, peer); err != nil {
		level.Error(logger).Log("msg", "failed exchange towards local", "err", err)
		os.Exit(1)
	}
	if err := peerSyncer.SyncWith(ctx, local); err != nil {
		level.Error(logger).Log("msg", "failed exchange towards peer", "err", err)
		os.Exit(1)
	}

	localLog := local.OperationsSince(crdt.RootTimestamp)
	peerLog := peer.OperationsSince(crdt.RootTimestamp)

	converged := len(localLog) == len(peerLog)

	_, localMilk := local.Get(milk)
	_, peerMilk := peer.Get(milk)
	converged = converged && localMilk == peerMilk

	level.Info(logger).Log(
		"msg", "simulation finished",
		"converged", converged,
		"log_entries", len(localLog),
	)

	if !converged {
		os.Exit(1)
	}
}
