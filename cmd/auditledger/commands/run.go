package commands

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mosaicnetworks/auditledger/internal/election"
	"github.com/mosaicnetworks/auditledger/internal/heartbeat"
	"github.com/mosaicnetworks/auditledger/internal/mempool"
	"github.com/mosaicnetworks/auditledger/internal/node"
	"github.com/mosaicnetworks/auditledger/internal/peers"
	"github.com/mosaicnetworks/auditledger/internal/security"
	"github.com/mosaicnetworks/auditledger/internal/service"
	"github.com/mosaicnetworks/auditledger/internal/store"
	"github.com/mosaicnetworks/auditledger/internal/transport"
)

var serviceAddr string

// NewRunCmd produces the run command, which starts one node: it opens the
// chain store, loads the keypair and peer list, binds the transport, and
// blocks serving RPCs and running the leader duties.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an auditledger node",
		RunE:  run,
	}
	cmd.Flags().StringVar(&serviceAddr, "service-listen", "127.0.0.1:8080", "HTTP status API listen address")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	logger := conf.Logger()

	peerFlags, err := cmd.Flags().GetStringSlice("peers")
	if err != nil {
		return err
	}

	peerStore := peers.NewJSONStore(conf.DataDir)
	peerSet, err := peerStore.Load()
	if err != nil {
		return fmt.Errorf("loading peers.json: %s", err)
	}
	if len(peerFlags) > 0 {
		peerSet = peers.New(peerFlags)
		if err := peerStore.Save(peerSet); err != nil {
			logger.WithError(err).Warn("could not persist peers.json")
		}
	}

	key := security.NewPemKey(conf.DataDir)
	if _, err := key.ReadPrivateKey(); err != nil {
		logger.WithError(err).Warn("no keypair found, run `auditledger keygen` first")
	}

	chain, err := store.Open(conf.DataDir)
	if err != nil {
		return fmt.Errorf("opening chain store: %s", err)
	}

	trans, err := transport.NewNetTransport(conf.BindAddr, logger)
	if err != nil {
		return fmt.Errorf("binding transport: %s", err)
	}

	n := node.New(
		conf,
		peerSet,
		mempool.New(),
		chain,
		heartbeat.New(),
		election.New(),
		trans,
	)

	logger.WithFields(logrus.Fields{
		"listen":   conf.BindAddr,
		"peers":    peerSet.Addresses,
		"datadir":  conf.DataDir,
		"last_id":  chain.GetLastID(),
		"quorum":   peerSet.Quorum(),
	}).Info("starting auditledger node")

	statusAPI := service.NewService(serviceAddr, n, logger)
	go statusAPI.Serve()

	n.Run()

	return nil
}
