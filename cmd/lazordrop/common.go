package main

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"

	"github.com/lazorkit/lazordrop/config"
	"github.com/lazorkit/lazordrop/internal/airdrop"
	"github.com/lazorkit/lazordrop/internal/confirm"
	"github.com/lazorkit/lazordrop/internal/cooldown"
	"github.com/lazorkit/lazordrop/internal/ledger"
	"github.com/lazorkit/lazordrop/internal/logging"
)

var errNotAcknowledged = fmt.Errorf("pass --i-understand to acknowledge: %s", airdrop.DevnetWarning)

func printErrorAndExit(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func newService(flags *commonFlags) (*airdrop.Service, *logrus.Logger, error) {
	if !flags.IUnderstand {
		return nil, nil, errNotAcknowledged
	}

	cfg, err := config.ReadConfig(flags.ConfigName, flags.ConfigFolder)
	if err != nil {
		return nil, nil, err
	}
	if flags.RPCServer != "" {
		cfg.Ledger.RPCURL = flags.RPCServer
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}

	client := ledger.NewSolana(ledger.SolanaConfig{
		URL:        cfg.Ledger.RPCURL,
		Commitment: rpc.CommitmentType(cfg.Ledger.Commitment),
		RetryMax:   cfg.Ledger.RetryMax,
		RetryWait:  cfg.Ledger.RetryWait,
	}, logger)
	poller := confirm.NewPoller(logger, client, cfg.Poller, nil)

	svc := airdrop.NewService(logger, client, poller, cooldown.NewMemoryStore(), nil, cfg.Airdrop)
	return svc, logger, nil
}
