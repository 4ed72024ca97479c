package main

import (
	"errors"
	"os"

	"github.com/jessevdk/go-flags"
)

const (
	airdropSubCmd = "airdrop"
	balanceSubCmd = "balance"
)

type configFlags struct {
	commonFlags
}

type commonFlags struct {
	RPCServer    string `long:"rpcserver" short:"s" description:"Solana RPC endpoint (overrides ledger.rpc_url)"`
	IUnderstand  bool   `long:"i-understand" short:"y" description:"Acknowledge that devnet tokens have no real-world value"`
	ConfigName   string `long:"config" description:"Config file name without extension" default:"config"`
	ConfigFolder string `long:"config-dir" description:"Directory to look for the config file in" default:"."`
}

type airdropConfig struct {
	Address      []string `long:"address" short:"d" description:"Wallet address to fund, may be repeated" required:"true"`
	Concurrency  int      `long:"concurrency" short:"c" description:"Maximum airdrops in flight" default:"2"`
	ShowCooldown bool     `long:"show-cooldown" description:"Count down the cooldown after a successful airdrop"`
	commonFlags
}

type balanceConfig struct {
	Address string `long:"address" short:"d" description:"The wallet address to check the balance of" required:"true"`
	commonFlags
}

func parseCommandLine() (subCommand string, config interface{}) {
	subCommand, config, err := parseArgs(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	return subCommand, config
}

func parseArgs(args []string) (string, interface{}, error) {
	cfg := &configFlags{}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)

	airdropConf := &airdropConfig{}
	if _, err := parser.AddCommand(airdropSubCmd, "Requests devnet SOL for one or more addresses",
		"Requests an airdrop for each address and waits for it to be confirmed", airdropConf); err != nil {
		return "", nil, err
	}

	balanceConf := &balanceConfig{}
	if _, err := parser.AddCommand(balanceSubCmd, "Shows the balance of an address",
		"Shows the balance of an address in SOL", balanceConf); err != nil {
		return "", nil, err
	}

	if _, err := parser.ParseArgs(args); err != nil {
		return "", nil, err
	}

	switch parser.Command.Active.Name {
	case airdropSubCmd:
		combineCommonFlags(&airdropConf.commonFlags, &cfg.commonFlags)
		return airdropSubCmd, airdropConf, nil
	case balanceSubCmd:
		combineCommonFlags(&balanceConf.commonFlags, &cfg.commonFlags)
		return balanceSubCmd, balanceConf, nil
	}
	return parser.Command.Active.Name, nil, nil
}

func combineCommonFlags(dst, src *commonFlags) {
	dst.IUnderstand = dst.IUnderstand || src.IUnderstand
	if dst.RPCServer == "" {
		dst.RPCServer = src.RPCServer
	}
	if dst.ConfigName == "config" && src.ConfigName != "" {
		dst.ConfigName = src.ConfigName
	}
	if dst.ConfigFolder == "." && src.ConfigFolder != "" {
		dst.ConfigFolder = src.ConfigFolder
	}
}
