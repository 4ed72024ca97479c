package main

import (
	"context"
	"fmt"

	"github.com/lazorkit/lazordrop/internal/graceful"
)

func main() {
	subCmd, config := parseCommandLine()

	ctx, stop := graceful.Context(context.Background())
	defer stop()

	var err error
	switch subCmd {
	case airdropSubCmd:
		err = airdropCmd(ctx, config.(*airdropConfig))
	case balanceSubCmd:
		err = balanceCmd(ctx, config.(*balanceConfig))
	default:
		err = fmt.Errorf("unknown sub-command '%s'", subCmd)
	}

	if err != nil {
		printErrorAndExit(err)
	}
}
