package main

import (
	"context"
	"fmt"
)

func balanceCmd(ctx context.Context, conf *balanceConfig) error {
	svc, _, err := newService(&conf.commonFlags)
	if err != nil {
		return err
	}

	b, err := svc.Balance(ctx, conf.Address)
	if err != nil {
		return err
	}

	fmt.Printf("Balance:\t%s SOL (%d lamports)\n", formatSOL(b.Lamports), b.Lamports)
	return nil
}
