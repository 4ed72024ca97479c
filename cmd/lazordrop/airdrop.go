package main

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lazorkit/lazordrop/internal/airdrop"
	"github.com/lazorkit/lazordrop/internal/cooldown"
	"github.com/lazorkit/lazordrop/internal/ledger"
)

type airdropper interface {
	Airdrop(ctx context.Context, address string) (*airdrop.Result, error)
}

func airdropCmd(ctx context.Context, conf *airdropConfig) error {
	svc, _, err := newService(&conf.commonFlags)
	if err != nil {
		return err
	}

	results, err := airdropAll(ctx, svc, conf.Address, conf.Concurrency)
	for _, res := range results {
		fmt.Printf("Airdropped:\t%s SOL to %s\n", formatSOL(res.Lamports), res.Address)
		fmt.Printf("Signature:\t%s (%s after %d checks)\n", res.Signature, res.Status, res.Attempts)
		if res.Balance != nil {
			fmt.Printf("Balance:\t%s SOL\n", formatSOL(res.Balance.Lamports))
		}
	}
	if err != nil {
		return err
	}

	if conf.ShowCooldown && len(results) > 0 {
		last := results[len(results)-1]
		left, err := svc.Cooldown(ctx, last.Address)
		if err != nil {
			return err
		}
		for secs := range cooldown.Countdown(ctx, left) {
			fmt.Printf("\rCooldown:\t%2ds", secs)
		}
		fmt.Println()
	}
	return nil
}

// airdropAll runs independent airdrops with at most limit in flight. It
// returns every successful result and the first error.
func airdropAll(ctx context.Context, svc airdropper, addresses []string, limit int) ([]*airdrop.Result, error) {
	if limit <= 0 {
		limit = 1
	}

	var (
		mu      sync.Mutex
		results = make([]*airdrop.Result, 0, len(addresses))
	)

	eg := &errgroup.Group{}
	eg.SetLimit(limit)
	for _, address := range addresses {
		address := address
		eg.Go(func() error {
			res, err := svc.Airdrop(ctx, address)
			if err != nil {
				return fmt.Errorf("airdrop to %s: %w", address, err)
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}

	err := eg.Wait()
	return results, err
}

func formatSOL(lamports uint64) string {
	return fmt.Sprintf("%.9g", ledger.LamportsToSOL(lamports))
}
