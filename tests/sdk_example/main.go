package main

import (
	"context"
	"fmt"
	"os"

	"github.com/osvaldoandrade/memostamp/pkg/memostampsdk"
)

func main() {
	dir := os.Getenv("MEMOSTAMP_DIR")
	if dir == "" {
		fmt.Fprintln(os.Stderr, "MEMOSTAMP_DIR is required (path to the data directory)")
		os.Exit(1)
	}
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: sdk_example <file>...")
		os.Exit(2)
	}

	cfg := memostampsdk.DefaultConfig(dir)
	cfg.Account = os.Getenv("MEMOSTAMP_ACCOUNT")

	ctx := context.Background()
	client, err := memostampsdk.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	for _, path := range os.Args[1:] {
		stamp, err := client.StampFile(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "stamp %s: %v\n", path, err)
			continue
		}
		state := "new"
		if stamp.Existing {
			state = "existing"
		}
		if !stamp.Accepted {
			state = "rejected: " + stamp.Message
		}
		fmt.Printf("%s hash=%s ledger=%d timestamp=%d (%s)\n", path, stamp.Hash, stamp.LedgerSeq, stamp.Timestamp, state)
	}

	latest, err := client.Latest(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "latest: %v\n", err)
		return
	}
	fmt.Printf("latest ledger=%d entries=%d\n", latest.Sequence, latest.StateEntries)
}
