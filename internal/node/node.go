// Package node opens a data directory and wires the ledger host, the hook
// and the certification service over its state backend.
package node

import (
	"fmt"
	"log/slog"
	"strings"

	certifyapp "github.com/osvaldoandrade/memostamp/internal/app/certify"
	"github.com/osvaldoandrade/memostamp/internal/app/hook"
	integrityapp "github.com/osvaldoandrade/memostamp/internal/app/integrity"
	ledgerapp "github.com/osvaldoandrade/memostamp/internal/app/ledger"
	maintenanceapp "github.com/osvaldoandrade/memostamp/internal/app/maintenance"
	"github.com/osvaldoandrade/memostamp/internal/app/paths"
	"github.com/osvaldoandrade/memostamp/internal/domain"
	"github.com/osvaldoandrade/memostamp/internal/infra/canonicaljson"
	"github.com/osvaldoandrade/memostamp/internal/infra/hash"
	"github.com/osvaldoandrade/memostamp/internal/infra/ident"
	"github.com/osvaldoandrade/memostamp/internal/infra/manifestfile"
	"github.com/osvaldoandrade/memostamp/internal/infra/promstats"
	"github.com/osvaldoandrade/memostamp/internal/infra/schema"
	"github.com/osvaldoandrade/memostamp/internal/infra/statestore"
	"github.com/osvaldoandrade/memostamp/internal/infra/txjson"
	"github.com/osvaldoandrade/memostamp/internal/platform"
)

type Options struct {
	DataDir string
	// Account overrides the manifest's stamping account when set.
	Account string
	Logger  *slog.Logger
}

type Node struct {
	Dir      string
	Manifest domain.Manifest
	Metrics  *promstats.Metrics
	Ledger   *ledgerapp.Service
	Certify  *certifyapp.Service
	Verify   *integrityapp.VerifyService
	GC       *maintenanceapp.GCService

	backend statestore.Backend
}

func Open(opts Options) (*Node, error) {
	dir, err := paths.NormalizeDataDir(opts.DataDir)
	if err != nil {
		return nil, err
	}
	manifest, err := manifestfile.Store{}.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	manifest = manifest.WithDefaults()

	validator, err := schema.NewTransactionValidator()
	if err != nil {
		return nil, err
	}
	backend, err := statestore.Open(dir, manifest.Store())
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := platform.RealClock{}
	metrics := promstats.New()
	codec := txjson.NewCodec(validator)
	ledger := ledgerapp.NewService(
		backend,
		hook.NewRecorder(),
		codec,
		codec,
		canonicaljson.Canonicalizer{},
		hash.SHA256{},
		clock,
		ident.NewULIDGenerator(clock),
		ledgerapp.Options{
			GenesisSeq:      manifest.GenesisSeq,
			MaxStateEntries: manifest.MaxStateEntries,
			Logger:          logger,
			Metrics:         metrics,
		},
	)

	account := strings.TrimSpace(opts.Account)
	if account == "" {
		account = manifest.Account
	}

	return &Node{
		Dir:      dir,
		Manifest: manifest,
		Metrics:  metrics,
		Ledger:   ledger,
		Certify:  certifyapp.NewService(ledger, hash.SHA256{}, account),
		Verify:   integrityapp.NewVerifyService(backend),
		GC:       maintenanceapp.NewGCService(backend, clock),
		backend:  backend,
	}, nil
}

func (n *Node) Close() error {
	return n.backend.Close()
}
