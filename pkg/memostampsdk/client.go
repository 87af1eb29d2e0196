package memostampsdk

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/osvaldoandrade/memostamp/internal/app/paths"
	repoapp "github.com/osvaldoandrade/memostamp/internal/app/repo"
	"github.com/osvaldoandrade/memostamp/internal/domain"
	"github.com/osvaldoandrade/memostamp/internal/httpapi"
	"github.com/osvaldoandrade/memostamp/internal/infra/manifestfile"
	"github.com/osvaldoandrade/memostamp/internal/infra/statestore"
	"github.com/osvaldoandrade/memostamp/internal/node"
	"github.com/osvaldoandrade/memostamp/internal/platform"
)

// Client provides direct access to the ledger host and the stamping
// service of one data directory.
type Client struct {
	cfg Config

	mu   sync.Mutex
	node *node.Node
}

// Open opens the data directory, creating it first when cfg.Init is set
// and no manifest exists.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	normalized, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}
	dir, err := paths.NormalizeDataDir(normalized.DataDir)
	if err != nil {
		return nil, err
	}
	normalized.DataDir = dir

	if err := ensureInitialized(ctx, normalized); err != nil {
		return nil, err
	}

	n, err := node.Open(node.Options{
		DataDir: dir,
		Account: normalized.Account,
		Logger:  normalized.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Client{cfg: normalized, node: n}, nil
}

func ensureInitialized(ctx context.Context, cfg Config) error {
	manifests := manifestfile.Store{}
	exists, err := manifests.Exists(cfg.DataDir)
	if err != nil {
		return err
	}
	if exists {
		if cfg.Backend == "" {
			return nil
		}
		manifest, err := manifests.Load(cfg.DataDir)
		if err != nil {
			return err
		}
		if manifest.Backend != domain.Backend(cfg.Backend) {
			return fmt.Errorf("%w: backend %s, manifest has %s", ErrManifestMismatch, cfg.Backend, manifest.Backend)
		}
		return nil
	}
	if !cfg.Init {
		return nil
	}

	service := repoapp.NewInitService(manifests, statestore.Stores{}, platform.RealClock{})
	_, err = service.Init(ctx, cfg.DataDir, repoapp.InitOptions{
		Name:            cfg.Name,
		Backend:         domain.Backend(cfg.Backend),
		GenesisSeq:      cfg.GenesisSeq,
		MaxStateEntries: cfg.MaxStateEntries,
		Account:         cfg.Account,
		SQLiteWAL:       cfg.SQLiteWAL,
	})
	return err
}

// Close releases the state backend. Calls after Close return ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	n := c.node
	c.node = nil
	c.mu.Unlock()

	if n != nil {
		return n.Close()
	}
	return nil
}

// DataDir returns the absolute data directory path.
func (c *Client) DataDir() string {
	return c.cfg.DataDir
}

// Handler serves the HTTP and JSON-RPC API over this client's services,
// for embedding in another server.
func (c *Client) Handler(corsOrigins ...string) (http.Handler, error) {
	n, err := c.current()
	if err != nil {
		return nil, err
	}
	server := httpapi.NewServer(n.Ledger, n.Certify, httpapi.Options{
		CORSOrigins: corsOrigins,
		Gatherer:    n.Metrics.Registry(),
		Logger:      c.cfg.Logger,
	})
	return server.Handler(), nil
}

func (c *Client) current() (*node.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.node == nil {
		return nil, ErrClosed
	}
	return c.node, nil
}
