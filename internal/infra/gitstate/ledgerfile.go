package gitstate

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

type ledgerDocument struct {
	Sequence     int64  `yaml:"sequence"`
	ClosedAt     string `yaml:"closed_at,omitempty"`
	StateEntries int64  `yaml:"state_entries"`
}

func renderLedger(info domain.LedgerInfo) ([]byte, error) {
	doc := ledgerDocument{Sequence: info.Sequence, StateEntries: info.StateEntries}
	if !info.ClosedAt.IsZero() {
		doc.ClosedAt = info.ClosedAt.UTC().Format(time.RFC3339Nano)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal ledger header: %w", err)
	}
	return data, nil
}

func parseLedger(data []byte) (domain.LedgerInfo, error) {
	var doc ledgerDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.LedgerInfo{}, fmt.Errorf("parse ledger header: %w", err)
	}
	info := domain.LedgerInfo{Sequence: doc.Sequence, StateEntries: doc.StateEntries}
	if doc.ClosedAt != "" {
		closedAt, err := time.Parse(time.RFC3339Nano, doc.ClosedAt)
		if err != nil {
			return domain.LedgerInfo{}, fmt.Errorf("parse ledger closed_at: %w", err)
		}
		info.ClosedAt = closedAt.UTC()
	}
	return info, nil
}
