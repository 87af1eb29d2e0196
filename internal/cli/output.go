package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	certifyapp "github.com/osvaldoandrade/memostamp/internal/app/certify"
	"github.com/osvaldoandrade/memostamp/internal/domain"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

type manifestOutput struct {
	Version         int    `json:"version"`
	Name            string `json:"name"`
	Backend         string `json:"backend"`
	GenesisSeq      int64  `json:"genesis_seq"`
	MaxStateEntries int64  `json:"max_state_entries"`
	Account         string `json:"account,omitempty"`
	SQLiteWAL       bool   `json:"sqlite_wal,omitzero"`
	CreatedAt       string `json:"created_at,omitempty"`
}

type ledgerOutput struct {
	Sequence     int64  `json:"sequence"`
	ClosedAt     string `json:"closed_at,omitempty"`
	StateEntries int64  `json:"state_entries"`
}

type statusOutput struct {
	Path     string          `json:"path"`
	Manifest *manifestOutput `json:"manifest,omitempty"`
	Ledger   *ledgerOutput   `json:"ledger,omitempty"`
}

type traceOutput struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

type receiptOutput struct {
	TxID      string        `json:"tx_id"`
	TxHash    string        `json:"tx_hash"`
	LedgerSeq int64         `json:"ledger_seq"`
	ClosedAt  string        `json:"closed_at,omitempty"`
	Account   string        `json:"account"`
	MemoHash  string        `json:"memo_hash,omitempty"`
	Status    string        `json:"status"`
	Code      int64         `json:"code"`
	Message   string        `json:"message"`
	Traces    []traceOutput `json:"traces,omitempty"`
}

type stampOutput struct {
	Path      string `json:"path"`
	Hash      string `json:"hash"`
	Size      int64  `json:"size"`
	LedgerSeq int64  `json:"ledger_seq"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp,omitzero"`
	Existing  bool   `json:"existing"`
}

type checkOutput struct {
	Hash      string `json:"hash"`
	Found     bool   `json:"found"`
	Timestamp int64  `json:"timestamp,omitzero"`
}

func writeJSON(out io.Writer, value any) error {
	data, err := json.Marshal(value, jsontext.WithIndent("  "))
	if err != nil {
		return err
	}
	_, err = out.Write(append(data, '\n'))
	return err
}

func writeKV(out io.Writer, ui renderer, key, value string) error {
	_, err := fmt.Fprintf(out, "%s: %s\n", ui.key(key), value)
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func newManifestOutput(manifest domain.Manifest) manifestOutput {
	return manifestOutput{
		Version:         manifest.Version,
		Name:            manifest.Name,
		Backend:         string(manifest.Backend),
		GenesisSeq:      manifest.GenesisSeq,
		MaxStateEntries: manifest.MaxStateEntries,
		Account:         manifest.Account,
		SQLiteWAL:       manifest.SQLiteWAL,
		CreatedAt:       formatTime(manifest.CreatedAt),
	}
}

func newLedgerOutput(info domain.LedgerInfo) ledgerOutput {
	return ledgerOutput{
		Sequence:     info.Sequence,
		ClosedAt:     formatTime(info.ClosedAt),
		StateEntries: info.StateEntries,
	}
}

func newReceiptOutput(receipt domain.Receipt) receiptOutput {
	output := receiptOutput{
		TxID:      receipt.TxID,
		TxHash:    receipt.TxHash,
		LedgerSeq: receipt.LedgerSeq,
		ClosedAt:  formatTime(receipt.ClosedAt),
		Account:   receipt.Account,
		MemoHash:  receipt.MemoHash,
		Status:    receipt.Outcome.Status.String(),
		Code:      receipt.Outcome.Code,
		Message:   receipt.Outcome.Message,
	}
	for _, trace := range receipt.Traces {
		output.Traces = append(output.Traces, traceOutput{Label: trace.Label, Value: trace.Value})
	}
	return output
}

func newStampOutput(path string, result certifyapp.StampResult) stampOutput {
	return stampOutput{
		Path:      path,
		Hash:      result.Hash.String(),
		Size:      result.Size,
		LedgerSeq: result.Receipt.LedgerSeq,
		Status:    result.Receipt.Outcome.Status.String(),
		Message:   result.Receipt.Outcome.Message,
		Timestamp: result.Timestamp,
		Existing:  result.Existing,
	}
}

func writeManifest(cmd *cobra.Command, manifest domain.Manifest, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, newManifestOutput(manifest))
	}
	ui := newRenderer(out, asJSON)
	if _, err := fmt.Fprintf(out, "%s %s (%s backend, genesis %d)\n", ui.ok("Initialized"), manifest.Name, manifest.Backend, manifest.GenesisSeq); err != nil {
		return err
	}
	if manifest.Account != "" {
		return writeKV(out, ui, "Account", manifest.Account)
	}
	return nil
}

func writeStatus(cmd *cobra.Command, status domain.RepoStatus, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		output := statusOutput{Path: status.Path}
		if status.HasManifest {
			manifest := newManifestOutput(status.Manifest)
			ledger := newLedgerOutput(status.Ledger)
			output.Manifest = &manifest
			output.Ledger = &ledger
		}
		return writeJSON(out, output)
	}

	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Path", status.Path); err != nil {
		return err
	}
	if !status.HasManifest {
		return writeKV(out, ui, "Manifest", ui.dim("(not initialized)"))
	}
	manifest := fmt.Sprintf("%s (v%d)", status.Manifest.Name, status.Manifest.Version)
	rows := [][2]string{
		{"Manifest", manifest},
		{"Backend", string(status.Manifest.Backend)},
		{"Genesis", fmt.Sprintf("%d", status.Manifest.GenesisSeq)},
	}
	if status.Manifest.MaxStateEntries > 0 {
		rows = append(rows, [2]string{"Max Entries", fmt.Sprintf("%d", status.Manifest.MaxStateEntries)})
	}
	if status.Manifest.Account != "" {
		rows = append(rows, [2]string{"Account", status.Manifest.Account})
	}
	if status.Ledger.Sequence > 0 {
		rows = append(rows,
			[2]string{"Ledger", fmt.Sprintf("%d", status.Ledger.Sequence)},
			[2]string{"Closed At", formatTime(status.Ledger.ClosedAt)},
		)
	} else {
		rows = append(rows, [2]string{"Ledger", ui.dim("(none closed)")})
	}
	rows = append(rows, [2]string{"State Entries", fmt.Sprintf("%d", status.Ledger.StateEntries)})
	for _, row := range rows {
		if err := writeKV(out, ui, row[0], row[1]); err != nil {
			return err
		}
	}
	return nil
}

func writeStampResults(cmd *cobra.Command, results []stampOutput, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		if len(results) == 1 {
			return writeJSON(out, results[0])
		}
		return writeJSON(out, results)
	}
	ui := newRenderer(out, asJSON)
	for _, result := range results {
		var line string
		switch {
		case result.Status != domain.OutcomeAccepted.String():
			line = fmt.Sprintf("%s %s %s", ui.err("rejected"), result.Path, ui.dim(result.Message))
		case result.Existing:
			line = fmt.Sprintf("%s %s %s", ui.warn("existing"), result.Path, ui.dim(fmt.Sprintf("ledger %d", result.Timestamp)))
		default:
			line = fmt.Sprintf("%s %s %s", ui.ok("stamped"), result.Path, ui.dim(fmt.Sprintf("ledger %d", result.Timestamp)))
		}
		if _, err := fmt.Fprintf(out, "%s\n  %s\n", line, strings.ToLower(result.Hash)); err != nil {
			return err
		}
	}
	return nil
}

func writeCheckResult(cmd *cobra.Command, result certifyapp.CheckResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, checkOutput{Hash: result.Hash.String(), Found: result.Found, Timestamp: result.Timestamp})
	}
	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Hash", result.Hash.String()); err != nil {
		return err
	}
	if !result.Found {
		return writeKV(out, ui, "Timestamp", ui.dim("(none)"))
	}
	return writeKV(out, ui, "Timestamp", fmt.Sprintf("%d", result.Timestamp))
}

func writeReceipt(cmd *cobra.Command, receipt domain.Receipt, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, newReceiptOutput(receipt))
	}
	ui := newRenderer(out, asJSON)
	status := ui.outcome(receipt.Outcome)
	rows := [][2]string{
		{"Tx", receipt.TxID},
		{"Tx Hash", receipt.TxHash},
		{"Ledger", fmt.Sprintf("%d", receipt.LedgerSeq)},
		{"Outcome", fmt.Sprintf("%s (%d) %s", status, receipt.Outcome.Code, receipt.Outcome.Message)},
	}
	if receipt.MemoHash != "" {
		rows = append(rows, [2]string{"Memo", receipt.MemoHash})
	}
	for _, row := range rows {
		if err := writeKV(out, ui, row[0], row[1]); err != nil {
			return err
		}
	}
	for _, trace := range receipt.Traces {
		if _, err := fmt.Fprintf(out, "  %s%d\n", ui.dim(trace.Label), trace.Value); err != nil {
			return err
		}
	}
	return nil
}

func writeReceipts(cmd *cobra.Command, receipts []domain.Receipt, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		outputs := make([]receiptOutput, 0, len(receipts))
		for _, receipt := range receipts {
			outputs = append(outputs, newReceiptOutput(receipt))
		}
		return writeJSON(out, outputs)
	}
	ui := newRenderer(out, asJSON)
	if len(receipts) == 0 {
		_, err := fmt.Fprintln(out, ui.dim("no receipts"))
		return err
	}
	for _, receipt := range receipts {
		line := fmt.Sprintf("%s %s %s %s", ui.key(fmt.Sprintf("%d", receipt.LedgerSeq)), ui.outcome(receipt.Outcome), ui.memo(receipt.MemoHash), ui.dim(receipt.Outcome.Message))
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func writeLedgerInfo(cmd *cobra.Command, info domain.LedgerInfo, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, newLedgerOutput(info))
	}
	ui := newRenderer(out, asJSON)
	if info.Sequence == 0 {
		return writeKV(out, ui, "Ledger", ui.dim("(none closed)"))
	}
	if err := writeKV(out, ui, "Ledger", fmt.Sprintf("%d", info.Sequence)); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Closed At", formatTime(info.ClosedAt)); err != nil {
		return err
	}
	return writeKV(out, ui, "State Entries", fmt.Sprintf("%d", info.StateEntries))
}
