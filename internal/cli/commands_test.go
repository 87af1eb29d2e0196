package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

const testAccount = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func decodeOutput(t *testing.T, out string, target any) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), target); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
}

func TestStampLifecycle(t *testing.T) {
	for _, backend := range []domain.Backend{domain.BackendSQLite, domain.BackendGit} {
		t.Run(string(backend), func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "ledger")
			out, err := runCLI(t, "--dir", dir, "--account", testAccount, "--json",
				"init", "--backend", string(backend), "--genesis-seq", "1000")
			if err != nil {
				t.Fatalf("init: %v", err)
			}
			var manifest manifestOutput
			decodeOutput(t, out, &manifest)
			if manifest.Backend != string(backend) || manifest.GenesisSeq != 1000 || manifest.Account != testAccount {
				t.Fatalf("unexpected manifest: %+v", manifest)
			}

			file := filepath.Join(t.TempDir(), "hello.txt")
			if err := os.WriteFile(file, []byte("hello"), 0o644); err != nil {
				t.Fatalf("write file: %v", err)
			}

			out, err = runCLI(t, "--dir", dir, "--json", "stamp", file)
			if err != nil {
				t.Fatalf("first stamp: %v", err)
			}
			var first stampOutput
			decodeOutput(t, out, &first)
			if first.Status != "accepted" || first.Existing || first.Timestamp != 1000 || first.LedgerSeq != 1000 {
				t.Fatalf("unexpected first stamp: %+v", first)
			}

			out, err = runCLI(t, "--dir", dir, "--json", "stamp", file)
			if err != nil {
				t.Fatalf("second stamp: %v", err)
			}
			var second stampOutput
			decodeOutput(t, out, &second)
			if !second.Existing || second.Timestamp != 1000 || second.LedgerSeq != 1001 {
				t.Fatalf("unexpected second stamp: %+v", second)
			}
			if second.Hash != first.Hash {
				t.Fatalf("hash changed between stamps: %s vs %s", first.Hash, second.Hash)
			}

			out, err = runCLI(t, "--dir", dir, "--json", "check", file)
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			var check checkOutput
			decodeOutput(t, out, &check)
			if !check.Found || check.Timestamp != 1000 {
				t.Fatalf("unexpected check: %+v", check)
			}

			_, err = runCLI(t, "--dir", dir, "--json", "check", "--hash", strings.Repeat("ab", 32))
			if ExitCode(err) != ExitNotFound {
				t.Fatalf("expected not found exit code, got %d (%v)", ExitCode(err), err)
			}

			out, err = runCLI(t, "--dir", dir, "--json", "submit", "--payload",
				`{"TransactionType":"Payment","Account":"`+testAccount+`"}`)
			if ExitCode(err) != ExitRejected {
				t.Fatalf("expected rejected exit code, got %d (%v)", ExitCode(err), err)
			}
			var rejected receiptOutput
			decodeOutput(t, out, &rejected)
			if rejected.Status != "rejected" || rejected.Code != 10 || rejected.LedgerSeq != 1002 {
				t.Fatalf("unexpected rejection receipt: %+v", rejected)
			}

			out, err = runCLI(t, "--dir", dir, "--json", "receipts")
			if err != nil {
				t.Fatalf("receipts: %v", err)
			}
			var receipts []receiptOutput
			decodeOutput(t, out, &receipts)
			if len(receipts) != 3 || receipts[0].LedgerSeq != 1002 || receipts[2].LedgerSeq != 1000 {
				t.Fatalf("unexpected receipts: %+v", receipts)
			}

			out, err = runCLI(t, "--dir", dir, "--json", "receipts", "--memo", first.Hash)
			if err != nil {
				t.Fatalf("receipts by memo: %v", err)
			}
			receipts = nil
			decodeOutput(t, out, &receipts)
			if len(receipts) != 2 {
				t.Fatalf("expected 2 receipts for memo, got %d", len(receipts))
			}

			out, err = runCLI(t, "--dir", dir, "--json", "ledger")
			if err != nil {
				t.Fatalf("ledger: %v", err)
			}
			var ledger ledgerOutput
			decodeOutput(t, out, &ledger)
			if ledger.Sequence != 1002 || ledger.StateEntries != 1 {
				t.Fatalf("unexpected ledger: %+v", ledger)
			}

			out, err = runCLI(t, "--dir", dir, "--json", "lookup", first.Hash)
			if err != nil {
				t.Fatalf("lookup: %v", err)
			}
			check = checkOutput{}
			decodeOutput(t, out, &check)
			if !check.Found || check.Timestamp != 1000 {
				t.Fatalf("unexpected lookup: %+v", check)
			}

			out, err = runCLI(t, "--dir", dir, "--json", "status")
			if err != nil {
				t.Fatalf("status: %v", err)
			}
			var status statusOutput
			decodeOutput(t, out, &status)
			if status.Manifest == nil || status.Ledger == nil || status.Ledger.Sequence != 1002 {
				t.Fatalf("unexpected status: %+v", status)
			}

			out, err = runCLI(t, "--dir", dir, "--json", "integrity", "verify", "--deep")
			if err != nil {
				t.Fatalf("integrity verify: %v\n%s", err, out)
			}
			var verify integrityOutput
			decodeOutput(t, out, &verify)
			if verify.Receipts != 3 || verify.Stamps != 1 || verify.Valid != 1 || len(verify.Issues) != 0 {
				t.Fatalf("unexpected verify result: %+v", verify)
			}

			out, err = runCLI(t, "--dir", dir, "--json", "maintenance", "gc")
			if err != nil {
				t.Fatalf("maintenance gc: %v\n%s", err, out)
			}
			var gc gcOutput
			decodeOutput(t, out, &gc)
			if gc.Status != "ok" || gc.Backend != string(backend) {
				t.Fatalf("unexpected gc result: %+v", gc)
			}

			out, err = runCLI(t, "--dir", dir, "--json", "check", "--hash", first.Hash)
			if err != nil {
				t.Fatalf("check after gc: %v\n%s", err, out)
			}
		})
	}
}

func TestSubmitEmptyMemoDataIsMalformed(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, "--dir", dir, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	out, err := runCLI(t, "--dir", dir, "--json", "submit", "--payload",
		`{"TransactionType":"Payment","Account":"`+testAccount+`","Memos":[{"Memo":{"MemoData":""}}]}`)
	if ExitCode(err) != ExitRejected {
		t.Fatalf("expected rejected exit code, got %d (%v)", ExitCode(err), err)
	}
	var receipt receiptOutput
	decodeOutput(t, out, &receipt)
	if receipt.Code != 20 {
		t.Fatalf("expected code 20, got %+v", receipt)
	}
}

func TestInitTwiceConflicts(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, "--dir", dir, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	_, err := runCLI(t, "--dir", dir, "init")
	if ExitCode(err) != ExitConflict {
		t.Fatalf("expected conflict exit code, got %d (%v)", ExitCode(err), err)
	}
}

func TestInitWAL(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ledger")
	out, err := runCLI(t, "--dir", dir, "--json", "init", "--wal")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	var manifest manifestOutput
	decodeOutput(t, out, &manifest)
	if !manifest.SQLiteWAL || manifest.Backend != string(domain.BackendSQLite) {
		t.Fatalf("unexpected manifest: %+v", manifest)
	}
	if _, err := runCLI(t, "--dir", dir, "maintenance", "gc"); err != nil {
		t.Fatalf("gc on wal ledger: %v", err)
	}

	_, err = runCLI(t, "--dir", filepath.Join(t.TempDir(), "git"), "init", "--wal", "--backend", "git")
	if ExitCode(err) != ExitInvalid {
		t.Fatalf("expected validation exit code, got %d (%v)", ExitCode(err), err)
	}
}

func TestMaintenanceGCRejectsNegativeAge(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, "--dir", dir, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	_, err := runCLI(t, "--dir", dir, "maintenance", "gc", "--prune-age=-1h")
	if ExitCode(err) != ExitInvalid {
		t.Fatalf("expected validation exit code, got %d (%v)", ExitCode(err), err)
	}
}

func TestCommandsRequireInit(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "--dir", dir, "ledger")
	if ExitCode(err) != ExitNotFound {
		t.Fatalf("expected not found exit code, got %d (%v)", ExitCode(err), err)
	}
}

func TestStampWithoutAccount(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, "--dir", dir, "--account", "", "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	file := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(file, []byte("doc"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	_, err := runCLI(t, "--dir", dir, "--account", "", "stamp", file)
	if ExitCode(err) != ExitInvalid {
		t.Fatalf("expected validation exit code, got %d (%v)", ExitCode(err), err)
	}
}

func TestCheckArguments(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, "--dir", dir, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	_, err := runCLI(t, "--dir", dir, "check")
	if ExitCode(err) != ExitInvalid {
		t.Fatalf("expected validation exit code, got %d (%v)", ExitCode(err), err)
	}
}

func TestStatusUninitialized(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "--dir", dir, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "not initialized") {
		t.Fatalf("unexpected status output: %s", out)
	}
}
