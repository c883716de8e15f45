package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	configPath  string
	dataDir     string
	snapshotDir string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		configPath:  filepath.Join(base, "config.toml"),
		dataDir:     filepath.Join(base, "data"),
		snapshotDir: filepath.Join(base, "snapshots"),
	}
	content := `
[paths]
data_dir = "` + env.dataDir + `"
snapshot_dir = "` + env.snapshotDir + `"
log_dir = "` + filepath.Join(base, "logs") + `"
`
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("output %q does not contain %q", haystack, needle)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// Re-running without --overwrite refuses to clobber.
	if _, err := runCLI(t, env, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

const testCatalogCSV = `Id,Name,Authors,ISBN,Rating,CountsOfReview
1,The Road,Cormac McCarthy,9780307387899,3.97,16500
2,Blood Meridian,Cormac McCarthy,9780679728757,4.19,7300
3,Beloved,Toni Morrison,9781400033416,3.87,9200
`

const testSnapshotJSON = `{
  "status": "OK",
  "results": {
    "published_date": "2026-08-17",
    "lists": [
      {
        "list_name": "Combined Print and E-Book Fiction",
        "books": [
          {"primary_isbn13": "9781111111111", "title": "THE ROAD", "author": "Cormac McCarthy", "rank": 1},
          {"primary_isbn13": "9782222222222", "title": "NO SUCH BOOK", "author": "Nobody Atall", "rank": 2}
        ]
      }
    ]
  }
}`

func TestIngestAndLinkEndToEnd(t *testing.T) {
	env := setupCLITestEnv(t)

	csvPath := filepath.Join(t.TempDir(), "books.csv")
	if err := os.WriteFile(csvPath, []byte(testCatalogCSV), 0o644); err != nil {
		t.Fatalf("write catalog csv: %v", err)
	}
	out, err := runCLI(t, env, "ingest", "catalog", csvPath)
	if err != nil {
		t.Fatalf("ingest catalog: %v\n%s", err, out)
	}
	requireContains(t, out, "3 inserted")

	if err := os.MkdirAll(env.snapshotDir, 0o755); err != nil {
		t.Fatalf("create snapshot dir: %v", err)
	}
	snapshot := filepath.Join(env.snapshotDir, "2026-08-17.json")
	if err := os.WriteFile(snapshot, []byte(testSnapshotJSON), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	out, err = runCLI(t, env, "ingest", "feed")
	if err != nil {
		t.Fatalf("ingest feed: %v\n%s", err, out)
	}
	requireContains(t, out, "2 records seen, 2 new")

	out, err = runCLI(t, env, "link", "--show-misses")
	if err != nil {
		t.Fatalf("link: %v\n%s", err, out)
	}
	requireContains(t, out, "1 matches (blocked 1 | fallback 0)")
	requireContains(t, out, "1 entries unmatched")
	requireContains(t, out, "NO SUCH BOOK")

	// A second run finds the match already persisted and only the miss left.
	out, err = runCLI(t, env, "link")
	if err != nil {
		t.Fatalf("second link: %v\n%s", err, out)
	}
	requireContains(t, out, "0 matches")
}

func TestLinkWithNothingPending(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "link")
	if err != nil {
		t.Fatalf("link on empty store: %v\n%s", err, out)
	}
	requireContains(t, out, "Nothing to link")
}

func TestCheckFailsOnInsufficientData(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "check")
	if err == nil {
		t.Fatalf("expected check to fail on an empty workspace\n%s", out)
	}
	requireContains(t, out, "Snapshot weeks")
}

func TestFetchRequiresAPIKey(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("NYT_API_KEY", "")

	if _, err := runCLI(t, env, "fetch"); err == nil {
		t.Fatal("expected fetch to fail without an API key")
	}
}

func TestProbeRequiresInput(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("HARDCOVER_AUTH_TOKEN", "token")

	if _, err := runCLI(t, env, "probe"); err == nil {
		t.Fatal("expected probe to fail without ISBNs or --from-sources")
	}
}
