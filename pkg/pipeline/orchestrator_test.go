package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gilsgil/reconpipe/pkg/artifacts"
	"github.com/gilsgil/reconpipe/pkg/config"
	"github.com/gilsgil/reconpipe/pkg/tools"
)

func newTestOrchestrator(t *testing.T, cfg *config.Config, env *fakeEnv) (*Orchestrator, *artifacts.Store) {
	t.Helper()
	cfg.OutputDir = filepath.Join(t.TempDir(), cfg.OutputDir)
	store, err := artifacts.NewStore(cfg.OutputDir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	reg := tools.NewRegistry(env)
	return NewOrchestrator(cfg, store, reg, env, NewReporter(true)), store
}

func TestOrchestratorFullRunWithCannedTools(t *testing.T) {
	env := newFakeEnv()
	env.stdout["subfinder"] = "a.example.com\nb.example.com\n"
	env.stdout["assetfinder"] = "b.example.com\nc.example.com\n"
	env.stdout["httpx"] = "https://a.example.com\n"
	env.stdout["gospider"] = ""
	env.stdout["mantra"] = "leak: api_key\n"
	env.onRun = crawlerWrites(t, map[string]string{
		"crawl": "https://a.example.com/main.js\nhttps://a.example.com/admin.php?debug=1\n",
	})

	cfg := config.Default("example.com")
	orch, store := newTestOrchestrator(t, cfg, env)

	results := orch.Run(context.Background())

	if len(results) != 4 {
		t.Fatalf("results = %d", len(results))
	}
	for _, res := range results {
		if res.Outcome != Completed {
			t.Errorf("stage %s: %v", res.Stage, res.Outcome)
		}
	}

	subs, _ := store.Lines(ArtifactAllSubs)
	if !reflect.DeepEqual(subs, []string{"a.example.com", "b.example.com", "c.example.com"}) {
		t.Errorf("allsubs = %v", subs)
	}
	live, _ := store.Lines(ArtifactLiveHosts)
	if !reflect.DeepEqual(live, []string{"https://a.example.com"}) {
		t.Errorf("live = %v", live)
	}
	js, _ := store.Lines(ArtifactJSURLs)
	if !reflect.DeepEqual(js, []string{"https://a.example.com/main.js"}) {
		t.Errorf("js = %v", js)
	}
	php, _ := store.Lines(ArtifactPHPURLs)
	if !reflect.DeepEqual(php, []string{"https://a.example.com/admin.php"}) {
		t.Errorf("php = %v", php)
	}
	scan, _ := store.Lines(ArtifactScanResults)
	if !reflect.DeepEqual(scan, []string{"leak: api_key"}) {
		t.Errorf("scan = %v", scan)
	}
}

func TestOrchestratorNoToolsStillCompletes(t *testing.T) {
	env := newFakeEnv()
	cfg := config.Default("test.local")
	orch, store := newTestOrchestrator(t, cfg, env)

	results := orch.Run(context.Background())

	want := []Outcome{SkippedMissingTool, SkippedMissingTool, SkippedMissingTool, SkippedNoInput}
	for i, res := range results {
		if res.Outcome != want[i] {
			t.Errorf("stage %s: outcome = %v, want %v", res.Stage, res.Outcome, want[i])
		}
	}
	if _, err := os.Stat(store.Dir()); err != nil {
		t.Errorf("output directory should exist: %v", err)
	}
	for _, name := range []string{ArtifactAllSubs, ArtifactLiveHosts, ArtifactAllURLs, ArtifactScanResults} {
		if store.NonEmpty(name) {
			t.Errorf("artifact %s should be empty or absent", name)
		}
	}
}

func TestOrchestratorDisabledStageIsAbsorbedDownstream(t *testing.T) {
	env := newFakeEnv()
	env.stdout["subfinder"] = "a.example.com\n"
	env.stdout["assetfinder"] = ""
	env.stdout["gospider"] = ""
	env.onRun = crawlerWrites(t, nil)

	cfg := config.Default("example.com")
	cfg.Stages.Probe = false
	orch, _ := newTestOrchestrator(t, cfg, env)

	results := orch.Run(context.Background())

	if results[1].Outcome != SkippedDisabled {
		t.Errorf("probe outcome = %v, want SkippedDisabled", results[1].Outcome)
	}
	// Sem httpx_live.txt, o crawler cai no fallback de profundidade 1.
	calls := env.callsFor("gospider")
	if len(calls) != 1 || !hasArgs(calls[0], "-d", "1") {
		t.Errorf("crawler should fall back to depth 1: %+v", calls)
	}
}

func TestOrchestratorRunsStagesInFixedOrder(t *testing.T) {
	env := newFakeEnv()
	env.stdout["subfinder"] = "a.example.com\n"
	env.stdout["assetfinder"] = ""
	env.stdout["httpx"] = "https://a.example.com\n"
	env.stdout["gospider"] = ""
	env.onRun = crawlerWrites(t, nil)

	cfg := config.Default("example.com")
	orch, _ := newTestOrchestrator(t, cfg, env)

	results := orch.Run(context.Background())

	var names []string
	for _, res := range results {
		names = append(names, res.Stage)
	}
	want := []string{"subdomains", "liveness", "urls", "extract"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("stage order = %v, want %v", names, want)
	}
}
