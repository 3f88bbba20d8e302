package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestLivenessFallbackProbesBareTarget(t *testing.T) {
	env := newFakeEnv()
	env.stdout["httpx"] = "https://test.local\n"
	d := newTestDeps(t, "test.local", env)

	res := (&LivenessStage{deps: d}).Run(context.Background())

	if res.Outcome != Completed {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	calls := env.callsFor("httpx")
	if len(calls) != 1 {
		t.Fatalf("httpx calls = %d", len(calls))
	}
	if calls[0].Stdin != "https://test.local\n" {
		t.Errorf("fallback should probe exactly the bare target over https, got stdin %q", calls[0].Stdin)
	}
	if !hasArgs(calls[0], "-mc", "200") {
		t.Errorf("httpx should filter for status 200 only: %v", calls[0].Args)
	}
}

func TestLivenessUsesSubdomainArtifact(t *testing.T) {
	env := newFakeEnv()
	env.stdout["httpx"] = "https://a.example.com\n"
	d := newTestDeps(t, "example.com", env)
	if err := d.store.WriteLines(ArtifactAllSubs, []string{"a.example.com", "b.example.com"}); err != nil {
		t.Fatalf("WriteLines: %v", err)
	}

	(&LivenessStage{deps: d}).Run(context.Background())

	calls := env.callsFor("httpx")
	if len(calls) != 1 {
		t.Fatalf("httpx calls = %d", len(calls))
	}
	if calls[0].Stdin != "a.example.com\nb.example.com\n" {
		t.Errorf("stdin = %q", calls[0].Stdin)
	}
}

func TestLivenessEmptySubdomainArtifactFallsBack(t *testing.T) {
	env := newFakeEnv()
	env.stdout["httpx"] = ""
	d := newTestDeps(t, "example.com", env)
	// Artefato presente mas vazio conta como ausente.
	if err := d.store.WriteLines(ArtifactAllSubs, nil); err != nil {
		t.Fatalf("WriteLines: %v", err)
	}

	(&LivenessStage{deps: d}).Run(context.Background())

	calls := env.callsFor("httpx")
	if len(calls) != 1 || calls[0].Stdin != "https://example.com\n" {
		t.Errorf("empty artifact should trigger the bare-target fallback: %+v", calls)
	}
}

func TestLivenessSpawnFailureReportsFailed(t *testing.T) {
	env := newFakeEnv()
	env.stdout["httpx"] = ""
	env.runErrs["httpx"] = errors.New("fork/exec: resource temporarily unavailable")
	d := newTestDeps(t, "example.com", env)

	res := (&LivenessStage{deps: d}).Run(context.Background())

	// Ferramenta presente no PATH que não chegou a rodar não é "missing tool".
	if res.Outcome != Failed {
		t.Errorf("outcome = %v, want Failed", res.Outcome)
	}
	if res.Err == nil {
		t.Error("spawn failure should be carried in the result")
	}
}

func TestLivenessMissingToolSkips(t *testing.T) {
	env := newFakeEnv()
	d := newTestDeps(t, "example.com", env)

	res := (&LivenessStage{deps: d}).Run(context.Background())

	if res.Outcome != SkippedMissingTool {
		t.Errorf("outcome = %v", res.Outcome)
	}
}

func TestLivenessWritesConfirmedHosts(t *testing.T) {
	env := newFakeEnv()
	env.stdout["httpx"] = "https://a.example.com\r\nhttps://c.example.com\n"
	d := newTestDeps(t, "example.com", env)

	res := (&LivenessStage{deps: d}).Run(context.Background())

	if res.Count != 2 {
		t.Errorf("count = %d", res.Count)
	}
	got, _ := d.store.Lines(ArtifactLiveHosts)
	want := []string{"https://a.example.com", "https://c.example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("live hosts = %v", got)
	}
}
