package pipeline

import (
	"context"
	"strings"

	"github.com/gilsgil/reconpipe/pkg/artifacts"
	"github.com/gilsgil/reconpipe/pkg/tools"
)

// LivenessStage filtra os hosts que respondem HTTP 200, via httpx.
//
// O filtro aceita só status 200, de propósito: é a política mais estrita das
// duas variantes dos scripts originais, e a escolhida aqui como definitiva.
type LivenessStage struct {
	deps
}

func (s *LivenessStage) Name() string { return "liveness" }

func (s *LivenessStage) Run(ctx context.Context) StageResult {
	if !s.tools.Available("httpx") {
		return skipped(s.Name(), SkippedMissingTool)
	}

	// Sem allsubs.txt utilizável, sonda apenas o próprio alvo em HTTPS.
	hosts := []string{"https://" + s.target}
	if s.store.NonEmpty(ArtifactAllSubs) {
		lines, err := s.store.Lines(ArtifactAllSubs)
		if err != nil {
			return failed(s.Name(), err)
		}
		hosts = lines
	}

	spec, _ := s.tools.Lookup("httpx")
	out, exit, err := s.env.Run(ctx, tools.Command{
		Bin:   spec.Bin,
		Args:  []string{"-silent", "-mc", "200"},
		Stdin: strings.NewReader(strings.Join(hosts, "\n") + "\n"),
	})
	if err != nil {
		s.report.Warnf("httpx failed to run: %v", err)
		return failed(s.Name(), err)
	}
	if exit != 0 {
		s.report.Warnf("httpx exited with code %d, keeping partial output", exit)
	}

	live := artifacts.SplitOutput(out)
	if werr := s.store.WriteLines(ArtifactLiveHosts, live); werr != nil {
		return StageResult{Stage: s.Name(), Outcome: Completed, Err: werr}
	}
	return completed(s.Name(), len(live), ArtifactLiveHosts)
}
