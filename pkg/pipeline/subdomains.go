package pipeline

import (
	"context"
	"strings"

	"github.com/gilsgil/reconpipe/pkg/artifacts"
	"github.com/gilsgil/reconpipe/pkg/tools"
)

// enumerator descreve como invocar uma ferramenta de enumeração de subdomínios.
type enumerator struct {
	tool    string
	rawFile string
	command func(target string) tools.Command
}

// Duas fontes independentes: subfinder recebe o domínio por argumento,
// assetfinder lê o domínio pelo stdin.
var enumerators = []enumerator{
	{
		tool:    "subfinder",
		rawFile: "subfinder.txt",
		command: func(target string) tools.Command {
			return tools.Command{Bin: "subfinder", Args: []string{"-d", target, "-all", "-silent"}}
		},
	},
	{
		tool:    "assetfinder",
		rawFile: "assetfinder.txt",
		command: func(target string) tools.Command {
			return tools.Command{Bin: "assetfinder", Args: []string{"--subs-only"}, Stdin: strings.NewReader(target + "\n")}
		},
	},
}

// SubdomainStage agrega a saída dos enumeradores em allsubs.txt.
// Ferramenta ausente só reduz a cobertura; a etapa segue com as demais.
type SubdomainStage struct {
	deps
}

func (s *SubdomainStage) Name() string { return "subdomains" }

func (s *SubdomainStage) Run(ctx context.Context) StageResult {
	var rawFiles []string
	for _, e := range enumerators {
		spec, ok := s.tools.Lookup(e.tool)
		if !ok || !s.tools.Available(e.tool) {
			s.report.Warnf("%s not found in PATH, skipping source", e.tool)
			continue
		}
		cmd := e.command(s.target)
		cmd.Bin = spec.Bin
		out, exit, err := s.env.Run(ctx, cmd)
		if err != nil {
			s.report.Warnf("%s failed to run: %v", e.tool, err)
			continue
		}
		if exit != 0 {
			s.report.Warnf("%s exited with code %d, keeping partial output", e.tool, exit)
		}
		if werr := s.store.WriteLines(e.rawFile, artifacts.SplitOutput(out)); werr != nil {
			s.report.Warnf("writing %s output: %v", e.tool, werr)
			continue
		}
		rawFiles = append(rawFiles, e.rawFile)
	}

	if len(rawFiles) == 0 {
		return skipped(s.Name(), SkippedMissingTool)
	}

	count, err := s.store.DedupeMerge(ArtifactAllSubs, rawFiles...)
	if err != nil {
		return StageResult{Stage: s.Name(), Outcome: Completed, Err: err}
	}
	return completed(s.Name(), count, ArtifactAllSubs)
}
