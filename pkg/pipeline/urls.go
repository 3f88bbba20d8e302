package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gilsgil/reconpipe/pkg/artifacts"
	"github.com/gilsgil/reconpipe/pkg/tools"
)

var urlRe = regexp.MustCompile(`https?://[^\s"'<>\\)\]]+`)

// URLStage roda o gospider sobre os hosts vivos e extrai URLs dos arquivos
// brutos que o crawler grava. Sem hosts vivos, rastreia só o alvo com
// profundidade 1 para limitar o trabalho.
type URLStage struct {
	deps
}

func (s *URLStage) Name() string { return "urls" }

func (s *URLStage) Run(ctx context.Context) StageResult {
	if !s.tools.Available("gospider") {
		return skipped(s.Name(), SkippedMissingTool)
	}

	rawDir := filepath.Join(s.store.Dir(), crawlRawDir)
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return failed(s.Name(), err)
	}

	spec, _ := s.tools.Lookup("gospider")
	cmd := tools.Command{Bin: spec.Bin}
	if s.store.NonEmpty(ArtifactLiveHosts) {
		cmd.Args = []string{"-S", s.store.Path(ArtifactLiveHosts), "-o", rawDir, "-q"}
	} else {
		cmd.Args = []string{"-s", "https://" + s.target, "-d", "1", "-o", rawDir, "-q"}
	}

	_, exit, err := s.env.Run(ctx, cmd)
	if err != nil {
		s.report.Warnf("gospider failed to run: %v", err)
		return failed(s.Name(), err)
	}
	if exit != 0 {
		s.report.Warnf("gospider exited with code %d, keeping partial output", exit)
	}

	rawLines, urls, rerr := collectCrawlOutput(rawDir)
	if rerr != nil {
		s.report.Warnf("reading crawler output: %v", rerr)
	}
	if werr := s.store.WriteLines(ArtifactCrawlRaw, rawLines); werr != nil {
		return StageResult{Stage: s.Name(), Outcome: Completed, Err: werr}
	}
	if werr := s.store.WriteLines(ArtifactAllURLs, urls); werr != nil {
		return StageResult{Stage: s.Name(), Outcome: Completed, Err: werr}
	}
	return completed(s.Name(), len(urls), ArtifactCrawlRaw, ArtifactAllURLs)
}

// collectCrawlOutput lê todos os arquivos gravados pelo crawler e separa
// as linhas brutas dos tokens com cara de URL, já deduplicados em ordem
// de primeira ocorrência.
func collectCrawlOutput(rawDir string) (rawLines, urls []string, err error) {
	seen := make(map[string]struct{})
	err = filepath.WalkDir(rawDir, func(path string, d os.DirEntry, werr error) error {
		if werr != nil || d.IsDir() {
			return werr
		}
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return rerr
		}
		for _, line := range artifacts.SplitOutput(data) {
			rawLines = append(rawLines, line)
			for _, u := range urlRe.FindAllString(line, -1) {
				if _, ok := seen[u]; ok {
					continue
				}
				seen[u] = struct{}{}
				urls = append(urls, u)
			}
		}
		return nil
	})
	return rawLines, urls, err
}
