package pipeline

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/gilsgil/reconpipe/pkg/artifacts"
	"github.com/gilsgil/reconpipe/pkg/tools"
)

// ExtractStage particiona allurls.txt em js.txt e php.txt e, com o mantra
// disponível, varre cada URL de JS em busca de segredos expostos.
type ExtractStage struct {
	deps
	threads int
	rps     float64
}

func (s *ExtractStage) Name() string { return "extract" }

func (s *ExtractStage) Run(ctx context.Context) StageResult {
	if !s.store.NonEmpty(ArtifactAllURLs) {
		return skipped(s.Name(), SkippedNoInput)
	}
	urls, err := s.store.Lines(ArtifactAllURLs)
	if err != nil {
		return failed(s.Name(), err)
	}

	jsURLs := filterBySuffix(urls, ".js")
	phpURLs := filterBySuffix(urls, ".php")

	if werr := s.store.WriteLines(ArtifactJSURLs, jsURLs); werr != nil {
		return StageResult{Stage: s.Name(), Outcome: Completed, Err: werr}
	}
	if werr := s.store.SortUnique(ArtifactJSURLs); werr != nil {
		return StageResult{Stage: s.Name(), Outcome: Completed, Err: werr}
	}
	if werr := s.store.WriteLines(ArtifactPHPURLs, phpURLs); werr != nil {
		return StageResult{Stage: s.Name(), Outcome: Completed, Err: werr}
	}
	if werr := s.store.SortUnique(ArtifactPHPURLs); werr != nil {
		return StageResult{Stage: s.Name(), Outcome: Completed, Err: werr}
	}

	produced := []string{ArtifactJSURLs, ArtifactPHPURLs}
	if s.tools.Available("mantra") && s.store.NonEmpty(ArtifactJSURLs) {
		if scanErr := s.scanJS(ctx); scanErr != nil {
			s.report.Warnf("js scan aborted: %v", scanErr)
		} else {
			produced = append(produced, ArtifactScanResults)
		}
	}

	return completed(s.Name(), len(jsURLs)+len(phpURLs), produced...)
}

// filterBySuffix aplica o filtro de sufixo, sem diferenciar maiúsculas e
// descartando query string e fragmento: https://x/app.PHP?x=1 vira
// https://x/app.PHP.
func filterBySuffix(urls []string, suffix string) []string {
	var out []string
	for _, u := range urls {
		stripped := u
		if i := strings.IndexAny(stripped, "?#"); i >= 0 {
			stripped = stripped[:i]
		}
		if strings.HasSuffix(strings.ToLower(stripped), suffix) {
			out = append(out, stripped)
		}
	}
	return out
}

// scanJS invoca o mantra uma vez por URL de JS, com largura de fan-out fixa.
// Um único writer agrega a saída dos workers em mantra_results.txt, para as
// linhas não saírem intercaladas. Falha individual é engolida: só vira aviso.
func (s *ExtractStage) scanJS(ctx context.Context) error {
	jsURLs, err := s.store.Lines(ArtifactJSURLs)
	if err != nil {
		return err
	}

	spec, _ := s.tools.Lookup("mantra")
	rps := rate.Limit(s.rps)
	if rps <= 0 {
		rps = rate.Inf
	}
	limiter := rate.NewLimiter(rps, 1)
	bar := s.report.Progress(len(jsURLs), "Scanning JS files")

	jobs := make(chan string)
	outputs := make(chan []string)

	var workers sync.WaitGroup
	width := s.threads
	if width < 1 {
		width = 1
	}
	for i := 0; i < width; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for u := range jobs {
				if werr := limiter.Wait(ctx); werr != nil {
					return
				}
				out, exit, rerr := s.env.Run(ctx, tools.Command{Bin: spec.Bin, Args: []string{u}})
				bar.Add(1)
				if rerr != nil || exit != 0 {
					s.report.Warnf("mantra failed for %s", u)
					continue
				}
				if lines := artifacts.SplitOutput(out); len(lines) > 0 {
					outputs <- lines
				}
			}
		}()
	}

	done := make(chan error, 1)
	go func() {
		var werr error
		for lines := range outputs {
			if werr != nil {
				continue
			}
			werr = s.store.AppendLines(ArtifactScanResults, lines)
		}
		done <- werr
	}()

	for _, u := range jsURLs {
		select {
		case jobs <- u:
		case <-ctx.Done():
			close(jobs)
			workers.Wait()
			close(outputs)
			if werr := <-done; werr != nil {
				s.report.Warnf("writing scan results: %v", werr)
			}
			return ctx.Err()
		}
	}
	close(jobs)
	workers.Wait()
	close(outputs)
	return <-done
}
