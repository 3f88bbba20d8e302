// Package pipeline sequencia as quatro etapas de recon contra um alvo.
package pipeline

import "context"

// Nomes dos artefatos produzidos por uma execução.
const (
	ArtifactAllSubs     = "allsubs.txt"
	ArtifactLiveHosts   = "httpx_live.txt"
	ArtifactCrawlRaw    = "gospider.txt"
	ArtifactAllURLs     = "allurls.txt"
	ArtifactJSURLs      = "js.txt"
	ArtifactPHPURLs     = "php.txt"
	ArtifactScanResults = "mantra_results.txt"

	// Subdiretório onde o crawler grava seus arquivos brutos.
	crawlRawDir = "gospider_raw"
)

// Outcome é o desfecho de uma etapa.
type Outcome int

const (
	Completed Outcome = iota
	SkippedDisabled
	SkippedMissingTool
	SkippedNoInput
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case SkippedDisabled:
		return "skipped (disabled)"
	case SkippedMissingTool:
		return "skipped (missing tool)"
	case SkippedNoInput:
		return "skipped (no input)"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// StageResult registra o que a etapa produziu (ou por que não rodou).
type StageResult struct {
	Stage     string
	Outcome   Outcome
	Artifacts []string
	Count     int
	Err       error
}

// Stage é uma unidade do pipeline: checa pré-condições, invoca ferramentas
// externas e pós-processa a saída. Toda etapa termina, mesmo sem ferramenta
// ou sem entrada: faltar binário e faltar input nunca derrubam a execução.
type Stage interface {
	Name() string
	Run(ctx context.Context) StageResult
}

func completed(name string, count int, artifacts ...string) StageResult {
	return StageResult{Stage: name, Outcome: Completed, Count: count, Artifacts: artifacts}
}

func skipped(name string, outcome Outcome) StageResult {
	return StageResult{Stage: name, Outcome: outcome}
}

// failed marca a etapa cuja ferramenta existia mas nem chegou a rodar.
// Continua não fatal: o orquestrador segue para a próxima etapa.
func failed(name string, err error) StageResult {
	return StageResult{Stage: name, Outcome: Failed, Err: err}
}
