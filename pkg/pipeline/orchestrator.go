package pipeline

import (
	"context"

	"github.com/gilsgil/reconpipe/pkg/artifacts"
	"github.com/gilsgil/reconpipe/pkg/config"
	"github.com/gilsgil/reconpipe/pkg/tools"
)

// deps são os colaboradores compartilhados por todas as etapas.
type deps struct {
	target string
	store  *artifacts.Store
	tools  *tools.Registry
	env    tools.ExecutionEnvironment
	report *Reporter
}

// Orchestrator roda as quatro etapas sempre na mesma ordem fixa. Etapa
// desligada não produz artefato; a lógica de fallback de entrada da etapa
// seguinte absorve o buraco. Nenhuma falha de etapa interrompe a execução.
type Orchestrator struct {
	stages  []Stage
	enabled []bool
	report  *Reporter
}

// NewOrchestrator monta o pipeline para uma configuração já validada.
func NewOrchestrator(cfg *config.Config, store *artifacts.Store, reg *tools.Registry, env tools.ExecutionEnvironment, report *Reporter) *Orchestrator {
	d := deps{target: cfg.Target, store: store, tools: reg, env: env, report: report}
	return &Orchestrator{
		stages: []Stage{
			&SubdomainStage{deps: d},
			&LivenessStage{deps: d},
			&URLStage{deps: d},
			&ExtractStage{deps: d, threads: cfg.Threads, rps: cfg.RateLimit},
		},
		enabled: []bool{
			cfg.Stages.Subdomains,
			cfg.Stages.Probe,
			cfg.Stages.URLs,
			cfg.Stages.Extract,
		},
		report: report,
	}
}

// Run executa o pipeline de ponta a ponta e devolve o desfecho de cada etapa.
func (o *Orchestrator) Run(ctx context.Context) []StageResult {
	results := make([]StageResult, 0, len(o.stages))
	for i, stage := range o.stages {
		if !o.enabled[i] {
			res := skipped(stage.Name(), SkippedDisabled)
			o.report.StageDone(res)
			results = append(results, res)
			continue
		}
		o.report.StageStart(stage.Name())
		res := stage.Run(ctx)
		o.report.StageDone(res)
		results = append(results, res)
	}
	return results
}
