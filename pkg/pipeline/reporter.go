package pipeline

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

// Reporter imprime o progresso das etapas com cores. Em modo quiet (testes,
// saída não interativa) não escreve nada nem anima o spinner.
type Reporter struct {
	quiet bool
	spin  *spinner.Spinner
}

// NewReporter cria o reporter. quiet desliga toda a saída.
func NewReporter(quiet bool) *Reporter {
	return &Reporter{quiet: quiet}
}

// StageStart anuncia a etapa e liga o spinner enquanto ela roda.
func (r *Reporter) StageStart(name string) {
	if r.quiet {
		return
	}
	fmt.Printf("\n%s Running %s...\n", cyan("[*]"), name)
	r.spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	r.spin.Suffix = fmt.Sprintf(" %s", name)
	r.spin.Start()
}

// StageDone para o spinner e imprime o desfecho da etapa.
func (r *Reporter) StageDone(res StageResult) {
	if r.spin != nil {
		r.spin.Stop()
		r.spin = nil
	}
	if r.quiet {
		return
	}
	label := "[" + strings.ToUpper(res.Stage) + "]"
	switch res.Outcome {
	case Completed:
		fmt.Printf("%s Results: %d (artifacts: %s)\n", green(label), res.Count, strings.Join(res.Artifacts, ", "))
	case Failed:
		fmt.Printf("%s %s\n", red(label), res.Outcome)
	default:
		fmt.Printf("%s %s\n", yellow(label), res.Outcome)
	}
	if res.Err != nil {
		fmt.Printf("%s %v\n", red(label), res.Err)
	}
}

// Warnf imprime um aviso não fatal.
func (r *Reporter) Warnf(format string, args ...any) {
	if r.quiet {
		return
	}
	fmt.Printf("%s %s\n", yellow("[!]"), fmt.Sprintf(format, args...))
}

// Infof imprime uma linha informativa.
func (r *Reporter) Infof(format string, args ...any) {
	if r.quiet {
		return
	}
	fmt.Printf("%s %s\n", cyan("[*]"), fmt.Sprintf(format, args...))
}

// Progress cria a barra de progresso do fan-out do scanner.
func (r *Reporter) Progress(total int, description string) *progressbar.ProgressBar {
	w := io.Writer(os.Stderr)
	if r.quiet {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
}

// Summary imprime o resumo final da execução.
func (r *Reporter) Summary(results []StageResult, outputDir string) {
	if r.quiet {
		return
	}
	fmt.Printf("\n%s\n", cyan("Pipeline summary:"))
	for _, res := range results {
		icon := green("✓")
		switch res.Outcome {
		case Completed:
		case Failed:
			icon = red("✗")
		default:
			icon = yellow("-")
		}
		fmt.Printf("  %s %-20s %s\n", icon, res.Stage, res.Outcome)
	}
	fmt.Printf("\n%s Results saved to: %s\n", green("[+]"), outputDir)
}
