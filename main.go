package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gilsgil/reconpipe/pkg/artifacts"
	"github.com/gilsgil/reconpipe/pkg/config"
	"github.com/gilsgil/reconpipe/pkg/pipeline"
	"github.com/gilsgil/reconpipe/pkg/tools"
)

var (
	flagDomain         string
	flagOutput         string
	flagSubs           bool
	flagProbe          bool
	flagURLs           bool
	flagExtract        bool
	flagThreads        int
	flagRate           float64
	flagTimeout        int
	flagConfig         string
	flagInstallMissing bool
	flagYes            bool
	flagQuiet          bool
)

// printBanner exibe o banner ASCII no estilo slant.
func printBanner() {
	fig := figure.NewFigure("RECONPIPE", "slant", true)
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Println(cyan(fig.String()))
	fmt.Println(yellow("by Gilson Oliveira"))
}

var rootCmd = &cobra.Command{
	Use:           "reconpipe",
	Short:         "Staged recon pipeline over external enumeration tools",
	Long:          "reconpipe runs a fixed recon pipeline (subdomains, liveness, crawling, secret extraction) against one target domain, delegating each step to external tools.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagDomain, "domain", "d", "", "Target domain")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output folder (default recon_<domain>_<timestamp>)")
	rootCmd.Flags().BoolVar(&flagSubs, "subs", true, "Run subdomain discovery")
	rootCmd.Flags().BoolVar(&flagProbe, "probe", true, "Run HTTP liveness probe")
	rootCmd.Flags().BoolVar(&flagURLs, "urls", true, "Run URL crawling")
	rootCmd.Flags().BoolVar(&flagExtract, "extract", true, "Run JS/PHP extraction and secret scan")
	rootCmd.Flags().IntVarP(&flagThreads, "threads", "t", 4, "Fan-out width for the JS scanner")
	rootCmd.Flags().Float64Var(&flagRate, "rate", 4, "Max scanner invocations per second")
	rootCmd.Flags().IntVar(&flagTimeout, "timeout", 600, "Per-tool timeout in seconds")
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Optional YAML config file")
	rootCmd.Flags().BoolVar(&flagInstallMissing, "install-missing", false, "Offer to go install missing tools before running")
	rootCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Assume yes on every prompt (non-interactive)")
	rootCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress banner and progress output")
}

func run(cmd *cobra.Command, args []string) error {
	if !flagQuiet {
		printBanner()
	}

	stdin := bufio.NewReader(cmd.InOrStdin())
	interactive := !flagYes && flagDomain == ""

	domain := flagDomain
	if domain == "" {
		domain = promptString(stdin, "Domain", "")
	}
	domain, err := config.ValidateDomain(domain)
	if err != nil {
		return err
	}

	cfg := config.Default(domain)
	cfg.Quiet = flagQuiet
	if flagOutput != "" {
		cfg.OutputDir = flagOutput
	} else if interactive {
		cfg.OutputDir = promptString(stdin, "Output folder", cfg.OutputDir)
	}
	if interactive {
		cfg.Stages.Subdomains = promptYesNo(stdin, "Run subdomain discovery?", flagSubs)
		cfg.Stages.Probe = promptYesNo(stdin, "Run HTTP liveness probe?", flagProbe)
		cfg.Stages.URLs = promptYesNo(stdin, "Run URL crawling?", flagURLs)
		cfg.Stages.Extract = promptYesNo(stdin, "Run JS/PHP extraction?", flagExtract)
	} else {
		cfg.Stages = config.StageToggles{Subdomains: flagSubs, Probe: flagProbe, URLs: flagURLs, Extract: flagExtract}
	}

	var fc *config.FileConfig
	if flagConfig != "" {
		loaded, cerr := config.LoadFile(flagConfig)
		if cerr != nil {
			return cerr
		}
		fc = loaded
	}
	applyOverrides(cfg, fc, cmd.Flags())

	// O ambiente só é montado depois da configuração final, para o timeout
	// do arquivo valer nas chamadas externas.
	env := tools.NewExecEnv(cfg.Timeout)
	reg := tools.NewRegistry(env)
	if fc != nil {
		for _, t := range fc.Tools {
			reg.Override(tools.Spec{Name: t.Name, Bin: t.Bin, Install: t.Install})
		}
	}

	report := pipeline.NewReporter(cfg.Quiet)

	if missing := reg.Missing(); len(missing) > 0 {
		report.Warnf("missing tools: %s", strings.Join(missing, ", "))
		if flagInstallMissing {
			installMissing(cmd, stdin, reg, missing, report)
		}
	}

	store, err := artifacts.NewStore(cfg.OutputDir)
	if err != nil {
		return err
	}

	orch := pipeline.NewOrchestrator(cfg, store, reg, env, report)
	results := orch.Run(cmd.Context())
	report.Summary(results, cfg.OutputDir)
	return nil
}

// applyOverrides resolve a precedência dos ajustes gerais: o arquivo de
// configuração sobrepõe os padrões, mas flag passada explicitamente na linha
// de comando ganha do arquivo.
func applyOverrides(cfg *config.Config, fc *config.FileConfig, flags *pflag.FlagSet) {
	if fc != nil {
		fc.Apply(cfg)
	}
	if flags.Changed("threads") {
		if v, err := flags.GetInt("threads"); err == nil {
			cfg.Threads = v
		}
	}
	if flags.Changed("rate") {
		if v, err := flags.GetFloat64("rate"); err == nil {
			cfg.RateLimit = v
		}
	}
	if flags.Changed("timeout") {
		if v, err := flags.GetInt("timeout"); err == nil {
			cfg.Timeout = time.Duration(v) * time.Second
		}
	}
}

// installMissing oferece o go install de cada ferramenta ausente.
func installMissing(cmd *cobra.Command, stdin *bufio.Reader, reg *tools.Registry, missing []string, report *pipeline.Reporter) {
	for _, name := range missing {
		if !flagYes && !promptYesNo(stdin, fmt.Sprintf("Install %s?", name), false) {
			continue
		}
		report.Infof("Installing %s...", name)
		if err := reg.Install(cmd.Context(), name); err != nil {
			report.Warnf("%v", err)
		}
	}
}

func promptString(r *bufio.Reader, label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, _ := r.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func promptYesNo(r *bufio.Reader, label string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Printf("%s [%s]: ", label, hint)
	line, _ := r.ReadString('\n')
	return parseYesNo(line, def)
}

// parseYesNo interpreta a resposta y/N; entrada vazia usa o padrão.
func parseYesNo(line string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintln(os.Stderr, red("Error: "+err.Error()))
		os.Exit(1)
	}
}
