// Package config monta a configuração imutável de uma execução do pipeline.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StageToggles liga e desliga cada etapa individualmente.
type StageToggles struct {
	Subdomains bool
	Probe      bool
	URLs       bool
	Extract    bool
}

// Config é construída uma vez pelo front-end e passada imutável ao orquestrador.
type Config struct {
	Target    string
	OutputDir string
	Stages    StageToggles
	Threads   int
	RateLimit float64
	Timeout   time.Duration
	Quiet     bool
}

// Default devolve a configuração padrão para um domínio: todas as etapas
// ligadas, fan-out de 4 workers no scanner de JS.
func Default(domain string) *Config {
	return &Config{
		Target:    domain,
		OutputDir: DefaultOutputDir(domain, time.Now()),
		Stages:    StageToggles{Subdomains: true, Probe: true, URLs: true, Extract: true},
		Threads:   4,
		RateLimit: 4,
		Timeout:   10 * time.Minute,
	}
}

// DefaultOutputDir gera o nome recon_<dominio>_<timestamp>.
func DefaultOutputDir(domain string, now time.Time) string {
	return fmt.Sprintf("recon_%s_%s", domain, now.Format("20060102_150405"))
}

var domainRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?)+$`)

// ValidateDomain rejeita domínio vazio ou com caracteres fora do padrão,
// antes que a string chegue a qualquer invocação externa.
func ValidateDomain(domain string) (string, error) {
	domain = strings.TrimSpace(strings.ToLower(domain))
	if domain == "" {
		return "", fmt.Errorf("domain is required")
	}
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimSuffix(domain, "/")
	if !domainRe.MatchString(domain) {
		return "", fmt.Errorf("invalid domain %q", domain)
	}
	return domain, nil
}

// ToolOverride redefine o binário de uma ferramenta via arquivo de configuração.
type ToolOverride struct {
	Name    string `yaml:"name"`
	Bin     string `yaml:"bin"`
	Install string `yaml:"install"`
}

// FileConfig é o formato YAML opcional aceito pela flag --config.
type FileConfig struct {
	General struct {
		Threads   int     `yaml:"threads"`
		RateLimit float64 `yaml:"rate_limit"`
		Timeout   int     `yaml:"timeout"`
	} `yaml:"general"`
	Tools []ToolOverride `yaml:"tools"`
}

// LoadFile lê e valida o arquivo YAML de configuração.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &fc, nil
}

// Apply sobrepõe os valores do arquivo na configuração da execução.
func (fc *FileConfig) Apply(cfg *Config) {
	if fc == nil {
		return
	}
	if fc.General.Threads > 0 {
		cfg.Threads = fc.General.Threads
	}
	if fc.General.RateLimit > 0 {
		cfg.RateLimit = fc.General.RateLimit
	}
	if fc.General.Timeout > 0 {
		cfg.Timeout = time.Duration(fc.General.Timeout) * time.Second
	}
}
