package tools

import (
	"context"
	"fmt"
	"sort"
)

// Spec descreve uma ferramenta externa registrada.
type Spec struct {
	Name    string `yaml:"name"`
	Bin     string `yaml:"bin"`
	Install string `yaml:"install"`
}

// Registry mapeia nomes lógicos para as ferramentas externas do pipeline.
// Somente leitura depois de montado; Override é para a fase de configuração.
type Registry struct {
	env   ExecutionEnvironment
	specs map[string]Spec
}

// Ferramentas padrão do pipeline. O campo Install segue o caminho go install
// de cada projeto, como nos scripts de setup.
var defaultSpecs = []Spec{
	{Name: "subfinder", Bin: "subfinder", Install: "github.com/projectdiscovery/subfinder/v2/cmd/subfinder"},
	{Name: "assetfinder", Bin: "assetfinder", Install: "github.com/tomnomnom/assetfinder"},
	{Name: "httpx", Bin: "httpx", Install: "github.com/projectdiscovery/httpx/cmd/httpx"},
	{Name: "gospider", Bin: "gospider", Install: "github.com/jaeles-project/gospider"},
	{Name: "mantra", Bin: "mantra", Install: "github.com/brosck/mantra"},
}

// NewRegistry monta o registry com as ferramentas padrão.
func NewRegistry(env ExecutionEnvironment) *Registry {
	r := &Registry{env: env, specs: make(map[string]Spec, len(defaultSpecs))}
	for _, spec := range defaultSpecs {
		r.specs[spec.Name] = spec
	}
	return r
}

// Override substitui (ou adiciona) a definição de uma ferramenta.
func (r *Registry) Override(spec Spec) {
	if spec.Name == "" {
		return
	}
	if spec.Bin == "" {
		spec.Bin = spec.Name
	}
	if existing, ok := r.specs[spec.Name]; ok && spec.Install == "" {
		spec.Install = existing.Install
	}
	r.specs[spec.Name] = spec
}

// Lookup devolve a definição da ferramenta.
func (r *Registry) Lookup(name string) (Spec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// Available verifica se o binário da ferramenta está no PATH.
func (r *Registry) Available(name string) bool {
	spec, ok := r.specs[name]
	if !ok {
		return false
	}
	_, err := r.env.LookPath(spec.Bin)
	return err == nil
}

// Missing lista, em ordem alfabética, as ferramentas registradas sem binário.
func (r *Registry) Missing() []string {
	var missing []string
	for name := range r.specs {
		if !r.Available(name) {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Install roda go install para a ferramenta. Falha de instalação não derruba
// o pipeline: a etapa correspondente apenas roda com menos cobertura.
func (r *Registry) Install(ctx context.Context, name string) error {
	spec, ok := r.specs[name]
	if !ok {
		return fmt.Errorf("unknown tool %q", name)
	}
	if spec.Install == "" {
		return fmt.Errorf("tool %q has no install path", name)
	}
	_, exit, err := r.env.Run(ctx, Command{
		Bin:  "go",
		Args: []string{"install", spec.Install + "@latest"},
	})
	if err != nil {
		return fmt.Errorf("installing %s: %w", name, err)
	}
	if exit != 0 {
		return fmt.Errorf("installing %s: go install exited with code %d", name, exit)
	}
	return nil
}
