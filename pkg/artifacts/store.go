// Package artifacts gerencia os arquivos de resultado de cada etapa do pipeline.
package artifacts

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store mapeia nomes de artefatos para arquivos dentro do diretório da execução.
type Store struct {
	dir string
}

// NewStore cria o diretório de saída (se necessário) e retorna o store.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir retorna o diretório raiz da execução.
func (s *Store) Dir() string {
	return s.dir
}

// Path retorna o caminho completo do artefato.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists verifica se o arquivo do artefato existe.
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && !info.IsDir()
}

// NonEmpty verifica se o artefato existe e tem conteúdo.
// Equivale aos guards [ -f ... ] && [ -s ... ] dos scripts de recon.
func (s *Store) NonEmpty(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && !info.IsDir() && info.Size() > 0
}

// Lines lê as linhas do artefato, já limpas de CR e linhas vazias.
func (s *Store) Lines(name string) ([]string, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := cleanLine(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// WriteLines grava as linhas no artefato, substituindo o conteúdo anterior.
func (s *Store) WriteLines(name string, lines []string) error {
	return s.writeFile(name, CleanLines(lines), os.O_CREATE|os.O_TRUNC|os.O_WRONLY)
}

// AppendLines adiciona linhas ao final do artefato, criando-o se necessário.
func (s *Store) AppendLines(name string, lines []string) error {
	return s.writeFile(name, CleanLines(lines), os.O_CREATE|os.O_APPEND|os.O_WRONLY)
}

func (s *Store) writeFile(name string, lines []string, flags int) error {
	f, err := os.OpenFile(s.Path(name), flags, 0o644)
	if err != nil {
		return fmt.Errorf("opening artifact %s: %w", name, err)
	}
	w := bufio.NewWriter(f)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing artifact %s: %w", name, err)
	}
	return f.Close()
}

// DedupeMerge concatena os artefatos de origem no destino removendo duplicatas.
// A ordem de primeira ocorrência é preservada (semântica do anew, não do sort -u).
// Retorna o total de linhas únicas gravadas. Origens inexistentes são ignoradas.
func (s *Store) DedupeMerge(dest string, sources ...string) (int, error) {
	seen := make(map[string]struct{})
	var merged []string
	for _, src := range sources {
		if !s.Exists(src) {
			continue
		}
		lines, err := s.Lines(src)
		if err != nil {
			return 0, fmt.Errorf("reading artifact %s: %w", src, err)
		}
		for _, line := range lines {
			if _, ok := seen[line]; ok {
				continue
			}
			seen[line] = struct{}{}
			merged = append(merged, line)
		}
	}
	if err := s.WriteLines(dest, merged); err != nil {
		return 0, err
	}
	return len(merged), nil
}

// SortUnique reordena o artefato removendo duplicatas, como sort -u -o.
func (s *Store) SortUnique(name string) error {
	if !s.Exists(name) {
		return nil
	}
	lines, err := s.Lines(name)
	if err != nil {
		return fmt.Errorf("reading artifact %s: %w", name, err)
	}
	unique := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		unique[line] = struct{}{}
	}
	sorted := make([]string, 0, len(unique))
	for line := range unique {
		sorted = append(sorted, line)
	}
	sort.Strings(sorted)
	return s.WriteLines(name, sorted)
}

// CleanLines remove CR, espaços nas bordas e linhas vazias.
func CleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if clean := cleanLine(line); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func cleanLine(line string) string {
	return strings.TrimSpace(strings.TrimSuffix(line, "\r"))
}

// SplitOutput converte a saída bruta de uma ferramenta em linhas limpas.
func SplitOutput(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	return CleanLines(strings.Split(string(raw), "\n"))
}
