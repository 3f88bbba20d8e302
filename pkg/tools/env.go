// Package tools resolve e executa os binários externos de recon.
package tools

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"time"
)

// Command descreve uma invocação estruturada (argv), sem passar pelo shell.
// Evita reinterpretação do domínio pelo bash, que era o risco dos scripts antigos.
type Command struct {
	Bin   string
	Args  []string
	Stdin io.Reader
	Dir   string
}

// ExecutionEnvironment abstrai a busca no PATH e a execução de processos.
// A implementação real usa os/exec; os testes injetam um ambiente falso.
type ExecutionEnvironment interface {
	LookPath(bin string) (string, error)
	Run(ctx context.Context, cmd Command) (stdout []byte, exitCode int, err error)
}

// ExecEnv é o ambiente real, com timeout por chamada externa.
type ExecEnv struct {
	Timeout time.Duration
}

// NewExecEnv cria o ambiente real. timeout <= 0 usa o padrão de 10 minutos.
func NewExecEnv(timeout time.Duration) *ExecEnv {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &ExecEnv{Timeout: timeout}
}

// LookPath procura o binário no PATH da sessão.
func (e *ExecEnv) LookPath(bin string) (string, error) {
	return exec.LookPath(bin)
}

// Run executa o comando e captura o stdout. Um exit code diferente de zero
// não é erro: a saída parcial é devolvida junto com o código, e quem chama
// decide o que fazer. Erro só quando o processo nem chegou a rodar.
func (e *ExecEnv) Run(ctx context.Context, c Command) ([]byte, int, error) {
	runCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.Bin, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), exitErr.ExitCode(), nil
	}
	return stdout.Bytes(), -1, err
}
