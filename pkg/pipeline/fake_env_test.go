package pipeline

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/gilsgil/reconpipe/pkg/artifacts"
	"github.com/gilsgil/reconpipe/pkg/tools"
)

// recordedCall guarda uma invocação para inspeção nos testes.
type recordedCall struct {
	Bin   string
	Args  []string
	Stdin string
}

// fakeEnv simula as ferramentas externas: um binário está "instalado" se tem
// saída enfileirada em stdout (ou um runFn próprio).
type fakeEnv struct {
	mu      sync.Mutex
	stdout  map[string]string
	exits   map[string]int
	runErrs map[string]error
	runFn   func(c tools.Command) (string, int)
	onRun   func(c tools.Command)
	calls   []recordedCall
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{stdout: map[string]string{}, exits: map[string]int{}, runErrs: map[string]error{}}
}

func (f *fakeEnv) LookPath(bin string) (string, error) {
	if _, ok := f.stdout[bin]; ok {
		return "/usr/local/bin/" + bin, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

func (f *fakeEnv) Run(ctx context.Context, c tools.Command) ([]byte, int, error) {
	stdin := ""
	if c.Stdin != nil {
		data, _ := io.ReadAll(c.Stdin)
		stdin = string(data)
	}
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{Bin: c.Bin, Args: c.Args, Stdin: stdin})
	f.mu.Unlock()

	if err := f.runErrs[c.Bin]; err != nil {
		return nil, -1, err
	}
	if f.onRun != nil {
		f.onRun(c)
	}
	if f.runFn != nil {
		out, exit := f.runFn(c)
		return []byte(out), exit, nil
	}
	return []byte(f.stdout[c.Bin]), f.exits[c.Bin], nil
}

// callsFor filtra as invocações registradas de um binário.
func (f *fakeEnv) callsFor(bin string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedCall
	for _, c := range f.calls {
		if c.Bin == bin {
			out = append(out, c)
		}
	}
	return out
}

func newTestDeps(t *testing.T, target string, env *fakeEnv) deps {
	t.Helper()
	store, err := artifacts.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return deps{
		target: target,
		store:  store,
		tools:  tools.NewRegistry(env),
		env:    env,
		report: NewReporter(true),
	}
}

func hasArgs(call recordedCall, want ...string) bool {
	for i := 0; i+len(want) <= len(call.Args); i++ {
		match := true
		for j, w := range want {
			if call.Args[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
