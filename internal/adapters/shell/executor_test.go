package shell_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"runtime"
	"strings"
	"testing"

	"go.trai.ch/zerr"

	"go.trai.ch/skip/internal/adapters/logger"
	"go.trai.ch/skip/internal/adapters/shell"
)

func newExecutor() *shell.Executor {
	return shell.NewExecutor(logger.NewWithWriter(io.Discard))
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test relies on a POSIX shell")
	}
}

func TestExecute_StreamsOutput(t *testing.T) {
	skipOnWindows(t)

	var out bytes.Buffer
	err := newExecutor().Execute(context.Background(), []string{"sh", "-c", "echo hello"}, &out)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.Contains(out.String(), "hello") {
		t.Errorf("expected output to contain 'hello', got %q", out.String())
	}
}

func TestExecute_EmptyCommandIsNoOp(t *testing.T) {
	var out bytes.Buffer
	if err := newExecutor().Execute(context.Background(), nil, &out); err != nil {
		t.Fatalf("empty command must succeed, got %v", err)
	}
}

func TestExecute_NonZeroExitCarriesCode(t *testing.T) {
	skipOnWindows(t)

	err := newExecutor().Execute(context.Background(), []string{"sh", "-c", "exit 3"}, io.Discard)
	if err == nil {
		t.Fatal("expected an error")
	}

	var zErr *zerr.Error
	if !errors.As(err, &zErr) {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	if zErr.Metadata()["exit_code"] != 3 {
		t.Errorf("expected exit_code 3, got %v", zErr.Metadata()["exit_code"])
	}
}

func TestExecute_CancelledContextStopsCommand(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newExecutor().Execute(ctx, []string{"sh", "-c", "sleep 10"}, io.Discard)
	if err == nil {
		t.Fatal("expected an error from the cancelled command")
	}
}
