package shellexec

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
)

func TestRunCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell test")
	}
	res := Run(context.Background(), Spec{Argv: []string{"echo", "hello"}, Capture: true})
	if res.Err != nil || res.ExitCode != 0 {
		t.Fatalf("Run = exit %d, err %v", res.ExitCode, res.Err)
	}
	if strings.TrimSpace(res.Stdout) != "hello" {
		t.Fatalf("stdout = %q", res.Stdout)
	}
}

func TestRunShellLine(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell test")
	}
	res := Run(context.Background(), Spec{Line: "echo a && echo b", Capture: true})
	if res.ExitCode != 0 {
		t.Fatalf("exit = %d, err %v", res.ExitCode, res.Err)
	}
	if !strings.Contains(res.Stdout, "a") || !strings.Contains(res.Stdout, "b") {
		t.Fatalf("stdout = %q", res.Stdout)
	}
}

func TestRunReportsExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell test")
	}
	res := Run(context.Background(), Spec{Line: "exit 3", Capture: true})
	if res.ExitCode != 3 {
		t.Fatalf("exit = %d, want 3", res.ExitCode)
	}
	if res.Err != nil {
		t.Fatalf("nonzero exit reported as error: %v", res.Err)
	}
}

func TestRunEmptySpec(t *testing.T) {
	res := Run(context.Background(), Spec{})
	if !errors.Is(res.Err, ErrEmptyCommand) {
		t.Fatalf("err = %v, want ErrEmptyCommand", res.Err)
	}
}

func TestRunAllKeepsOrder(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell test")
	}
	specs := []Spec{
		{Line: "echo one", Capture: true},
		{Line: "echo two", Capture: true},
		{Line: "echo three", Capture: true},
	}
	results := RunAll(context.Background(), specs, 2)
	want := []string{"one", "two", "three"}
	for i, res := range results {
		if strings.TrimSpace(res.Stdout) != want[i] {
			t.Fatalf("result %d stdout = %q, want %q", i, res.Stdout, want[i])
		}
	}
}

func TestCloneSpecs(t *testing.T) {
	specs := CloneSpecs([]ClonePair{
		{URL: "https://example.com/a.git"},
		{URL: "https://example.com/b.git", Dest: "bdir"},
	}, "/work", true)
	if len(specs) != 2 {
		t.Fatalf("specs = %v", specs)
	}
	if strings.Join(specs[0].Argv, " ") != "git clone https://example.com/a.git" {
		t.Fatalf("argv[0] = %v", specs[0].Argv)
	}
	if strings.Join(specs[1].Argv, " ") != "git clone https://example.com/b.git bdir" {
		t.Fatalf("argv[1] = %v", specs[1].Argv)
	}
	if specs[0].Dir != "/work" {
		t.Fatalf("dir = %q", specs[0].Dir)
	}
}
