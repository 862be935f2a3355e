package process

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"testing"
	"time"
)

// TestHelperProcess is not a real test; it is the child started by the tests below
func TestHelperProcess(t *testing.T) {
	if os.Getenv("TESTEXE_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("TESTEXE_HELPER_MODE") {
	case "echo":
		fmt.Println("to stdout")
		fmt.Fprintln(os.Stderr, "to stderr")
		os.Exit(3)
	case "wait":
		fmt.Println("#waiting")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		fmt.Printf("continued %q\n", line)
		os.Exit(0)
	case "hang":
		fmt.Println("hanging")
		time.Sleep(time.Minute)
	}
	os.Exit(0)
}

func startHelper(t *testing.T, mode string) *Process {
	t.Helper()
	t.Setenv("TESTEXE_HELPER_PROCESS", "1")
	t.Setenv("TESTEXE_HELPER_MODE", mode)
	p, err := Start(os.Args[0], "-test.run=^TestHelperProcess$")
	if err != nil {
		t.Fatalf("failed to start helper: %v", err)
	}
	return p
}

func readLines(t *testing.T, r io.Reader) []string {
	t.Helper()
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

func TestProcess_MergesOutput(t *testing.T) {
	p := startHelper(t, "echo")

	lines := readLines(t, p.Stdout())
	if err := p.Wait(); err == nil {
		t.Error("expected exit error for non-zero exit code")
	}
	if p.ExitCode() != 3 {
		t.Errorf("expected exit code 3, got %d", p.ExitCode())
	}

	found := map[string]bool{}
	for _, l := range lines {
		found[l] = true
	}
	if !found["to stdout"] || !found["to stderr"] {
		t.Errorf("expected both streams in output, got %v", lines)
	}
	if p.PID() <= 0 || p.Name() == "" {
		t.Errorf("unexpected pid %d or name %q", p.PID(), p.Name())
	}
}

func TestProcess_WriteStdin(t *testing.T) {
	p := startHelper(t, "wait")

	scanner := bufio.NewScanner(p.Stdout())
	if !scanner.Scan() || scanner.Text() != "#waiting" {
		t.Fatalf("expected #waiting prompt, got %q", scanner.Text())
	}
	if err := p.WriteStdin([]byte("\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !scanner.Scan() || scanner.Text() != `continued "\n"` {
		t.Errorf("unexpected output %q", scanner.Text())
	}
	if err := p.Wait(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestProcess_Kill(t *testing.T) {
	p := startHelper(t, "hang")

	scanner := bufio.NewScanner(p.Stdout())
	if !scanner.Scan() {
		t.Fatal("expected output before kill")
	}
	if err := p.Kill(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for scanner.Scan() {
	}
	p.Wait()
	if p.ExitCode() == 0 {
		t.Error("expected a killed process to report failure")
	}
	if err := p.Kill(); err != nil {
		t.Errorf("killing an exited process should not fail, got %v", err)
	}
}

func TestStart_MissingExecutable(t *testing.T) {
	if _, err := Start("/non/existent/unit_tests"); err == nil {
		t.Error("expected error for missing executable")
	}
}
