package job

import (
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	var s Spec
	s.ApplyDefaults()
	if s.Name != DefaultName {
		t.Fatalf("name: got %q want %q", s.Name, DefaultName)
	}
	if s.Generator != DefaultGenerator {
		t.Fatalf("generator: got %q want %q", s.Generator, DefaultGenerator)
	}
	if s.Input != DefaultInput || s.Output != DefaultOutput {
		t.Fatalf("paths: got %q/%q", s.Input, s.Output)
	}
	if s.LogDir != DefaultLogDir {
		t.Fatalf("log dir: got %q", s.LogDir)
	}
	if s.PIDFile != filepath.Join(DefaultLogDir, LastPIDFileName) {
		t.Fatalf("pid file: got %q", s.PIDFile)
	}
}

func TestApplyDefaultsKeepsProvidedValues(t *testing.T) {
	s := Spec{Input: "in.json", Output: "out/enhanced.json", Limit: 10}
	s.ApplyDefaults()
	if s.Input != "in.json" || s.Output != "out/enhanced.json" || s.Limit != 10 {
		t.Fatalf("provided values overwritten: %+v", s)
	}
}

func TestArgsOmitsLimitWhenUnset(t *testing.T) {
	s := Spec{Input: "a", Output: "b"}
	args := s.Args()
	joined := strings.Join(args, " ")
	if strings.Contains(joined, "--limit") {
		t.Fatalf("limit flag forwarded without a limit: %v", args)
	}
	if joined != "--input a --output b" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestArgsForwardsLimitExactlyOnce(t *testing.T) {
	s := Spec{Input: "a", Output: "b", Limit: 10}
	joined := strings.Join(s.Args(), " ")
	if strings.Count(joined, "--limit") != 1 {
		t.Fatalf("expected exactly one limit flag: %q", joined)
	}
	if !strings.HasSuffix(joined, "--limit 10") {
		t.Fatalf("limit value not forwarded verbatim: %q", joined)
	}
}

func TestValidate(t *testing.T) {
	s := Spec{}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	s.Limit = -1
	if err := s.Validate(); err == nil {
		t.Fatalf("negative limit accepted")
	}
	s = Spec{Generator: " "}
	s.Input, s.Output = "a", "b"
	if err := s.Validate(); err == nil {
		t.Fatalf("blank generator accepted")
	}
}

func TestLogPathPattern(t *testing.T) {
	s := Spec{}
	s.ApplyDefaults()
	ts := time.Date(2025, 2, 25, 10, 44, 13, 0, time.Local)
	got := s.LogPath(ts)
	want := filepath.Join("logs", "metadata_generation_20250225_104413.log")
	if got != want {
		t.Fatalf("log path: got %q want %q", got, want)
	}
	re := regexp.MustCompile(`metadata_generation_\d{8}_\d{6}\.log$`)
	if !re.MatchString(got) {
		t.Fatalf("log path does not match naming template: %q", got)
	}
}

func TestBuildCommandDirectExec(t *testing.T) {
	s := Spec{Generator: "python3 scripts/generate_metadata_openai.py", Input: "a", Output: "b", Limit: 5}
	cmd := s.BuildCommand()
	if filepath.Base(cmd.Path) != "python3" && cmd.Args[0] != "python3" {
		t.Fatalf("unexpected argv0: %q (%v)", cmd.Path, cmd.Args)
	}
	joined := strings.Join(cmd.Args, " ")
	for _, want := range []string{"scripts/generate_metadata_openai.py", "--input a", "--output b", "--limit 5"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in argv: %q", want, joined)
		}
	}
}

func TestBuildCommandShellFallback(t *testing.T) {
	s := Spec{Generator: "python3 gen.py 2>/dev/null", Input: "a", Output: "b"}
	cmd := s.BuildCommand()
	if cmd.Args[0] != "/bin/sh" || cmd.Args[1] != "-c" {
		t.Fatalf("metacharacters should trigger shell: %v", cmd.Args)
	}
}

func TestBuildCommandExplicitShellNotDoubleWrapped(t *testing.T) {
	s := Spec{Generator: "sh -c 'python3 gen.py'", Input: "a", Output: "b"}
	cmd := s.BuildCommand()
	if cmd.Args[0] != "/bin/sh" || cmd.Args[1] != "-c" {
		t.Fatalf("explicit shell not honored: %v", cmd.Args)
	}
	if strings.Count(strings.Join(cmd.Args, " "), "-c") != 1 {
		t.Fatalf("shell double-wrapped: %v", cmd.Args)
	}
	if !strings.Contains(cmd.Args[2], "--input a") {
		t.Fatalf("args not appended to shell script: %v", cmd.Args)
	}
}
