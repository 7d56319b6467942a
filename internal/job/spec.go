package job

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults for the metadata-generation job. The generator command and the
// data paths mirror the layout of the coach-ml repository this tool drives.
const (
	DefaultName      = "metadata_generation"
	DefaultGenerator = "python3 scripts/generate_metadata_openai.py"
	DefaultInput     = "data/filtered/filtered_data.json"
	DefaultOutput    = "data/enhanced/enhanced_data.json"
	DefaultLogDir    = "logs"
	LastPIDFileName  = "last_pid.txt"
)

// Spec describes a single metadata-generation run.
type Spec struct {
	Name      string   `json:"name" mapstructure:"name"`
	Generator string   `json:"generator" mapstructure:"generator"` // command that runs the generator
	Input     string   `json:"input" mapstructure:"input"`
	Output    string   `json:"output" mapstructure:"output"`
	Limit     int      `json:"limit" mapstructure:"limit"` // 0 means process all items
	WorkDir   string   `json:"work_dir" mapstructure:"work_dir"`
	Env       []string `json:"env" mapstructure:"env"`
	LogDir    string   `json:"log_dir" mapstructure:"log_dir"`
	PIDFile   string   `json:"pid_file" mapstructure:"pid_file"`
}

// ApplyDefaults fills zero-valued fields with the documented defaults.
func (s *Spec) ApplyDefaults() {
	if s.Name == "" {
		s.Name = DefaultName
	}
	if s.Generator == "" {
		s.Generator = DefaultGenerator
	}
	if s.Input == "" {
		s.Input = DefaultInput
	}
	if s.Output == "" {
		s.Output = DefaultOutput
	}
	if s.LogDir == "" {
		s.LogDir = DefaultLogDir
	}
	if s.PIDFile == "" {
		s.PIDFile = filepath.Join(s.LogDir, LastPIDFileName)
	}
}

// Validate enforces spec invariants after defaults are applied.
func (s *Spec) Validate() error {
	if strings.TrimSpace(s.Generator) == "" {
		return fmt.Errorf("job %q requires generator command", s.Name)
	}
	if strings.TrimSpace(s.Input) == "" {
		return fmt.Errorf("job %q requires input path", s.Name)
	}
	if strings.TrimSpace(s.Output) == "" {
		return fmt.Errorf("job %q requires output path", s.Name)
	}
	if s.Limit < 0 {
		return fmt.Errorf("job %q: limit cannot be negative", s.Name)
	}
	return nil
}

// Args returns the generator arguments. The limit flag is forwarded only
// when a limit was supplied.
func (s *Spec) Args() []string {
	args := []string{"--input", s.Input, "--output", s.Output}
	if s.Limit > 0 {
		args = append(args, "--limit", strconv.Itoa(s.Limit))
	}
	return args
}

// LogPath derives the timestamped log file path for a run started at t.
func (s *Spec) LogPath(t time.Time) string {
	return filepath.Join(s.LogDir, fmt.Sprintf("%s_%s.log", s.Name, t.Format("20060102_150405")))
}

// BuildCommand constructs an *exec.Cmd for the generator invocation.
// It avoids invoking a shell when not necessary, and it also respects an
// explicit shell invocation already present in the generator command
// (e.g., "sh -c 'python gen.py'"), avoiding double-wrapping with another shell.
func (s *Spec) BuildCommand() *exec.Cmd {
	gen := strings.TrimSpace(s.Generator)
	args := s.Args()
	// If the generator already explicitly uses a shell, honor it without
	// adding another layer; the arguments join the script string.
	if _, afterC, ok := parseExplicitShell(gen); ok {
		// #nosec G204
		return exec.Command("/bin/sh", "-c", afterC+" "+strings.Join(args, " "))
	}
	// When metacharacters are present, fall back to /bin/sh -c.
	if strings.ContainsAny(gen, "|&;<>*?`$\"'(){}[]~") {
		// #nosec G204
		return exec.Command("/bin/sh", "-c", gen+" "+strings.Join(args, " "))
	}
	parts := strings.Fields(gen)
	// ok: intentional execution of the configured generator
	// #nosec G204
	return exec.Command(parts[0], append(parts[1:], args...)...)
}

// parseExplicitShell detects patterns like "sh -c <ARG>" or "/bin/sh -c <ARG>"
// at the beginning of cmdStr. It returns (shellPath, afterCArg, true) when matched.
func parseExplicitShell(cmdStr string) (string, string, bool) {
	trim := strings.TrimLeft(cmdStr, " \t")
	candidates := []string{"sh -c ", "/bin/sh -c ", "/usr/bin/sh -c "}
	for _, p := range candidates {
		if strings.HasPrefix(trim, p) {
			after := trim[len(p):]
			if n := len(after); n >= 2 {
				if (after[0] == '\'' && after[n-1] == '\'') || (after[0] == '"' && after[n-1] == '"') {
					after = after[1 : n-1]
				}
			}
			return strings.Fields(p)[0], after, true
		}
	}
	return "", "", false
}
