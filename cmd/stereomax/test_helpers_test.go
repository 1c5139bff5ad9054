package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stereomax/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	binDir     string
	configPath string
	tempDir    string
	historyDB  string
	callsLog   string
}

const ffprobeStub = `#!/bin/sh
echo "ffprobe $*" >> "$(dirname "$0")/calls.log"
printf '%b' "${STEREOMAX_STUB_LAYOUTS-5.1(side),eng\n7.1,fre\n}"
`

const ffmpegStub = `#!/bin/sh
echo "ffmpeg $*" >> "$(dirname "$0")/calls.log"
for last; do :; done
printf 'stereo' > "$last"
`

const mkvmergeStub = `#!/bin/sh
echo "mkvmerge $*" >> "$(dirname "$0")/calls.log"
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; fi
  shift
done
printf 'merged' > "$out"
`

// setupCLITestEnv writes a config pointing at temp directories and shell
// stubs standing in for the media tools.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("STEREOMAX_FFPROBE", "")
	t.Setenv("STEREOMAX_FFMPEG", "")
	t.Setenv("STEREOMAX_MKVMERGE", "")

	env := &cliTestEnv{
		baseDir:    base,
		binDir:     filepath.Join(base, "bin"),
		configPath: filepath.Join(base, "stereomax.toml"),
		tempDir:    filepath.Join(base, "tmp"),
		historyDB:  filepath.Join(base, "state", "history.db"),
	}
	env.callsLog = filepath.Join(env.binDir, "calls.log")
	if err := os.MkdirAll(env.binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	for name, body := range map[string]string{
		"ffprobe":  ffprobeStub,
		"ffmpeg":   ffmpegStub,
		"mkvmerge": mkvmergeStub,
	} {
		if err := os.WriteFile(filepath.Join(env.binDir, name), []byte(body), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}

	content := fmt.Sprintf(`[paths]
temp_dir = %q
log_dir = %q
history_db = %q

[tools]
ffprobe = %q
ffmpeg = %q
mkvmerge = %q

[normalize]
verify_output = false

[logging]
format = "json"
`,
		env.tempDir,
		filepath.Join(base, "logs"),
		env.historyDB,
		filepath.Join(env.binDir, "ffprobe"),
		filepath.Join(env.binDir, "ffmpeg"),
		filepath.Join(env.binDir, "mkvmerge"),
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliTestEnv) writeInput(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(e.baseDir, name)
	testsupport.WriteFile(t, path, 4096)
	return path
}

func (e *cliTestEnv) calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(e.callsLog)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read calls log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
