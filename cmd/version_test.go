package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func setupVersionTest(t *testing.T) *testEnv {
	t.Helper()
	SetBuildInfo("abc1234", "2026-02-06T07:16:38Z")
	return setupCLI(t)
}

func TestVersionOutput_ContainsFields(t *testing.T) {
	env := setupVersionTest(t)

	res := env.run(t, "", "version")
	if res.err != nil {
		t.Fatalf("version command failed: %v", res.err)
	}

	for _, field := range []string{"commit:", "built:", "go version:", "platform:", "api:"} {
		if !strings.Contains(res.stdout, field) {
			t.Errorf("version output missing %q field. Got:\n%s", field, res.stdout)
		}
	}
}

func TestVersionShort(t *testing.T) {
	env := setupVersionTest(t)

	res := env.run(t, "", "version", "--short")
	if res.err != nil {
		t.Fatalf("version --short failed: %v", res.err)
	}

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	if len(lines) != 1 {
		t.Errorf("expected 1 line, got %d: %q", len(lines), res.stdout)
	}
}

func TestVersionJSON(t *testing.T) {
	env := setupVersionTest(t)

	res := env.run(t, "", "version", "--json")
	if res.err != nil {
		t.Fatalf("version --json failed: %v", res.err)
	}

	var result map[string]string
	if err := json.Unmarshal([]byte(res.stdout), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\nGot: %s", err, res.stdout)
	}

	for _, key := range []string{"version", "commit", "built", "goVersion", "platform", "api"} {
		if _, ok := result[key]; !ok {
			t.Errorf("JSON output missing key %q. Got: %v", key, result)
		}
	}
}

func TestCompletion(t *testing.T) {
	env := setupCLI(t)

	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		res := env.run(t, "", "completion", shell)
		if res.err != nil {
			t.Fatalf("completion %s failed: %v", shell, res.err)
		}
		if !strings.Contains(res.stdout, "fleetctl") {
			t.Errorf("completion %s does not mention fleetctl", shell)
		}
	}
}

func TestCompletion_NoDescriptions(t *testing.T) {
	env := setupCLI(t)

	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		res := env.run(t, "", "completion", shell, "--no-descriptions")
		if res.err != nil {
			t.Fatalf("completion %s --no-descriptions failed: %v", shell, res.err)
		}
		if res.stdout == "" {
			t.Errorf("completion %s --no-descriptions produced no script", shell)
		}
	}
}

func TestCompletion_EnumFlagValues(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"vehicles", "list", "--status", ""}, []string{"available", "rented", "maintenance", "inactive"}},
		{[]string{"vehicles", "create", "--condition", ""}, []string{"new", "used", "certified_pre_owned"}},
		{[]string{"vehicles", "update", "--status", ""}, []string{"available", "inactive"}},
		{[]string{"config", "--color", ""}, []string{"auto", "always", "never"}},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			env := setupCLI(t)

			res := env.run(t, "", append([]string{cobra.ShellCompRequestCmd}, tt.args...)...)
			if res.err != nil {
				t.Fatalf("completion request failed: %v", res.err)
			}
			for _, v := range tt.want {
				if !strings.Contains(res.stdout, v+"\n") {
					t.Errorf("completions missing %q, got: %q", v, res.stdout)
				}
			}
		})
	}
}
