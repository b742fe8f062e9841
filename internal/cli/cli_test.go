package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/ontoflow/pkg/errors"
	"github.com/matzehuels/ontoflow/pkg/layout"
	"github.com/matzehuels/ontoflow/pkg/render/flow"
	"github.com/matzehuels/ontoflow/pkg/topology"
)

// runCLI executes the root command with args against an isolated config
// and cache.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.Execute()
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"validate", "layout", "toggle", "render", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing %q command in %v", want, names)
		}
	}
	for _, flag := range []string{"config", "verbose", "otlp-endpoint"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing --%s flag", flag)
		}
	}
}

func TestParsePairs(t *testing.T) {
	got, err := parsePairs([]string{"discover:jtbd", " define : jtbd "})
	if err != nil {
		t.Fatal(err)
	}
	want := []topology.Pair{{Anchor: "discover", Dependent: "jtbd"}, {Anchor: "define", Dependent: "jtbd"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	for _, bad := range []string{"discover", ":jtbd", "discover:", ""} {
		t.Run(bad, func(t *testing.T) {
			if _, err := parsePairs([]string{bad}); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("parsePairs(%q) err = %v", bad, err)
			}
		})
	}
}

func TestParseParams(t *testing.T) {
	got, err := parseParams([]string{"iterations=50", "repulsion=-120.5", "enabled=true", "direction=LR", "empty="})
	if err != nil {
		t.Fatal(err)
	}
	want := layout.Params{
		"iterations": 50,
		"repulsion":  -120.5,
		"enabled":    true,
		"direction":  "LR",
		"empty":      "",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}

	if p, err := parseParams(nil); p != nil || err != nil {
		t.Errorf("parseParams(nil) = %v, %v", p, err)
	}
	if _, err := parseParams([]string{"=3"}); !errors.Is(err, errors.ErrCodeInvalidParams) {
		t.Errorf("empty key err = %v", err)
	}
	if _, err := parseParams([]string{"iterations"}); !errors.Is(err, errors.ErrCodeInvalidParams) {
		t.Errorf("missing value err = %v", err)
	}
}

func TestDerivePath(t *testing.T) {
	tests := []struct {
		input, ext, want string
	}{
		{"flow.yaml", "svg", "flow.svg"},
		{"dir/flow.yml", "layout.json", "dir/flow.layout.json"},
		{"flow", "dot", "flow.dot"},
	}
	for _, tt := range tests {
		if got := derivePath(tt.input, tt.ext); got != tt.want {
			t.Errorf("derivePath(%q, %q) = %q, want %q", tt.input, tt.ext, got, tt.want)
		}
	}
}

func TestLoadFlow(t *testing.T) {
	in, err := loadFlow("testdata/flow.yaml", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(in.Graph.Nodes) != 4 || in.Ontology == nil {
		t.Errorf("loaded %+v", in)
	}

	_, err = loadFlow("testdata/invalid.yaml", "")
	if !errors.Is(err, errors.ErrCodeSchemaViolation) {
		t.Fatalf("err = %v", err)
	}
	if n := len(errors.Violations(err)); n != 2 {
		t.Errorf("got %d violations, want 2: %v", n, errors.Violations(err))
	}
}

func TestValidateCommand(t *testing.T) {
	if err := runCLI(t, "validate", "testdata/flow.yaml"); err != nil {
		t.Errorf("valid flow: %v", err)
	}
	err := runCLI(t, "validate", "testdata/invalid.yaml")
	if !errors.Is(err, errors.ErrCodeSchemaViolation) {
		t.Errorf("invalid flow err = %v", err)
	}
}

func TestValidateCommandRejectsLayoutAlgorithm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.yaml")
	doc := `nodes:
  - {id: discover, type: phase, layout: {algorithm: spiral}}
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runCLI(t, "validate", path); !errors.Is(err, errors.ErrCodeSchemaViolation) {
		t.Errorf("err = %v, want SCHEMA_VIOLATION", err)
	}
	if err := runCLI(t, "layout", path, "-o", "-"); !errors.Is(err, errors.ErrCodeSchemaViolation) {
		t.Errorf("layout err = %v, want SCHEMA_VIOLATION", err)
	}
}

func TestLayoutCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.json")
	err := runCLI(t, "layout", "testdata/flow.yaml",
		"--toggle", "discover:jtbd",
		"-a", "hierarchical",
		"-p", "rankSeparation=90",
		"-o", out)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var g flow.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		t.Fatal(err)
	}
	if len(g.Nodes) != 4 {
		t.Errorf("got %d nodes, want all four visible", len(g.Nodes))
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown algorithm", []string{"-a", "spiral"}, errors.ErrCodeUnknownAlgorithm},
		{"bad param", []string{"-a", "force", "-p", "iterations=many"}, errors.ErrCodeInvalidParams},
		{"bad toggle", []string{"--toggle", "discover"}, errors.ErrCodeInvalidInput},
		{"illegal toggle", []string{"--toggle", "jtbd:job-map"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"layout", "testdata/flow.yaml", "--no-cache", "-o", filepath.Join(t.TempDir(), "out.json")}, tt.args...)
			if err := runCLI(t, args...); !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRenderCommandDOT(t *testing.T) {
	out := filepath.Join(t.TempDir(), "flow.dot")
	if err := runCLI(t, "render", "testdata/flow.yaml", "-f", "dot", "-o", out, "--no-cache"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph") {
		t.Errorf("unexpected output:\n%s", data)
	}

	if err := runCLI(t, "render", "testdata/flow.yaml", "-f", "gif"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad format err = %v", err)
	}
}

func TestToggleCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "final.json")
	err := runCLI(t, "toggle", "testdata/flow.yaml",
		"--toggle", "discover:jtbd",
		"--toggle", "define:jtbd",
		"--toggle", "discover:jtbd",
		"-o", out)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var g flow.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		t.Fatal(err)
	}
	// define still holds the mental model.
	if len(g.Nodes) != 4 {
		t.Errorf("got %d nodes, want 4", len(g.Nodes))
	}

	if err := runCLI(t, "toggle", "testdata/flow.yaml"); err == nil {
		t.Error("toggle without pairs should fail")
	}
}

func TestConfigFileSelectsAlgorithm(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	cfg := "[layout]\nalgorithm = \"radial\"\n\n[cache]\nbackend = \"none\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", cfgPath, "layout", "testdata/flow.yaml", "-o", filepath.Join(dir, "out.json")})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if c.Config.Layout.Algorithm != "radial" || c.Config.Cache.Backend != "none" {
		t.Errorf("config = %+v", c.Config)
	}
}
