package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/targetdocs/internal/config"
	ferrors "git.home.luguber.info/inful/targetdocs/internal/foundation/errors"
)

const testTargets = `targets:
  - name: aarch64-apple-darwin
    description: ARM64 macOS
    tier: 1
    std: true
    host_tools: true
  - name: x86_64-unknown-linux-gnu
    description: 64-bit Linux
    tier: 1
`

type project struct {
	root   string
	config string
}

func newProject(t *testing.T) project {
	t.Helper()
	root := t.TempDir()
	p := project{root: root, config: filepath.Join(root, "targetdocs.yaml")}
	write := func(rel, content string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	write("targets.yaml", testTargets)
	write("target-info/%2A.md", "---\npattern: \"*\"\n---\n## Testing\n\nNo tests.\n")
	write("target-info/aarch64-apple-darwin.md", "---\npattern: aarch64-apple-darwin\nmaintainers: [\"@silicon\"]\n---\n## Overview\n\nApple silicon.\n")
	write("targetdocs.yaml", `version: "1.0"
info_dir: `+filepath.Join(root, "target-info")+`
output:
  directory: `+filepath.Join(root, "out")+`
targets:
  source: file
  file: `+filepath.Join(root, "targets.yaml")+`
state:
  path: `+filepath.Join(root, "state", "state.db")+`
`)
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("targetdocs"), kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	var out bytes.Buffer
	err = kctx.Run(&Global{Out: &out}, &cli)
	return out.String(), err
}

func TestGenerate(t *testing.T) {
	p := newProject(t)
	out, err := run(t, "-c", p.config, "generate")
	require.NoError(t, err)
	assert.Contains(t, out, "2 targets: 2 written")

	page, err := os.ReadFile(filepath.Join(p.root, "out", "aarch64-apple-darwin.md"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Apple silicon.")

	out, err = run(t, "-c", p.config, "generate", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "Up to date")

	out, err = run(t, "-c", p.config, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "completed")
}

func TestGenerate_CheckStale(t *testing.T) {
	p := newProject(t)
	_, err := run(t, "-c", p.config, "generate", "--check")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	assert.Equal(t, 2, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestCheck(t *testing.T) {
	p := newProject(t)
	out, err := run(t, "-c", p.config, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "2 info files, 2 targets: ok")

	require.NoError(t, os.WriteFile(filepath.Join(p.root, "target-info", "wasm32-wasip1.md"), []byte("---\npattern: wasm32-wasip1\n---\n"), 0o600))
	out, err = run(t, "-c", p.config, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "warning:")

	_, err = run(t, "-c", p.config, "check", "--strict")
	require.Error(t, err)
}

func TestCheck_BadInfoFile(t *testing.T) {
	p := newProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(p.root, "target-info", "wrong-name.md"), []byte("---\npattern: x86_64-*\n---\n"), 0o600))
	_, err := run(t, "-c", p.config, "check")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestList(t *testing.T) {
	p := newProject(t)
	out, err := run(t, "-c", p.config, "list", "--sources", "--target", "aarch64-*")
	require.NoError(t, err)
	assert.Contains(t, out, "aarch64-apple-darwin\ttier 1\t2/6 sections\taarch64-apple-darwin.md, %2A.md")
	assert.Contains(t, out, "(stub)")
	assert.NotContains(t, out, "x86_64-unknown-linux-gnu")
}

func TestHistory_Disabled(t *testing.T) {
	root := t.TempDir()
	cfg := filepath.Join(root, "targetdocs.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("version: \"1.0\"\n"), 0o600))
	_, err := run(t, "-c", cfg, "history")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestInit(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "targetdocs.yaml")
	out, err := run(t, "-c", cfg, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized successfully")
	assert.FileExists(t, cfg)

	_, err = run(t, "-c", cfg, "init")
	require.Error(t, err)
	_, err = run(t, "-c", cfg, "init", "--force")
	require.NoError(t, err)
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, "-c", filepath.Join(t.TempDir(), "other.yaml"), "check")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

// Flag-only runs without a configuration file still read .env.
func TestLoadConfig_DefaultsReadEnvFile(t *testing.T) {
	const key = "TARGETDOCS_TEST_FROM_DOTENV"
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	cfg, err := loadConfig(&CLI{Config: config.DefaultPath}, config.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultInfoDir, cfg.InfoDir)
	assert.Equal(t, "loaded", os.Getenv(key))
}
