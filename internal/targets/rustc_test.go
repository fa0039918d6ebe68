package targets

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/targetdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/targetdocs/internal/pattern"
)

type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	fail    map[string]error
	calls   []string
	envs    map[string][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args []string, env []string) ([]byte, error) {
	key := strings.Join(args, " ")
	f.mu.Lock()
	f.calls = append(f.calls, name+" "+key)
	if f.envs == nil {
		f.envs = map[string][]string{}
	}
	f.envs[key] = env
	f.mu.Unlock()
	if err, ok := f.fail[key]; ok {
		return nil, err
	}
	out, ok := f.outputs[key]
	if !ok {
		return nil, errors.New("unexpected command: " + key)
	}
	return []byte(out), nil
}

func specArgs(target string) string {
	return "-Z unstable-options --print target-spec-json --target " + target
}

func cfgArgs(target string) string {
	return "--print cfg --target " + target
}

func newFake() *fakeRunner {
	return &fakeRunner{outputs: map[string]string{
		"--print target-list": "x86_64-unknown-linux-gnu\naarch64-apple-darwin\n\n",
		specArgs("x86_64-unknown-linux-gnu"): `{"arch":"x86_64","metadata":{"description":"64-bit Linux (kernel 3.2+, glibc 2.17+)","tier":1,"host_tools":true,"std":true}}`,
		specArgs("aarch64-apple-darwin"):     `{"arch":"aarch64","metadata":{"description":" ARM64 macOS (11.0+, Big Sur+) ","tier":2,"host_tools":null,"std":true}}`,
		cfgArgs("x86_64-unknown-linux-gnu"):  "panic=\"unwind\"\ntarget_arch=\"x86_64\"\ntarget_feature=\"sse\"\ntarget_feature=\"sse2\"\nunix\n",
		cfgArgs("aarch64-apple-darwin"):      "target_arch=\"aarch64\"\nunix\n",
	}}
}

func TestRustcSource_Targets(t *testing.T) {
	fake := newFake()
	src := NewRustcSource("/opt/rust/bin/rustc")
	src.Runner = fake
	src.Concurrency = 2

	ts, err := src.Targets(context.Background())
	require.NoError(t, err)
	require.Len(t, ts, 2)

	assert.Equal(t, "aarch64-apple-darwin", ts[0].Name)
	assert.Equal(t, "ARM64 macOS (11.0+, Big Sur+)", ts[0].Metadata.Description)
	assert.Equal(t, "2", ts[0].Metadata.TierLabel())
	assert.Nil(t, ts[0].Metadata.HostTools)

	linux := ts[1]
	assert.Equal(t, "1", linux.Metadata.TierLabel())
	require.NotNil(t, linux.Metadata.HostTools)
	assert.True(t, *linux.Metadata.HostTools)
	assert.Equal(t, []Cfg{
		{Name: "panic", Values: []string{"unwind"}},
		{Name: "target_arch", Values: []string{"x86_64"}},
		{Name: "target_feature", Values: []string{"sse", "sse2"}},
		{Name: "unix"},
	}, linux.Cfgs)

	assert.Equal(t, []string{"RUSTC_BOOTSTRAP=1"}, fake.envs[specArgs("aarch64-apple-darwin")])
	assert.Contains(t, fake.calls, "/opt/rust/bin/rustc --print target-list")
}

func TestRustcSource_FilterAndSkipMetadata(t *testing.T) {
	fake := newFake()
	filter, err := pattern.NewFilter([]string{"*-apple-*"})
	require.NoError(t, err)
	src := &RustcSource{Rustc: "rustc", Runner: fake, Filter: filter, SkipMetadata: true}

	ts, err := src.Targets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"aarch64-apple-darwin"}, Names(ts))
	assert.Len(t, fake.calls, 1)

	all, err := AllNames(context.Background(), src, ts)
	require.NoError(t, err)
	assert.Equal(t, []string{"x86_64-unknown-linux-gnu", "aarch64-apple-darwin"}, all)
}

func TestRustcSource_Errors(t *testing.T) {
	t.Run("target list", func(t *testing.T) {
		fake := newFake()
		fake.fail = map[string]error{"--print target-list": errors.New("not found")}
		src := &RustcSource{Rustc: "rustc", Runner: fake}
		_, err := src.Targets(context.Background())
		require.Error(t, err)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTargetSource))
	})

	t.Run("spec query", func(t *testing.T) {
		fake := newFake()
		fake.fail = map[string]error{specArgs("aarch64-apple-darwin"): errors.New("unknown target")}
		src := &RustcSource{Rustc: "rustc", Runner: fake}
		_, err := src.Targets(context.Background())
		require.Error(t, err)
		c, ok := ferrors.AsClassified(err)
		require.True(t, ok)
		assert.Equal(t, "aarch64-apple-darwin", c.Context()["target"])
	})

	t.Run("unsafe target name", func(t *testing.T) {
		fake := newFake()
		fake.outputs["--print target-list"] = "x86_64-unknown-linux-gnu\n../../etc\n"
		src := &RustcSource{Rustc: "rustc", Runner: fake}
		_, err := src.Targets(context.Background())
		require.Error(t, err)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTargetSource))
		assert.Contains(t, err.Error(), "invalid target name")
	})

	t.Run("bad json", func(t *testing.T) {
		fake := newFake()
		fake.outputs[specArgs("x86_64-unknown-linux-gnu")] = "{"
		src := &RustcSource{Rustc: "rustc", Runner: fake}
		_, err := src.Targets(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode target spec")
	})
}

func TestParseCfg_Empty(t *testing.T) {
	assert.Nil(t, ParseCfg(nil))
}
