package toolchain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxima-one/proxima-cli/internal/cli/config"
)

// recordingRunner records every command and fails the ones whose String
// contains failOn.
type recordingRunner struct {
	calls  []Cmd
	failOn string
	output string
}

func (r *recordingRunner) Run(_ context.Context, cmd Cmd) error {
	r.calls = append(r.calls, cmd)
	if r.failOn != "" && strings.Contains(cmd.String(), r.failOn) {
		return errors.New("exit status 1")
	}
	return nil
}

func (r *recordingRunner) Output(ctx context.Context, cmd Cmd) (string, error) {
	if err := r.Run(ctx, cmd); err != nil {
		return "", err
	}
	return r.output, nil
}

func (r *recordingRunner) commands() []string {
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.String()
	}
	return out
}

func testApp() *config.AppConfig {
	return &config.AppConfig{
		Path:   "/work/demo/app-config.yml",
		Name:   "demo",
		Schema: "schema/schema.graphql",
		Output: config.OutputConfig{
			Handlers:         "handlers",
			Database:         "database",
			VertexClient:     "proxima-vertex-client",
			BlockchainClient: "blockchain-client",
			DataVertex:       "DataVertex",
			DataAggregator:   "DataAggregator",
		},
		Generator: config.GeneratorConfig{Command: "proxima-autogen", TestStructs: true},
		Docker: config.DockerConfig{
			Command:     "docker",
			ComposeFile: "docker-compose.yml",
			Project:     "demo",
			DBImage:     "chasesmith95/proxima-db-server:latest",
			DBPort:      50051,
		},
	}
}

func TestGenerate_RunsStepsInOrder(t *testing.T) {
	runner := &recordingRunner{}
	tc := New(afero.NewMemMapFs(), runner, nil)

	require.NoError(t, tc.Generate(context.Background(), testApp()))

	assert.Equal(t, []string{
		"proxima-autogen schema --config /work/demo/app-config.yml",
		"proxima-autogen database --config /work/demo/app-config.yml --out /work/demo/database",
		"proxima-autogen vertex-client --config /work/demo/app-config.yml --out /work/demo/proxima-vertex-client",
		"proxima-autogen handlers --config /work/demo/app-config.yml --out /work/demo/handlers",
		"proxima-autogen blockchain-client --config /work/demo/app-config.yml --out /work/demo/blockchain-client",
	}, runner.commands())

	for _, c := range runner.calls {
		assert.Equal(t, "/work/demo", c.Dir)
		assert.Contains(t, c.Env, "PROXIMA_PROJECT=demo")
	}
}

func TestGenerate_StopsAtFirstFailure(t *testing.T) {
	runner := &recordingRunner{failOn: "vertex-client"}
	tc := New(afero.NewMemMapFs(), runner, nil)

	err := tc.Generate(context.Background(), testApp())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generator step vertex-client")
	assert.Len(t, runner.calls, 3)
}

func TestBuild(t *testing.T) {
	runner := &recordingRunner{}
	tc := New(afero.NewMemMapFs(), runner, nil)

	require.NoError(t, tc.Build(context.Background(), testApp()))

	assert.Equal(t, []string{
		"proxima-autogen data-aggregator --config /work/demo/app-config.yml --out /work/demo/DataAggregator",
		"proxima-autogen data-vertex --config /work/demo/app-config.yml --out /work/demo/DataVertex",
		"proxima-autogen test-structs --config /work/demo/app-config.yml --out /work/demo/DataVertex",
		"proxima-autogen compose --config /work/demo/app-config.yml --out /work/demo/docker-compose.yml",
		"docker compose -f /work/demo/docker-compose.yml -p demo build",
	}, runner.commands())
}

func TestBuild_WithoutTestStructs(t *testing.T) {
	runner := &recordingRunner{}
	tc := New(afero.NewMemMapFs(), runner, nil)
	app := testApp()
	app.Generator.TestStructs = false

	require.NoError(t, tc.Build(context.Background(), app))

	for _, c := range runner.commands() {
		assert.NotContains(t, c, "test-structs")
	}
}

func TestRunAndDeploy(t *testing.T) {
	runner := &recordingRunner{}
	tc := New(afero.NewMemMapFs(), runner, nil)

	require.NoError(t, tc.Run(context.Background(), testApp()))
	require.NoError(t, tc.Deploy(context.Background(), testApp()))

	assert.Equal(t, []string{
		"docker compose -f /work/demo/docker-compose.yml -p demo up",
		"docker compose -f /work/demo/docker-compose.yml -p demo push",
	}, runner.commands())
}

func TestTest_RequiresVertexPackage(t *testing.T) {
	runner := &recordingRunner{}
	tc := New(afero.NewMemMapFs(), runner, nil)

	err := tc.Test(context.Background(), testApp())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "data vertex package not found")
	assert.Empty(t, runner.calls)
}

func TestTest(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work/demo/DataVertex/pkg/vertex", 0755))
	runner := &recordingRunner{}
	tc := New(fs, runner, nil)

	require.NoError(t, tc.Test(context.Background(), testApp()))

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "go test -v ./...", runner.calls[0].String())
	assert.Equal(t, "/work/demo/DataVertex/pkg/vertex", runner.calls[0].Dir)
}

func TestBenchmark_StopsContainer(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work/demo/DataVertex/pkg/vertex", 0755))

	tests := []struct {
		name    string
		failOn  string
		wantErr bool
	}{
		{name: "benchmarks pass"},
		{name: "benchmarks fail", failOn: "-bench", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &recordingRunner{output: "c0ffee", failOn: tt.failOn}
			tc := New(fs, runner, nil)

			err := tc.Benchmark(context.Background(), testApp())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, []string{
				"docker run -d --rm -p 50051:50051 chasesmith95/proxima-db-server:latest",
				"go test -run ^$ -bench=. ./...",
				"docker stop c0ffee",
			}, runner.commands())
		})
	}
}

func TestEnviron_LoadsDotEnv(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/demo/.env", []byte("ETH_RPC_URL=http://localhost:8545\n# comment\nAPI_KEY=secret\n"), 0644))
	runner := &recordingRunner{}
	tc := New(fs, runner, nil)

	require.NoError(t, tc.Run(context.Background(), testApp()))

	require.Len(t, runner.calls, 1)
	env := runner.calls[0].Env
	assert.Contains(t, env, "ETH_RPC_URL=http://localhost:8545")
	assert.Contains(t, env, "API_KEY=secret")
	assert.Equal(t, "PROXIMA_PROJECT=demo", env[len(env)-1])
}

func TestScaffold(t *testing.T) {
	fs := afero.NewMemMapFs()
	tc := New(fs, &recordingRunner{}, nil)

	require.NoError(t, tc.Scaffold(context.Background(), "/work/demo", "demo"))

	ok, err := afero.Exists(fs, "/work/demo/app-config.yml")
	require.NoError(t, err)
	assert.True(t, ok)
}
