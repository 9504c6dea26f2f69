package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// ErrNotFound is returned when the application config file does not exist.
var ErrNotFound = errors.New("app config not found")

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid app config")

// AppConfig represents app-config.yml, the application-level description of
// an event-indexing project.
type AppConfig struct {
	// Path is the file the config was loaded from.
	Path string `mapstructure:"-"`

	Name        string          `mapstructure:"name"`
	Schema      string          `mapstructure:"schema"`
	ABIDir      string          `mapstructure:"abi_dir"`
	DataSources []DataSource    `mapstructure:"datasources"`
	Output      OutputConfig    `mapstructure:"output"`
	Generator   GeneratorConfig `mapstructure:"generator"`
	Docker      DockerConfig    `mapstructure:"docker"`
}

// DataSource is a contract whose events are indexed.
type DataSource struct {
	Name       string `mapstructure:"name"`
	Network    string `mapstructure:"network"`
	Address    string `mapstructure:"address"`
	ABI        string `mapstructure:"abi"`
	StartBlock uint64 `mapstructure:"start_block"`
}

// OutputConfig names the directories produced by gen and build.
type OutputConfig struct {
	Handlers         string `mapstructure:"handlers"`
	Database         string `mapstructure:"database"`
	VertexClient     string `mapstructure:"vertex_client"`
	BlockchainClient string `mapstructure:"blockchain_client"`
	DataVertex       string `mapstructure:"data_vertex"`
	DataAggregator   string `mapstructure:"data_aggregator"`
}

// GeneratorConfig configures the external code generator.
type GeneratorConfig struct {
	Command     string `mapstructure:"command"`
	TestStructs bool   `mapstructure:"test_structs"`
}

// DockerConfig configures container tooling used by build, run, deploy and
// benchmark.
type DockerConfig struct {
	Command     string `mapstructure:"command"`
	ComposeFile string `mapstructure:"compose_file"`
	Project     string `mapstructure:"project"`
	DBImage     string `mapstructure:"db_image"`
	DBPort      int    `mapstructure:"db_port"`
}

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Load loads the application config at path. Values can be overridden with
// PROXIMA_ prefixed environment variables, e.g. PROXIMA_DOCKER_COMPOSE_FILE.
func Load(fsys afero.Fs, path string) (*AppConfig, error) {
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	v := viper.New()
	v.SetFs(fsys)

	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PROXIMA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Path = path

	if cfg.Docker.Project == "" {
		cfg.Docker.Project = cfg.Name
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schema", "schema/schema.graphql")
	v.SetDefault("abi_dir", "abi")

	v.SetDefault("output.handlers", "handlers")
	v.SetDefault("output.database", "database")
	v.SetDefault("output.vertex_client", "proxima-vertex-client")
	v.SetDefault("output.blockchain_client", "blockchain-client")
	v.SetDefault("output.data_vertex", "DataVertex")
	v.SetDefault("output.data_aggregator", "DataAggregator")

	v.SetDefault("generator.command", "proxima-autogen")
	v.SetDefault("generator.test_structs", true)

	v.SetDefault("docker.command", "docker")
	v.SetDefault("docker.compose_file", "docker-compose.yml")
	v.SetDefault("docker.project", "")
	v.SetDefault("docker.db_image", "chasesmith95/proxima-db-server:latest")
	v.SetDefault("docker.db_port", 50051)
}

// Dir returns the directory containing the config file. Relative paths in the
// config are resolved against it.
func (c *AppConfig) Dir() string {
	return filepath.Dir(c.Path)
}

// Resolve joins a config-relative path onto the config directory.
func (c *AppConfig) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

// validateConfig validates the configuration
func validateConfig(cfg *AppConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("name is required in %s", cfg.Path)
	}
	if cfg.Schema == "" {
		return fmt.Errorf("schema is required in %s", cfg.Path)
	}
	if cfg.Generator.Command == "" {
		return fmt.Errorf("generator.command must not be empty")
	}
	if cfg.Docker.Command == "" {
		return fmt.Errorf("docker.command must not be empty")
	}
	if cfg.Docker.DBPort <= 0 || cfg.Docker.DBPort > 65535 {
		return fmt.Errorf("docker.db_port must be between 1 and 65535, got: %d", cfg.Docker.DBPort)
	}

	seen := make(map[string]bool, len(cfg.DataSources))
	for i, ds := range cfg.DataSources {
		if ds.Name == "" {
			return fmt.Errorf("datasources[%d].name is required", i)
		}
		if seen[ds.Name] {
			return fmt.Errorf("duplicate datasource name: %s", ds.Name)
		}
		seen[ds.Name] = true

		if ds.ABI == "" {
			return fmt.Errorf("datasource %s: abi is required", ds.Name)
		}
		if ds.Address != "" && !addressPattern.MatchString(ds.Address) {
			return fmt.Errorf("datasource %s: address must be a 0x-prefixed 20-byte hex string, got: %s", ds.Name, ds.Address)
		}
	}
	return nil
}
