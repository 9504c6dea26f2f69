package project

import (
	"time"

	"github.com/proxima-one/proxima-cli/internal/lifecycle"
)

// FileName is the lifecycle record kept at the project root.
const FileName = ".proxima.yml"

// DefaultAppConfig is the app_config value written by init.
const DefaultAppConfig = "app-config.yml"

// Record is the content of .proxima.yml.
type Record struct {
	Name      string          `yaml:"name"`
	ID        string          `yaml:"id,omitempty"`
	AppConfig string          `yaml:"app_config"`
	State     lifecycle.State `yaml:"state,omitempty"`
	CreatedAt time.Time       `yaml:"created_at,omitempty"`
}

// AppConfigPath returns the app config location, falling back to the
// default file name when the record leaves it empty.
func (r *Record) AppConfigPath() string {
	if r.AppConfig == "" {
		return DefaultAppConfig
	}
	return r.AppConfig
}
