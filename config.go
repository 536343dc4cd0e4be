package registre

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config carries every tunable of the pipeline. Defaults let all commands run
// without a config file.
type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Downloads struct {
		Dir      string `yaml:"dir"`
		Attempts int    `yaml:"attempts"`
	} `yaml:"downloads"`
	INPI struct {
		Years    string `yaml:"years"`     // "2017-2023"
		MaxFiles int    `yaml:"max_files"` // per year, 0 means all
		Workers  int    `yaml:"workers"`   // 0 means NumCPU
	} `yaml:"inpi"`
	BODACC struct {
		PageSize int `yaml:"page_size"`
	} `yaml:"bodacc"`
	Pappers struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"pappers"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	var c Config
	c.Database.Path = "data/registre.db"
	c.Downloads.Dir = "data/downloads"
	c.Downloads.Attempts = 5
	c.INPI.Years = "2017-2023"
	c.INPI.Workers = runtime.NumCPU()
	c.BODACC.PageSize = 100
	return c
}

// LoadConfig reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file and keeps defaults.
// Any error surfaces before network or disk activity starts.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("cannot read config: %w", err)
		}
		if err := yaml.Unmarshal(content, &c); err != nil {
			return c, fmt.Errorf("cannot parse config %s: %w", path, err)
		}
	}
	c.applyEnv()
	if c.INPI.Workers < 1 {
		c.INPI.Workers = runtime.NumCPU()
	}
	if c.Downloads.Attempts < 1 {
		c.Downloads.Attempts = 5
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("DOWNLOADS_DIR"); v != "" {
		c.Downloads.Dir = v
	}
	if v := os.Getenv("PAPPERS_API_KEY"); v != "" {
		c.Pappers.APIKey = v
	}
	if v := os.Getenv("INPI_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.INPI.Workers = n
		}
	}
}
