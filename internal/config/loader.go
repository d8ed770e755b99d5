package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// ErrLoadConfig indicates a failure to read or parse the YAML configuration.
var ErrLoadConfig = errors.New("config load failed")

// Config represents the top-level YAML configuration file.
type Config struct {
	Include []string     `mapstructure:"include" yaml:"include,omitempty"`
	Backup  BackupConfig `mapstructure:"backup"  yaml:"backup"`
	Bench   BenchConfig  `mapstructure:"bench"   yaml:"bench"`
	Vault   VaultConfig  `mapstructure:"vault"   yaml:"vault"`
}

// BackupConfig contains global backup options.
type BackupConfig struct {
	OutputDirectory string `mapstructure:"output_directory" yaml:"output_directory"`
	Compress        bool   `mapstructure:"compress"         yaml:"compress"`
	ExcludeFiles    bool   `mapstructure:"exclude_files"    yaml:"exclude_files,omitempty"`
}

// BenchConfig describes how to reach and recreate benches.
type BenchConfig struct {
	Command          string `mapstructure:"command"           yaml:"command,omitempty"`
	DefaultPython    string `mapstructure:"default_python"    yaml:"default_python,omitempty"`
	FrappeBranch     string `mapstructure:"frappe_branch"     yaml:"frappe_branch,omitempty"`
	BenchesDirectory string `mapstructure:"benches_directory" yaml:"benches_directory,omitempty"`
}

// VaultConfig holds connection settings for HashiCorp Vault. When Address is
// empty, restore runs without fetching a database root credential.
type VaultConfig struct {
	Address     string `mapstructure:"address"      yaml:"address,omitempty"`
	RoleID      string `mapstructure:"role_id"      yaml:"role_id,omitempty"`
	ApproleName string `mapstructure:"approle_name" yaml:"approle_name,omitempty"`
	DBRolePath  string `mapstructure:"db_role_path" yaml:"db_role_path,omitempty"`
}

// Load reads the configuration from the given YAML file using Viper,
// merges any included files, and unmarshals into the Config struct.
// A missing file is not an error; defaults apply.
func (c *Config) Load(path string) error {
	c.applyDefaults()

	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: read base config %s: %v", ErrLoadConfig, path, err)
	}

	// Merge include files (if any)
	for _, inc := range v.GetStringSlice("include") {
		data, err := os.ReadFile(inc)
		if err != nil {
			return fmt.Errorf("%w: read include %s: %v", ErrLoadConfig, inc, err)
		}
		if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("%w: merge include %s: %v", ErrLoadConfig, inc, err)
		}
	}

	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("%w: unmarshal config: %v", ErrLoadConfig, err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	c.Backup.OutputDirectory = "backups"
	c.Backup.Compress = true
	c.Bench.Command = "bench"
	c.Bench.DefaultPython = "python3"
	c.Bench.FrappeBranch = "version-15"
}
