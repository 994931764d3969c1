package config

import (
	"lever/core"

	configutil "github.com/fox-one/pkg/config"
)

// Load load config file
func Load(cfgFile string, cfg *core.Config) error {
	configutil.AutomaticLoadEnv("LEVER")
	if err := configutil.LoadYaml(cfgFile, cfg); err != nil {
		return err
	}

	return nil
}
