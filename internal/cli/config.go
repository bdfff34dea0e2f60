// internal/cli/config.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/genaro-network/genaro-deps/pkg/core"
)

var configSave bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after applying the config file, GENARO_DEPS_*
environment variables and flags. With --save it is written to the config file.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configSave, "save", false, "write the effective configuration to the config file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configSave {
		path := v.GetString("config")
		if path == "" {
			path = core.ConfigPath()
		}
		if err := core.SaveConfig(config, path); err != nil {
			return err
		}
		logger.Info("Saved configuration", "path", path)
		return nil
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
