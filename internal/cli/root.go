// internal/cli/root.go
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	genarodeps "github.com/genaro-network/genaro-deps"
	"github.com/genaro-network/genaro-deps/pkg/core"
)

// EnvPrefix prefixes environment overrides, e.g. GENARO_DEPS_BASE_DIR
const EnvPrefix = "GENARO_DEPS"

var (
	v      = viper.New()
	config *core.Config
	logger *log.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "genaro-deps",
	Short: "Provision the prebuilt libgenaro library",
	Long: `genaro-deps - libgenaro provisioner

Uses the system libgenaro when pkg-config reports one, otherwise downloads,
verifies and extracts the prebuilt release for this platform. Build systems
query the resulting compiler and linker flags with "genaro-deps flags".`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute executes the root command with the process arguments
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteArgs executes the root command with args instead of os.Args
func ExecuteArgs(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.config/genaro-deps/config.yaml)")
	flags.String("manifest", "", "release manifest (yaml, json or toml); required by provision")
	flags.String("base-dir", "", "directory the vendored tree and archives are placed in (default is cwd)")
	flags.String("platform", "", "override the detected platform (linux, darwin, win32, ...)")
	flags.String("arch", "", "override the detected architecture (x64, arm64, ia32, ...)")
	flags.Bool("debug", false, "enable debug logging")

	for _, name := range []string{"config", "manifest", "base-dir", "platform", "arch", "debug"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd.AddCommand(flagsCmd)
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(platformsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	var err error
	config, err = core.LoadConfig(v.GetString("config"))
	if err != nil {
		return err
	}

	// Flags and GENARO_DEPS_* variables override the config file
	for key, field := range map[string]*string{
		"manifest":     &config.Manifest,
		"base-dir":     &config.BaseDir,
		"download-dir": &config.DownloadDir,
		"pkg-config":   &config.PkgConfig,
		"platform":     &config.Platform,
		"arch":         &config.Arch,
	} {
		if s := v.GetString(key); s != "" {
			*field = s
		}
	}
	if v.IsSet("connect-timeout") {
		config.ConnectTimeout = v.GetDuration("connect-timeout")
	}
	if v.IsSet("timeout") {
		config.Timeout = v.GetDuration("timeout")
	}
	if v.IsSet("retries") {
		config.Retries = v.GetInt("retries")
	}
	if v.IsSet("keep-archive") {
		config.KeepArchive = v.GetBool("keep-archive")
	}
	if v.GetBool("debug") {
		config.Debug = true
	}

	level := log.InfoLevel
	if config.Debug {
		level = log.DebugLevel
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "genaro-deps",
		Level:  level,
	})

	return nil
}

func newManager(opts ...genarodeps.Option) (*genarodeps.Manager, error) {
	opts = append([]genarodeps.Option{genarodeps.WithLogger(logger)}, opts...)
	m, err := genarodeps.NewManager(config, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing: %w", err)
	}
	return m, nil
}
