package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	cfgPath string

	rootCmd = &cobra.Command{
		Use:   "publicai-staking",
		Short: "Single-asset staking ledger with asynchronous withdrawal settlement",
	}
)

// Setup wires the command tree and executes it. The --config flag defaults
// to config.yml in the invoking user's home directory.
func Setup() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	rootCmd.AddCommand(StartServerCmd())
	rootCmd.PersistentFlags().StringVar(
		&cfgPath, "config", filepath.Join(home, "config.yml"), "path to the yaml config file",
	)

	return rootCmd.Execute()
}

func GetConfigPath() string {
	return cfgPath
}
