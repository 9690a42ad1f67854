package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "githook-seclog",
	Short: "Audit trail for git pushes",
	Long: `githook-seclog is a server-side post-receive hook that records who
pushed what, from where, affecting which files. Link the binary into a
repository's hooks/post-receive (or use the install command) and every
push is written to the configured audit sinks.

With no subcommand it behaves as the hook itself: it reads
"<old-rev> <new-rev> <ref-name>" triples from stdin until EOF.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHook(cmd.InOrStdin())
	},
}

// Execute runs the CLI. The hook's exit code is advisory only; by the
// time post-receive runs the push has already completed.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	viper.SetConfigName("githook-seclog")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc")
	viper.AddConfigPath(".")

	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(home + "/.githook-seclog")
	}

	viper.SetEnvPrefix("GITHOOK_SECLOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// No config file anywhere means defaults apply.
	}
}
