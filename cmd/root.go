package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sqlsubmit",
	Short: "Submit a Flink SQL script to a SQL Gateway",
	Long: `sqlsubmit reads a file of Flink SQL statements and submits them,
in file order, to a Flink SQL Gateway session:

- SET statements configure the session
- INSERT INTO / INSERT OVERWRITE statements are submitted together as one job
- EXPLAIN and every other statement are executed as they appear
- Sessions start with checkpointing and a failure-rate restart strategy`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sqlsubmit.yaml)")
	rootCmd.PersistentFlags().String("flink-url", "http://localhost:8081", "Flink Job Manager URL")
	rootCmd.PersistentFlags().String("sql-gateway-url", "", "Flink SQL Gateway URL (default: derived from --flink-url)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: error, warn, info, debug")

	_ = viper.BindPFlag("flink_url", rootCmd.PersistentFlags().Lookup("flink-url"))
	_ = viper.BindPFlag("sql_gateway_url", rootCmd.PersistentFlags().Lookup("sql-gateway-url"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetDefault("flink_url", "http://localhost:8081")
	viper.SetDefault("log_level", "info")
}

// initConfig reads in config file and ENV variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sqlsubmit")
	}

	viper.SetEnvPrefix("sqlsubmit")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
