package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/eproba/server/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var clearData bool

var rootCmd = &cobra.Command{
	Use:   "eproba-server",
	Short: "Eproba Server",
	Long:  `API server for scouting worksheets and task approval workflows.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig reads configuration from the environment when deployed, and from
// a config.yml next to the binary during development.
func loadConfig(path string) (*internal.Config, error) {
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		return configFromEnv()
	}
	return configFromFile(path)
}

func configFromEnv() (*internal.Config, error) {
	cfg := internal.LoadConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config from environment: %w", err)
	}
	return cfg, nil
}

func configFromFile(path string) (*internal.Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
