package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hongminglow/carrot/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var (
	initForce bool
	initPath  string
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with defaults and a fresh JWT secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := initPath
		if path == "" {
			path = "carrot.yaml"
		}
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}

		cfg := config.Default()
		secret := make([]byte, 48)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("generate secret: %w", err)
		}
		cfg.JWT.Secret = hex.EncodeToString(secret)

		if err := config.Save(cfg, path); err != nil {
			return err
		}
		cmd.Printf("Configuration file created at: %s\n", path)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cmd.Printf("Configuration is valid (db=%s, base_path=%q)\n", cfg.Database.Driver, cfg.API.BasePath)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
	configInitCmd.Flags().StringVarP(&initPath, "output", "o", "", "destination path (default: carrot.yaml)")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
}
