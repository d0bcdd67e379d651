package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/floatkit/internal/config"
	"github.com/vango-dev/floatkit/internal/errors"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check floatkit.json",
	}
	cmd.AddCommand(configInitCmd(), configCheckCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a floatkit.json with default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if config.Exists(dir) && !force {
				return errors.Newf(errors.CategoryConfig, "%s already exists in %s (use --force to overwrite)", config.ConfigFileName, dir)
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			path := filepath.Join(dir, config.ConfigFileName)
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\033[32m✓\033[0m Created %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Validate floatkit.json",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg *config.Config
				err error
			)
			if len(args) == 1 {
				cfg, err = config.LoadFile(args[0])
			} else {
				cfg, err = config.LoadFromWorkingDir()
			}
			if err != nil {
				if fe, ok := err.(*errors.FloatError); ok {
					fmt.Fprint(cmd.ErrOrStderr(), fe.Format())
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\033[32m✓\033[0m %s is valid\n", cfg.Path())
			return nil
		},
	}
}
