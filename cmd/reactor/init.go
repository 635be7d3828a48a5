package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		name  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default reactor.json",
		Long: `Create reactor.json in dir (default: the current directory) with
the default live server and snapshot settings.

Examples:
  reactor init
  reactor init site --name docs`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if config.Exists(dir) && !force {
				return errors.New("CLI001").
					WithDetailf("%s already exists in %s", config.ConfigFileName, dir).
					WithSuggestion("Pass --force to overwrite it")
			}
			if name == "" {
				abs, err := filepath.Abs(dir)
				if err != nil {
					return err
				}
				name = filepath.Base(abs)
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.New("CLI002").WithDetailf("cannot create %s", dir).Wrap(err)
			}

			cfg := config.Default()
			cfg.Name = name
			path := filepath.Join(dir, config.ConfigFileName)
			if err := cfg.SaveTo(path); err != nil {
				return errors.New("CLI002").WithDetailf("cannot write %s", path).Wrap(err)
			}
			success("created %s", cfg.Path())
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (default: directory name)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing reactor.json")

	return cmd
}
