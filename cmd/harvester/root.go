package main

import (
	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/infrastructure/config"
	"chat-harvester/internal/infrastructure/env"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	cfgFile string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "harvester",
		Short:         "Submit a table of questions to a chat page and collect the answers.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env first so HARVESTER_* values from it reach viper.
			cfg, err := config.Load(viper.New(), profilePath(env.NewEnvService(), a.cfgFile))
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "selector profile (default is ./harvester.yaml)")

	root.AddCommand(
		newRunCmd(a),
		newExportCmd(a),
		newClearCmd(a),
		newServeCmd(a),
		newProbeCmd(a),
	)
	return root
}

// profilePath prefers the --config flag, then HARVESTER_CONFIG.
func profilePath(c output.ConfigPort, flag string) string {
	if flag != "" {
		return flag
	}
	return c.GetWithDefault("HARVESTER_CONFIG", "")
}
