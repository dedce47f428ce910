package cli

import (
	"github.com/spf13/cobra"

	"github.com/devbydaniel/voicemsg/config"
	"github.com/devbydaniel/voicemsg/internal/app"
	"github.com/devbydaniel/voicemsg/internal/logging"
	"github.com/devbydaniel/voicemsg/internal/version"
)

type Dependencies struct {
	App    *app.App
	Config *config.Config
	Logger *logging.Logger
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "voicemsg",
		Short: "Record voice messages from the microphone",
		Long:  "A CLI tool that records a voice message, asks you to send or cancel it, and saves it as a file ready to upload (or posts it to a Mattermost channel).",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if deps.Logger != nil {
				deps.Logger.SetVerbose(verbose)
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewListenCmd(deps))
	rootCmd.AddCommand(NewListCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}
