package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devbydaniel/voicemsg/internal/output"
	"github.com/devbydaniel/voicemsg/internal/surface"
)

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "record",
		Short: "Record one voice message",
		Long:  "Start recording from the default microphone right away.\nPress Enter to send the recording or type \"c\" to cancel it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			formatter := output.NewFormatter(cmd.OutOrStdout())

			control, err := deps.App.Surface.Mount(ctx)
			if errors.Is(err, surface.ErrNoMountPoint) {
				deps.Logger.Debug("not recording, host never became ready", zap.Error(err))
				return nil
			}
			if err != nil {
				return err
			}

			session, err := deps.App.RecordSession()
			if err != nil {
				return err
			}
			formatter.SessionResult(session.Execute(ctx, control))
			return nil
		},
	}
}
