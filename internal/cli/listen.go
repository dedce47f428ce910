package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devbydaniel/voicemsg/internal/output"
	"github.com/devbydaniel/voicemsg/internal/surface"
)

func NewListenCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Show the record control and record on Enter",
		Long:  "Mount the record control once the host is ready. Each Enter starts a recording; Ctrl+D or Ctrl+C quits.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			formatter := output.NewFormatter(cmd.OutOrStdout())

			control, err := deps.App.Surface.Mount(ctx)
			if errors.Is(err, surface.ErrNoMountPoint) {
				deps.Logger.Debug("record control not mounted", zap.Error(err))
				return nil
			}
			if err != nil {
				return err
			}
			formatter.Listening(deps.App.HostName)

			session, err := deps.App.RecordSession()
			if err != nil {
				return err
			}
			err = deps.App.Surface.Serve(ctx, control, deps.App.Lines(), func(ctx context.Context) {
				formatter.SessionResult(session.Execute(ctx, control))
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
