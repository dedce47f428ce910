package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/devbydaniel/voicemsg/internal/domain/voice/usecases"
	"github.com/devbydaniel/voicemsg/internal/output"
)

const doctorTimeout = 5 * time.Second

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(cmd.OutOrStdout())
			ok := true

			if name, err := deps.App.Microphone.Probe(); err != nil {
				f.SetupCheck("Microphone", false, err.Error())
				ok = false
			} else {
				f.SetupCheck("Microphone", true, name)
			}

			if deps.Config.Format == usecases.FormatOgg {
				if err := deps.App.Transcoder.CheckFFmpeg(); err != nil {
					f.SetupCheck("ffmpeg", false, "not found. Install ffmpeg or set format = \"wav\"")
					ok = false
				} else {
					f.SetupCheck("ffmpeg", true, "installed")
				}
			}

			if deps.App.Mattermost != nil {
				ctx, cancel := context.WithTimeout(cmd.Context(), doctorTimeout)
				err := deps.App.Mattermost.Ready(ctx)
				cancel()
				if err != nil {
					f.SetupCheck("Mattermost", false, err.Error())
					ok = false
				} else {
					f.SetupCheck("Mattermost", true, deps.App.HostName)
				}
			} else {
				f.SetupCheck("Mattermost", true, "not configured, recording paths are copied to the clipboard")
			}

			if err := os.MkdirAll(deps.Config.OutputDir, 0o755); err != nil {
				f.SetupCheck("Output directory", false, err.Error())
				ok = false
			} else {
				f.SetupCheck("Output directory", true, deps.Config.OutputDir)
			}

			if ok {
				f.Success("\nAll prerequisites met. Ready to record!")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}
