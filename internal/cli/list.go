package cli

import (
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devbydaniel/voicemsg/internal/output"
)

const recordingPrefix = "Voice Recording "

func NewListCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved voice recordings",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(cmd.OutOrStdout())

			entries, err := os.ReadDir(deps.Config.OutputDir)
			if err != nil {
				if os.IsNotExist(err) {
					formatter.Info("No recordings found")
					return nil
				}
				return err
			}

			var recordings []os.DirEntry
			for _, e := range entries {
				if e.Type().IsRegular() && strings.HasPrefix(e.Name(), recordingPrefix) {
					recordings = append(recordings, e)
				}
			}

			if len(recordings) == 0 {
				formatter.Info("No recordings found")
				return nil
			}

			// Names embed the start time, newest first.
			sort.Slice(recordings, func(i, j int) bool {
				return recordings[i].Name() > recordings[j].Name()
			})

			formatter.RecordingListHeader(deps.Config.OutputDir)
			for _, r := range recordings {
				var size int64
				if info, err := r.Info(); err == nil {
					size = info.Size()
				}
				formatter.RecordingListItem(r.Name(), size)
			}

			return nil
		},
	}

	return cmd
}
