package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/voslund/clipbench/internal/export"
	"github.com/voslund/clipbench/internal/thumbs"
	"github.com/voslund/clipbench/pkg/timecode"
)

var probeCmd = &cobra.Command{
	Use:   "probe <input>",
	Short: "Print stream metadata for a media file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ff, _, err := newExecutor(cmd)
		if err != nil {
			return err
		}
		info, err := ff.ProbeVideo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("duration: %s (%s)\n", timecode.FormatClock(info.Seconds()), info.Duration)
		if info.HasVideo {
			fmt.Printf("video:    %s %dx%d @ %.2f fps", info.VideoCodec, info.Width, info.Height, info.FPS)
			if info.Rotation != 0 {
				fmt.Printf(" (rotated %d°)", info.Rotation)
			}
			fmt.Println()
		}
		if info.HasAudio {
			fmt.Printf("audio:    %s %d Hz %dch\n", info.AudioCodec, info.SampleRate, info.Channels)
		}
		return nil
	},
}

var (
	trimStart string
	trimEnd   string
)

var trimCmd = &cobra.Command{
	Use:   "trim <input> <output>",
	Short: "Export a time range of the source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := timecode.ParseClock(trimStart)
		if err != nil {
			return err
		}
		end, err := timecode.ParseClock(trimEnd)
		if err != nil {
			return err
		}
		return runExport(cmd, export.Request{
			Op:     export.OpTrim,
			Source: args[0],
			Output: args[1],
			Start:  start,
			End:    end,
		})
	},
}

var speedRate float64

var speedCmd = &cobra.Command{
	Use:   "speed <input> <output>",
	Short: "Export the source retimed by a uniform speed multiplier",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, export.Request{
			Op:     export.OpSpeedChange,
			Source: args[0],
			Output: args[1],
			Speed:  speedRate,
		})
	},
}

var reverseCmd = &cobra.Command{
	Use:   "reverse <input> <output>",
	Short: "Export the source reversed (video and audio)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, export.Request{
			Op:     export.OpReverse,
			Source: args[0],
			Output: args[1],
		})
	},
}

var renderTimeline string

var renderCmd = &cobra.Command{
	Use:   "render <input> <output>",
	Short: "Concatenate the segments of a cut list with per-segment speeds",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ff, _, err := newExecutor(cmd)
		if err != nil {
			return err
		}
		info, err := ff.ProbeVideo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		cl, err := loadCutList(renderTimeline)
		if err != nil {
			return err
		}
		segs, err := cl.segments(info.Seconds())
		if err != nil {
			return err
		}
		return runExport(cmd, export.Request{
			Op:       export.OpSegmentConcat,
			Source:   args[0],
			Output:   args[1],
			Segments: segs,
		})
	},
}

var burnTimeline string

var burnCmd = &cobra.Command{
	Use:   "burn <input> <output>",
	Short: "Burn the text overlays of a cut list into the video",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ff, _, err := newExecutor(cmd)
		if err != nil {
			return err
		}
		info, err := ff.ProbeVideo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		cl, err := loadCutList(burnTimeline)
		if err != nil {
			return err
		}
		overlays, err := cl.overlays(info.Seconds())
		if err != nil {
			return err
		}
		return runExport(cmd, export.Request{
			Op:       export.OpTextBurn,
			Source:   args[0],
			Output:   args[1],
			Overlays: overlays,
		})
	},
}

var (
	thumbCount int
	thumbDir   string
)

var thumbsCmd = &cobra.Command{
	Use:   "thumbs <input>",
	Short: "Generate evenly spaced preview frames",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ff, cfg, err := newExecutor(cmd)
		if err != nil {
			return err
		}
		info, err := ff.ProbeVideo(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		sampler := thumbs.NewSampler(log.Logger, ff, cfg.Thumbnails)
		frames, err := sampler.Generate(cmd.Context(), args[0], info.Seconds(), thumbCount, thumbDir,
			func(batch []thumbs.Frame) {
				for _, f := range batch {
					fmt.Printf("%s  %s\n", timecode.FormatClock(f.Instant), f.Path)
				}
			})
		if err != nil {
			return err
		}
		fmt.Printf("%d frames\n", len(frames))
		return nil
	},
}

func init() {
	trimCmd.Flags().StringVar(&trimStart, "start", "0", "range start (seconds or M:SS.cc)")
	trimCmd.Flags().StringVar(&trimEnd, "end", "", "range end (seconds or M:SS.cc)")
	trimCmd.MarkFlagRequired("end")

	speedCmd.Flags().Float64Var(&speedRate, "rate", 1, "speed multiplier (>0)")
	speedCmd.MarkFlagRequired("rate")

	renderCmd.Flags().StringVar(&renderTimeline, "timeline", "", "cut list YAML file")
	renderCmd.MarkFlagRequired("timeline")

	burnCmd.Flags().StringVar(&burnTimeline, "timeline", "", "cut list YAML file")
	burnCmd.MarkFlagRequired("timeline")

	thumbsCmd.Flags().IntVar(&thumbCount, "count", 0, "number of frames (default from config)")
	thumbsCmd.Flags().StringVar(&thumbDir, "out-dir", ".", "directory for frame images")
}
