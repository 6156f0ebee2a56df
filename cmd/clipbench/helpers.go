package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/voslund/clipbench/internal/config"
	"github.com/voslund/clipbench/internal/export"
	"github.com/voslund/clipbench/internal/ffmpeg"
)

func newExecutor(cmd *cobra.Command) (*ffmpeg.Executor, *config.Config, error) {
	cfg := config.FromContext(cmd.Context())
	ff, err := ffmpeg.New(log.Logger, cfg.FFmpeg)
	if err != nil {
		return nil, nil, err
	}
	return ff, cfg, nil
}

// runExport submits the request and blocks until the job reaches a terminal
// state, printing coarse progress along the way.
func runExport(cmd *cobra.Command, req export.Request) error {
	ff, cfg, err := newExecutor(cmd)
	if err != nil {
		return err
	}
	svc := export.NewService(log.Logger, ff, cfg)

	done := make(chan export.Job, 1)
	lastStep := -1
	svc.Submit(cmd.Context(), req, func(j export.Job) {
		if step := int(j.Progress * 20); step > lastStep && !j.IsTerminal() {
			lastStep = step
			fmt.Fprintf(os.Stderr, "\r%3.0f%%", j.Progress*100)
		}
		if j.IsTerminal() {
			done <- j
		}
	})

	job := <-done
	fmt.Fprintln(os.Stderr)
	if job.Status == export.StatusFailed {
		return job.Err
	}
	fmt.Println(job.Output)
	return nil
}
