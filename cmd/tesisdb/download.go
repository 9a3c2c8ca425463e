package main

import (
	"fmt"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/fwojciec/tesisdb"
	"github.com/fwojciec/tesisdb/download"
)

// Run executes the download command.
func (c *DownloadCmd) Run(deps *Dependencies) error {
	deps.Downloader.BaseDir = c.Dir
	return runDownloadBatch(deps, download.BatchOptions{
		Limit:         c.Limit,
		Delay:         c.Delay,
		Retries:       c.Retries,
		IncludeFailed: c.IncludeFailed,
	})
}

// runDownloadBatch runs one artifact batch with a progress bar and prints
// the outcome. Shared by "download" and "extract --download".
func runDownloadBatch(deps *Dependencies, opts download.BatchOptions) error {
	var bar *pb.ProgressBar
	opts.Progress = func(done, total int, ius string) {
		if bar == nil {
			bar = pb.New(total)
			bar.SetWriter(deps.Stderr)
			bar.Start()
		}
		bar.SetCurrent(int64(done))
	}

	stats, err := deps.Downloader.DownloadAllPending(deps.Ctx, opts)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", tesisdb.ErrorMessage(err))
		return err
	}

	if stats.Total == 0 {
		fmt.Fprintln(deps.Stdout, "Nothing pending.")
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Downloaded %s of %s (%s already on disk, %s failed)\n",
		humanize.Comma(int64(stats.Succeeded)), humanize.Comma(int64(stats.Total)),
		humanize.Comma(int64(stats.Skipped)), humanize.Comma(int64(stats.Failed)))
	return nil
}
