package output

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sdejongh/ftpdeploy/pkg/models"
)

// PrintSummary writes a human-readable run summary
func PrintSummary(w io.Writer, report *models.RunReport) {
	if w == nil || report == nil {
		return
	}

	if report.DryRun {
		fmt.Fprintf(w, "Dry run completed in %s (nothing uploaded)\n", report.Duration.Round(time.Millisecond))
	} else {
		fmt.Fprintf(w, "FTP upload completed in %s\n", report.Duration.Round(time.Millisecond))
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Source:       %s\n", report.LocalRoot)
	fmt.Fprintf(w, "  Destination:  %s\n", report.RemoteRoot)
	fmt.Fprintf(w, "  Scanned:      %s files, %s dirs\n",
		humanize.Comma(int64(report.Stats.FilesScanned)), humanize.Comma(int64(report.Stats.DirsScanned)))
	fmt.Fprintf(w, "  Directories:  %d changed, %d unchanged\n", report.Stats.DirsChanged, report.Stats.DirsSkipped)

	verb := "uploaded"
	if report.DryRun {
		verb = "to upload"
	}
	fmt.Fprintf(w, "  Files:        %d %s, %d unchanged\n", report.Stats.FilesUploaded, verb, report.Stats.FilesSkipped)
	fmt.Fprintf(w, "  Data:         %s\n", humanize.Bytes(uint64(report.Stats.BytesUploaded)))

	if !report.DryRun && report.Duration.Seconds() > 0 && report.Stats.BytesUploaded > 0 {
		avgSpeed := float64(report.Stats.BytesUploaded) / report.Duration.Seconds()
		fmt.Fprintf(w, "  Average:      %s/s\n", humanize.Bytes(uint64(avgSpeed)))
	}

	if len(report.Changed) > 0 {
		fmt.Fprintf(w, "\nChanged directories:\n")
		for _, dir := range report.Changed {
			fmt.Fprintf(w, "  %s\n", dir)
		}
	}

	fmt.Fprintf(w, "\nStatus: %s\n", report.Status)
}
