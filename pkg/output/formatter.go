package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ritzau/appearance-engine/pkg/caption"
	"github.com/ritzau/appearance-engine/pkg/engine"
)

// PrintCaptionReport prints the dataset summary and every legend of the
// current appearance
func PrintCaptionReport(w io.Writer, info engine.DatasetInfo, c caption.Caption) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	title := info.Metadata.Title
	if title == "" {
		title = "untitled"
	}
	bold.Fprintf(w, "Appearance Engine - %s\n", title)
	bold.Fprintln(w, "=====================================")
	fmt.Fprintf(w, "Graph: %s, %d nodes, %d edges\n", info.Metadata.Type, info.Nodes, info.Edges)
	fmt.Fprintf(w, "Fields: %d node, %d edge\n", len(info.NodeFields), len(info.EdgeFields))
	fmt.Fprintln(w)

	channels := c.Channels()
	if len(channels) == 0 {
		green.Fprintln(w, "No ranking or partition channels configured")
		return
	}

	incomplete := 0
	for _, named := range channels {
		ch := named.Channel
		cyan.Fprintf(w, "%s: %s\n", named.Name, ch.Label)

		switch {
		case ch.Range != nil:
			printRange(w, ch.Range, yellow)
			if ch.Range.Missing {
				incomplete++
			}
		case ch.Partition != nil:
			printPartition(w, ch.Partition, yellow)
			if ch.Partition.Missing {
				incomplete++
			}
		}
		fmt.Fprintln(w)
	}

	if incomplete == 0 {
		green.Fprintf(w, "Summary: %d channel(s), every visible item has a value\n", len(channels))
	} else {
		red.Fprintf(w, "Summary: %d of %d channel(s) have items without a value\n", incomplete, len(channels))
	}
}

func printRange(w io.Writer, r *caption.RangeCaption, warn *color.Color) {
	if !r.Valid {
		warn.Fprintln(w, "  no visible item has a value")
		return
	}
	fmt.Fprintf(w, "  range: %g .. %g\n", r.Min, r.Max)
	if r.MinSize != 0 || r.MaxSize != 0 {
		fmt.Fprintf(w, "  sizes: %g .. %g\n", r.MinSize, r.MaxSize)
	}
	for _, p := range r.ColorScalePoints {
		fmt.Fprintf(w, "  %4.0f%%  %s\n", p.ScalePoint*100, p.Color)
	}
	if r.TargetColor != "" {
		fmt.Fprintf(w, "  shading: x%g towards %s\n", r.Factor, r.TargetColor)
	}
	if r.Missing {
		warn.Fprintf(w, "  %s: some items have no value\n", caption.MissingLabel)
	}
}

func printPartition(w io.Writer, p *caption.PartitionCaption, warn *color.Color) {
	for _, o := range caption.SortedOccurrences(p) {
		swatch := ""
		if c, ok := p.Palette[o.Value]; ok {
			swatch = " " + c
		} else if o.Value == caption.MissingLabel && p.MissingColor != "" {
			swatch = " " + p.MissingColor
		}

		line := fmt.Sprintf("  %-20s %5d%s\n", o.Value, o.Count, swatch)
		if o.Value == caption.MissingLabel {
			warn.Fprint(w, line)
		} else {
			fmt.Fprint(w, line)
		}
	}
}

