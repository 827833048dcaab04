package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ritzau/appearance-engine/pkg/appearance"
	"github.com/ritzau/appearance-engine/pkg/caption"
	"github.com/ritzau/appearance-engine/pkg/engine"
	"github.com/ritzau/appearance-engine/pkg/model"
)

func TestPrintCaptionReport(t *testing.T) {
	color.NoColor = true

	info := engine.DatasetInfo{
		Metadata: model.Metadata{Title: "deps", Type: model.GraphDirected},
		Nodes:    3,
		Edges:    2,
	}
	c := caption.Caption{
		NodesColor: &caption.Channel{
			Label: "kind",
			Partition: &caption.PartitionCaption{
				Occurrences:  map[string]int{"lib": 2, "bin": 1},
				Missing:      true,
				MissingCount: 1,
				Palette:      map[string]string{"lib": "#ff0000"},
				MissingColor: "#999999",
			},
		},
		NodesSize: &caption.Channel{
			Label: "degree (dynamic)",
			Range: &caption.RangeCaption{Min: 1, Max: 3, Valid: true, MinSize: 2, MaxSize: 20},
		},
		EdgesColor: &caption.Channel{
			Label: "weight",
			Range: &caption.RangeCaption{
				Min:              0,
				Max:              1,
				Valid:            true,
				ColorScalePoints: []appearance.ColorScalePoint{{ScalePoint: 0, Color: "#000000"}, {ScalePoint: 1, Color: "#ffffff"}},
			},
		},
	}

	var buf bytes.Buffer
	PrintCaptionReport(&buf, info, c)
	out := buf.String()

	for _, want := range []string{
		"Appearance Engine - deps",
		"Graph: directed, 3 nodes, 2 edges",
		"node color: kind",
		"lib                      2 #ff0000",
		"N/A                      1 #999999",
		"node size: degree (dynamic)",
		"range: 1 .. 3",
		"sizes: 2 .. 20",
		"   0%  #000000",
		" 100%  #ffffff",
		"Summary: 1 of 3 channel(s) have items without a value",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report should contain %q:\n%s", want, out)
		}
	}

	if strings.Index(out, "lib") > strings.Index(out, "bin") {
		t.Error("partition rows should be ordered by count")
	}
}

func TestPrintCaptionReportWithoutChannels(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	PrintCaptionReport(&buf, engine.DatasetInfo{}, caption.Caption{})

	if !strings.Contains(buf.String(), "untitled") || !strings.Contains(buf.String(), "No ranking or partition channels") {
		t.Errorf("unexpected report:\n%s", buf.String())
	}
}
