package render

import (
	"math"
	"unicode/utf8"

	"github.com/ritzau/appearance-engine/pkg/appearance"
	"github.com/ritzau/appearance-engine/pkg/model"
)

// Ellipsis is appended to truncated labels
const Ellipsis = "…"

// The functions below run once per visible label per frame. They must not
// allocate unless a label is actually truncated.

// ComputeLabelSize derives the on-screen label size of an item from its
// pre-zoom size (rawSize) and its current on-screen size
func ComputeLabelSize(setting appearance.LabelSize, itemType model.ItemType, rawSize, size float64) float64 {
	base := setting.Value
	if setting.Type == appearance.LabelSizeItem {
		base = rawSize * setting.SizeCorrelation / defaultSize(itemType)
	}

	zc := setting.ZoomCorrelation
	if zc <= 0 {
		return base
	}

	ratio := 1.0
	if rawSize > 0 {
		ratio = size / rawSize
	}
	if zc >= 1 {
		return base * ratio
	}
	return base * math.Pow(ratio, zc)
}

func defaultSize(itemType model.ItemType) float64 {
	if itemType == model.Edges {
		return appearance.DefaultEdgeSize
	}
	return appearance.DefaultNodeSize
}

// TruncateLabel cuts labels longer than the configured number of characters
// and appends Ellipsis. Highlighted items always show the full label.
func TruncateLabel(label string, ellipsis appearance.LabelEllipsis, highlighted bool) string {
	if !ellipsis.Enabled || highlighted || ellipsis.MaxLength <= 0 {
		return label
	}
	// A label with no more bytes than the limit cannot have more characters
	if len(label) <= ellipsis.MaxLength {
		return label
	}
	if utf8.RuneCountInString(label) <= ellipsis.MaxLength {
		return label
	}

	cut, n := 0, 0
	for i := range label {
		if n == ellipsis.MaxLength {
			cut = i
			break
		}
		n++
	}
	return label[:cut] + Ellipsis
}

// LabelDisplay is what the renderer needs to draw one label
type LabelDisplay struct {
	Text      string
	Size      float64
	Visible   bool
	Truncated bool
}

// DrawLabel combines label sizing and truncation for the renderer's label callback.
// Items without a label are not drawn.
func DrawLabel(
	setting appearance.LabelSize,
	ellipsis appearance.LabelEllipsis,
	itemType model.ItemType,
	label *string,
	rawSize, size float64,
	highlighted bool,
) LabelDisplay {
	if label == nil || *label == "" {
		return LabelDisplay{}
	}
	text := TruncateLabel(*label, ellipsis, highlighted)
	return LabelDisplay{
		Text:      text,
		Size:      ComputeLabelSize(setting, itemType, rawSize, size),
		Visible:   true,
		Truncated: len(text) != len(*label),
	}
}
