package itemdata

import (
	"iter"

	"github.com/ritzau/appearance-engine/pkg/model"
)

// Merged exposes the static and dynamic halves of one item's data
type Merged struct {
	Static  model.ItemData `json:"static"`
	Dynamic model.ItemData `json:"dynamic"`
}

// Value returns the value addressed by the field reference.
// The second result is false when the field is absent ("undefined").
func (m Merged) Value(ref model.ItemDataField) (model.Scalar, bool) {
	data := m.Static
	if ref.Dynamic {
		data = m.Dynamic
	}
	// Indexing a nil map is fine and reports the field as absent
	v, ok := data[ref.Field]
	return v, ok
}

// GetFieldValue is the free-function form of Merged.Value
func GetFieldValue(entry Merged, ref model.ItemDataField) model.Scalar {
	v, _ := entry.Value(ref)
	return v
}

// Merge pairs static data with dynamic data. The result is keyed by the static ids;
// an id without dynamic data gets a nil Dynamic half.
func Merge(static, dynamic map[string]model.ItemData) map[string]Merged {
	merged := make(map[string]Merged, len(static))
	for id, data := range static {
		merged[id] = Merged{
			Static:  data,
			Dynamic: dynamic[id],
		}
	}
	return merged
}

// Visible yields the entries whose id is accepted by visible, in map order.
// Used to scope bounds computations to the filtered view.
func Visible(merged map[string]Merged, visible func(id string) bool) iter.Seq2[string, Merged] {
	return func(yield func(string, Merged) bool) {
		for id, entry := range merged {
			if !visible(id) {
				continue
			}
			if !yield(id, entry) {
				return
			}
		}
	}
}
