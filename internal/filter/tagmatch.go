package filter

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/llehouerou/mediapick/internal/library"
)

// matchTags narrows candidates to the items selected by the tag names.
//
// Without categories, TagMatchMode decides between all and any of the
// names. With categories, names are bucketed by category (unknown names go
// to the uncategorized bucket), each bucket is matched with its local mode,
// and buckets are combined with the global mode.
func matchTags(st *State, idx *library.Index, candidates *roaring.Bitmap, selected []string) *roaring.Bitmap {
	byTag := tagSets(idx.Items, candidates, selected)

	scheme, ok := idx.Scheme().(library.CategorizedTags)
	if !ok {
		sets := make([]*roaring.Bitmap, len(selected))
		for i, name := range selected {
			sets[i] = byTag[strings.ToLower(name)]
		}
		return combine(sets, st.TagMatchMode != MatchOr)
	}

	var order []string
	buckets := make(map[string][]*roaring.Bitmap)
	for _, name := range selected {
		cat := scheme.CategoryOf(name)
		if _, seen := buckets[cat]; !seen {
			order = append(order, cat)
		}
		buckets[cat] = append(buckets[cat], byTag[strings.ToLower(name)])
	}

	results := make([]*roaring.Bitmap, len(order))
	for i, cat := range order {
		results[i] = combine(buckets[cat], st.LocalMode(cat) == MatchAnd)
	}
	if len(results) == 1 {
		return results[0]
	}
	return combine(results, st.GlobalAnd())
}

// tagSets maps each lowercased selected name to the candidate slots
// carrying it. Every selected name has an entry, possibly empty.
func tagSets(items []library.Item, candidates *roaring.Bitmap, selected []string) map[string]*roaring.Bitmap {
	sets := make(map[string]*roaring.Bitmap, len(selected))
	for _, name := range selected {
		sets[strings.ToLower(name)] = roaring.New()
	}
	it := candidates.Iterator()
	for it.HasNext() {
		slot := it.Next()
		for _, t := range items[slot].Tags {
			if set, ok := sets[strings.ToLower(t)]; ok {
				set.Add(slot)
			}
		}
	}
	return sets
}

// combine intersects (and) or unions sets. The inputs are not modified.
func combine(sets []*roaring.Bitmap, and bool) *roaring.Bitmap {
	if len(sets) == 0 {
		return roaring.New()
	}
	out := sets[0].Clone()
	for _, s := range sets[1:] {
		if and {
			out.And(s)
		} else {
			out.Or(s)
		}
	}
	return out
}
