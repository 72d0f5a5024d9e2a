package matchers

// SegmentRef locates one segment of one episode.
type SegmentRef struct {
	Ep  int
	Seg int
}

func (a SegmentRef) less(b SegmentRef) bool {
	if a.Ep != b.Ep {
		return a.Ep < b.Ep
	}
	return a.Seg < b.Seg
}

// appendRef appends ref unless it equals the last element. Postings are
// built in (episode, segment) order, so this keeps them deduplicated.
func appendRef(list []SegmentRef, ref SegmentRef) []SegmentRef {
	if n := len(list); n > 0 && list[n-1] == ref {
		return list
	}
	return append(list, ref)
}

// intersectRefs returns the refs present in both sorted lists.
func intersectRefs(a, b []SegmentRef) []SegmentRef {
	out := make([]SegmentRef, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i].less(b[j]):
			i++
		default:
			j++
		}
	}
	return out
}

// unionRefs merges two sorted, deduplicated lists.
func unionRefs(a, b []SegmentRef) []SegmentRef {
	out := make([]SegmentRef, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i].less(b[j]):
			out = append(out, a[i])
			i++
		default:
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// episodesOf returns the distinct episodes of a sorted ref list.
func episodesOf(refs []SegmentRef) []int {
	var eps []int
	for _, ref := range refs {
		if n := len(eps); n == 0 || eps[n-1] != ref.Ep {
			eps = append(eps, ref.Ep)
		}
	}
	return eps
}

// intersectInts returns the values present in both sorted lists.
func intersectInts(a, b []int) []int {
	out := make([]int, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}
