package reconcile

import "sort"

// Partition carries the block references of already synced entries forward and
// pops their keys from ix. Keys left in ix afterwards are reported as stale.
func Partition(entries []Entry, ix *Index) Diff {
	var d Diff
	for i := range entries {
		if ref, ok := ix.Pop(entries[i].Key); ok && ref != "" {
			entries[i].BlockID = ref
			entries[i].RecordID, _ = ix.Record(ref)
			d.Matched++
			continue
		}
		entries[i].BlockID = ""
		entries[i].RecordID = ""
		d.New++
	}
	d.Stale = ix.Stale()
	return d
}

// SortEntries orders entries by chapter, then by range start. The sort is
// stable so entries with equal positions keep their source order.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ChapterUID != entries[j].ChapterUID {
			return entries[i].ChapterUID < entries[j].ChapterUID
		}
		return entries[i].RangeStart() < entries[j].RangeStart()
	})
}

// BuildPlan interleaves chapter headers with sorted entries. Entries are
// grouped by chapter in first-appearance order; each group is preceded by its
// chapter header when the chapter table has one. Headers reuse their synced
// reference from chapterIx, which keeps only the stale chapters afterwards.
// Without a chapter table the entries are the plan.
func BuildPlan(sorted []Entry, chapters []Entry, chapterIx *Index) ([]Entry, Diff) {
	var d Diff
	if len(chapters) == 0 {
		return sorted, d
	}
	if chapterIx == nil {
		chapterIx = NewIndex()
	}

	table := make(map[int64]Entry, len(chapters))
	for _, ch := range chapters {
		table[ch.ChapterUID] = ch
	}

	var (
		order  []int64
		groups = map[int64][]Entry{}
	)
	for _, e := range sorted {
		if _, ok := groups[e.ChapterUID]; !ok {
			order = append(order, e.ChapterUID)
		}
		groups[e.ChapterUID] = append(groups[e.ChapterUID], e)
	}

	plan := make([]Entry, 0, len(sorted)+len(order))
	for _, uid := range order {
		if ch, ok := table[uid]; ok {
			ch.BlockID, ch.RecordID = "", ""
			if ref, ok := chapterIx.Pop(ch.Key); ok && ref != "" {
				ch.BlockID = ref
				ch.RecordID, _ = chapterIx.Record(ref)
				d.Matched++
			} else {
				d.New++
			}
			plan = append(plan, ch)
		}
		plan = append(plan, groups[uid]...)
	}
	d.Stale = chapterIx.Stale()
	return plan, d
}
