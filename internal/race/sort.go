package race

import "sort"

// SortByDatePlain orders races chronologically by their plain date.
// The sort is stable so races sharing a date keep their feed order.
func SortByDatePlain(races []Race) {
	sort.SliceStable(races, func(i, j int) bool {
		return races[i].DatePlain < races[j].DatePlain
	})
}

// Annotate returns copies of races tagged with the series they belong to
func Annotate(races []Race, seriesName, seriesKey string) []Race {
	out := make([]Race, len(races))
	for i, r := range races {
		r.Series = seriesName
		r.SeriesKey = seriesKey
		out[i] = r
	}
	return out
}

// Flatten merges already annotated per-series lists into one chronological list
func Flatten(lists ...[]Race) []Race {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	all := make([]Race, 0, total)
	for _, l := range lists {
		all = append(all, l...)
	}
	SortByDatePlain(all)
	return all
}
