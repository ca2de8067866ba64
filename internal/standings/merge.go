package standings

import "maps"

// MergeInto combines two documents the way registration needs it: for every
// period, each member present in incoming overwrites or is inserted into a copy
// of existing, and members only in existing are kept untouched. Records are
// replaced whole, never merged field by field, so when both sides changed the
// same member the existing side's edit is lost. Channel bindings, post refs and
// removal markers follow the same right-biased union. Neither input is modified.
func MergeInto(existing, incoming RootStore) RootStore {
	merged := existing.Clone()
	for _, p := range Periods {
		dst := merged.period(p)
		for key, rec := range *incoming.period(p) {
			(*dst)[key] = rec
		}
	}
	maps.Copy(merged.Channels, incoming.Channels)
	maps.Copy(merged.Posts, incoming.Posts)
	maps.Copy(merged.Removed, incoming.Removed)
	merged.Normalize()
	return merged
}
