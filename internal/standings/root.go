package standings

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"
)

// NewRootStore returns the default document: every period present and empty.
func NewRootStore() RootStore {
	return RootStore{
		Daily:    PeriodStore{},
		Weekly:   PeriodStore{},
		Season:   PeriodStore{},
		Lifetime: PeriodStore{},
		Channels: map[Period]string{},
		Posts:    map[Period]PostRef{},
		Removed:  map[string]int64{},
	}
}

// Decode parses a persisted document and normalizes it.
func Decode(data []byte) (RootStore, error) {
	var root RootStore
	if err := json.Unmarshal(data, &root); err != nil {
		return RootStore{}, fmt.Errorf("failed to decode store document: %w", err)
	}
	root.Normalize()
	return root, nil
}

// Encode renders the document in its persisted JSON shape.
func Encode(root RootStore) ([]byte, error) {
	return json.MarshalIndent(root, "", "    ")
}

// Normalize makes sure every period and map is present, every record is fully
// shaped, and bindings under unknown period names are dropped.
func (r *RootStore) Normalize() {
	for _, p := range Periods {
		ref := r.period(p)
		if *ref == nil {
			*ref = PeriodStore{}
		}
		for key, rec := range *ref {
			rec.Stats = rec.Stats.Normalize()
			(*ref)[key] = rec
		}
	}
	if r.Channels == nil {
		r.Channels = map[Period]string{}
	}
	if r.Posts == nil {
		r.Posts = map[Period]PostRef{}
	}
	if r.Removed == nil {
		r.Removed = map[string]int64{}
	}
	maps.DeleteFunc(r.Channels, func(p Period, channel string) bool { return !p.Valid() || channel == "" })
	maps.DeleteFunc(r.Posts, func(p Period, ref PostRef) bool { return !p.Valid() || ref.TS == "" })
}

func (r *RootStore) period(p Period) *PeriodStore {
	switch p {
	case Daily:
		return &r.Daily
	case Weekly:
		return &r.Weekly
	case Season:
		return &r.Season
	case Lifetime:
		return &r.Lifetime
	}
	panic(fmt.Sprintf("standings: unknown period %q", p))
}

// Period returns the records of one period. The returned map belongs to r.
func (r RootStore) Period(p Period) PeriodStore {
	if !p.Valid() {
		return nil
	}
	return *r.period(p)
}

// Clone returns a deep copy that shares no maps with r.
func (r RootStore) Clone() RootStore {
	out := RootStore{
		Channels: maps.Clone(r.Channels),
		Posts:    maps.Clone(r.Posts),
		Removed:  maps.Clone(r.Removed),
	}
	for _, p := range Periods {
		*out.period(p) = maps.Clone(*r.period(p))
	}
	out.Normalize()
	return out
}

// Lookup returns the member's record in a period.
func (r RootStore) Lookup(p Period, key string) (PlayerRecord, error) {
	if !p.Valid() {
		return PlayerRecord{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
	}
	rec, ok := r.Period(p)[key]
	if !ok {
		return PlayerRecord{}, ErrMemberNotFound
	}
	return rec, nil
}

// Register writes a fresh record for the member into every period.
func (r *RootStore) Register(key, username string) {
	for _, p := range Periods {
		(*r.period(p))[key] = PlayerRecord{Username: username, Stats: EmptyStats()}
	}
	delete(r.Removed, key)
}

// Remove deletes the member from every period. It reports whether the member
// was present anywhere.
func (r *RootStore) Remove(key string, at time.Time) bool {
	found := false
	for _, p := range Periods {
		ref := r.period(p)
		if _, ok := (*ref)[key]; ok {
			found = true
			delete(*ref, key)
		}
	}
	if r.Removed == nil {
		r.Removed = map[string]int64{}
	}
	r.Removed[key] = at.Unix()
	return found
}

// SetStats replaces the member's stats in one period. Members that are not
// registered in that period are left alone.
func (r *RootStore) SetStats(p Period, key string, stats Stats) bool {
	ref := r.period(p)
	rec, ok := (*ref)[key]
	if !ok {
		return false
	}
	rec.Stats = stats.Normalize()
	(*ref)[key] = rec
	return true
}

// PruneRemoved drops every member listed in Removed from all periods.
func (r *RootStore) PruneRemoved() {
	for key := range r.Removed {
		for _, p := range Periods {
			delete(*r.period(p), key)
		}
	}
}

// Members returns the sorted keys registered in any period.
func (r RootStore) Members() []string {
	seen := map[string]struct{}{}
	for _, p := range Periods {
		for key := range *r.period(p) {
			seen[key] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Usernames maps each registered member to its tracker username, taken from
// the lifetime period and falling back to any other period.
func (r RootStore) Usernames() map[string]string {
	out := map[string]string{}
	for i := len(Periods) - 1; i >= 0; i-- {
		for key, rec := range *r.period(Periods[i]) {
			if _, ok := out[key]; !ok {
				out[key] = rec.Username
			}
		}
	}
	return out
}
