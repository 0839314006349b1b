package participation

import "sort"

// SortWaitlist orders waitlisted records first-come-first-served: by current
// position when present, falling back to registration time for records that
// have not been ranked yet.
func SortWaitlist(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.WaitlistPosition != 0 && b.WaitlistPosition != 0 && a.WaitlistPosition != b.WaitlistPosition {
			return a.WaitlistPosition < b.WaitlistPosition
		}
		if !a.RegisteredAt.Equal(b.RegisteredAt) {
			return a.RegisteredAt.Before(b.RegisteredAt)
		}
		return a.UserID < b.UserID
	})
}

// Rerank rewrites waitlist positions as a contiguous 1..N sequence over the
// supplied records, preserving their first-come-first-served order. It returns
// only the records whose position actually changed, so callers can persist the
// minimal write set atomically with the triggering transition.
func Rerank(records []Record) []Record {
	SortWaitlist(records)

	changed := make([]Record, 0, len(records))
	for i := range records {
		want := i + 1
		if records[i].WaitlistPosition != want {
			records[i].WaitlistPosition = want
			changed = append(changed, records[i])
		}
	}
	return changed
}

// ValidateContiguity reports whether the waitlist positions of the supplied
// records form exactly {1..N} with no gaps or duplicates.
func ValidateContiguity(records []Record) bool {
	seen := make(map[int]struct{}, len(records))
	for _, record := range records {
		if record.Status != StatusWaitlisted {
			return false
		}
		if record.WaitlistPosition < 1 || record.WaitlistPosition > len(records) {
			return false
		}
		if _, dup := seen[record.WaitlistPosition]; dup {
			return false
		}
		seen[record.WaitlistPosition] = struct{}{}
	}
	return true
}
