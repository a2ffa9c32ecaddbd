package domain

import "sort"

// Rank folds participant rows into the deduplicated scoreboard. Rows sharing
// a name (exact, case-sensitive match) collapse into one entry holding the
// maximum score seen for that name; a participant who rejoined under the same
// name counts once, at their best. The result is sorted descending by score
// with a stable sort, so ties keep first-encountered order.
//
// Every place a leaderboard is rendered (live updates and the final summary)
// must go through this one fold.
func Rank(participants []Participant) []LeaderboardEntry {
	byName := make(map[string]int, len(participants))
	entries := make([]LeaderboardEntry, 0, len(participants))
	for _, p := range participants {
		if i, ok := byName[p.Name]; ok {
			if p.Score > entries[i].Score {
				entries[i].Score = p.Score
			}
			continue
		}
		byName[p.Name] = len(entries)
		entries = append(entries, LeaderboardEntry{Name: p.Name, Score: p.Score})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

// Winner returns the rank-0 entry, or nil for an empty leaderboard.
func Winner(entries []LeaderboardEntry) *LeaderboardEntry {
	if len(entries) == 0 {
		return nil
	}
	winner := entries[0]
	return &winner
}
