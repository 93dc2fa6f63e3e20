package scoring

import (
	"sort"
)

// ScoreHistory holds the finished rounds of a session and the round being
// played.
type ScoreHistory struct {
	Entries        []ScoreHistoryEntry
	HighScoreEntry *ScoreHistoryEntry
	CurrentScore   *ScoreHistoryEntry
}

// ScoreHistoryEntry represents a single finished (or running) round.
type ScoreHistoryEntry struct {
	Round     string
	Score     int
	Outcome   string
	Seconds   int
	Timestamp string
}

func (sh *ScoreHistory) add(entry ScoreHistoryEntry) {
	sh.Entries = append(sh.Entries, entry)
	if sh.HighScoreEntry == nil || entry.Score > sh.HighScoreEntry.Score {
		high := entry
		sh.HighScoreEntry = &high
	}
}

// GetHighScoreEntry returns the highest score entry so far.
func (sh ScoreHistory) GetHighScoreEntry() *ScoreHistoryEntry {
	return sh.HighScoreEntry
}

// GetNScoreEntries returns the top N entries, best score first; ties go to
// the faster round.
func (sh ScoreHistory) GetNScoreEntries(n int) []ScoreHistoryEntry {
	// Make a copy to avoid modifying the original slice.
	entriesCopy := make([]ScoreHistoryEntry, len(sh.Entries))
	copy(entriesCopy, sh.Entries)

	sort.SliceStable(entriesCopy, func(i, j int) bool {
		if entriesCopy[i].Score != entriesCopy[j].Score {
			return entriesCopy[i].Score > entriesCopy[j].Score
		}
		return entriesCopy[i].Seconds < entriesCopy[j].Seconds
	})

	if len(entriesCopy) < n {
		return entriesCopy
	}
	return entriesCopy[:n]
}

// GotHighScore checks if the current round's score matches or beats the
// best finished round.
func (sh ScoreHistory) GotHighScore() bool {
	if sh.HighScoreEntry == nil || sh.CurrentScore == nil {
		// If there's no high score or no current score, it's vacuously a "high score".
		return true
	}
	return sh.CurrentScore.Score >= sh.HighScoreEntry.Score
}
