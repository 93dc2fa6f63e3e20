package scoring

import (
	"time"
)

// Scoring keeps the score of the running round and the tally of every
// round finished in this session.
type Scoring struct {
	// public
	CurrentScore int
	TotalScore   int
	Wins         int
	Losses       int
	TilesOpened  int
	// private
	history    ScoreHistory
	scoreTable map[string]int
}

// InitScoring creates an empty tally.
func InitScoring() *Scoring {
	return &Scoring{
		scoreTable: getScoreTable(),
	}
}

// BeginRound resets the running score for a new round.
func (s *Scoring) BeginRound(round string, at time.Time) {
	s.CurrentScore = 0
	s.TilesOpened = 0
	s.history.CurrentScore = &ScoreHistoryEntry{
		Round:     round,
		Timestamp: at.Format(time.RFC3339),
	}
}

// ScoreEvent updates the score based on a given game event.
func (s *Scoring) ScoreEvent(event string) {
	switch event {
	case "tileOpened":
		s.TilesOpened++
	case "win":
		s.Wins++
	case "loss":
		s.Losses++
	}
	s.CurrentScore += s.scoreTable[event]

	if s.history.CurrentScore != nil {
		s.history.CurrentScore.Score = s.CurrentScore
	}
}

// AddTimeBonus rewards the seconds left on the clock at a win.
func (s *Scoring) AddTimeBonus(seconds int) {
	bonus := seconds * s.scoreTable["secondLeft"]
	s.CurrentScore += bonus
	if s.history.CurrentScore != nil {
		s.history.CurrentScore.Score = s.CurrentScore
	}
}

// EndRound files the running round into the history. Calling it twice for
// the same round has no further effect.
func (s *Scoring) EndRound(outcome string, elapsed time.Duration) {
	entry := s.history.CurrentScore
	if entry == nil || entry.Outcome != "" {
		return
	}
	entry.Outcome = outcome
	entry.Seconds = int(elapsed / time.Second)
	entry.Score = s.CurrentScore
	s.TotalScore += s.CurrentScore
	s.history.add(*entry)
}

// Rounds is the number of finished rounds.
func (s *Scoring) Rounds() int {
	return len(s.history.Entries)
}

// Accessor methods for score history, delegating to the history object.
func (s *Scoring) GetHighScore() *ScoreHistoryEntry {
	return s.history.GetHighScoreEntry()
}

func (s *Scoring) GotHighScore() bool {
	return s.history.GotHighScore()
}

func (s *Scoring) GetNScoreEntries(n int) []ScoreHistoryEntry {
	return s.history.GetNScoreEntries(n)
}

// getScoreTable returns the predefined values for different scoring events.
func getScoreTable() map[string]int {
	return map[string]int{
		"tileOpened": 10,
		"win":        1000,
		"loss":       0,
		"secondLeft": 10,
	}
}
