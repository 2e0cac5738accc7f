// Package puzzle implements the evidence-combination, timeline and locked-clue
// mechanics. All of it is session-scoped and client-local: the server never
// treats puzzle progress as authoritative state, so nothing here touches the
// room row or the event bus.
package puzzle

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/katilkim/katilkim-server/app/modules/room/domain/casefile"
)

var (
	// ErrClueNotFound means the session's case has no clue with that id.
	ErrClueNotFound = errors.New("clue not found")
	// ErrClueNotLocked means the clue carries no code to unlock.
	ErrClueNotLocked = errors.New("clue is not locked")
	// ErrWrongCode means the submitted code does not open the clue.
	ErrWrongCode = errors.New("wrong code")
	// ErrTooManyAttempts throttles brute-forcing a lock code.
	ErrTooManyAttempts = errors.New("too many unlock attempts")
	// ErrSuspectNotFound means the case has no suspect with that id.
	ErrSuspectNotFound = errors.New("suspect not found")
	// ErrQuestionNotFound means the suspect has no such scripted question.
	ErrQuestionNotFound = errors.New("question not found")
)

// CombineOutcome classifies an evidence combination attempt.
type CombineOutcome string

const (
	// CombineRevealed means the pair matched and a new clue was derived.
	CombineRevealed CombineOutcome = "REVEALED"
	// CombineAlreadyDiscovered means the pair matched a combination this
	// session already made.
	CombineAlreadyDiscovered CombineOutcome = "ALREADY_DISCOVERED"
	// CombineNoMatch means the pair derives nothing.
	CombineNoMatch CombineOutcome = "NO_MATCH"
)

// CombineResult is the outcome of Combine plus the derived clue when the pair
// matched.
type CombineResult struct {
	Outcome CombineOutcome
	Clue    *casefile.Clue
}

// Session tracks one player's puzzle progress through a case. Sessions are
// independent; two detectives in the same room each hold their own.
type Session struct {
	c *casefile.Case

	mu             sync.Mutex
	discovered     map[string]bool
	unlocked       map[string]bool
	timelineSolved bool
	unlockLimiter  *rate.Limiter
}

// NewSession starts a fresh puzzle session over the given case. Unlock
// attempts refill at one per two seconds with a small initial burst, enough
// for honest typos and useless for brute-forcing a four-digit code.
func NewSession(c *casefile.Case) *Session {
	return &Session{
		c:             c,
		discovered:    make(map[string]bool),
		unlocked:      make(map[string]bool),
		unlockLimiter: rate.NewLimiter(rate.Every(2*time.Second), 5),
	}
}

// Combine attempts to derive a new clue from an unordered pair of clue ids.
func (s *Session) Combine(clueID1, clueID2 string) CombineResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.c.EvidenceCombinations {
		combo := &s.c.EvidenceCombinations[i]
		if !pairMatches(combo, clueID1, clueID2) {
			continue
		}
		if s.discovered[combo.ID] {
			clue := combo.ResultClue
			return CombineResult{Outcome: CombineAlreadyDiscovered, Clue: &clue}
		}
		s.discovered[combo.ID] = true
		clue := combo.ResultClue
		return CombineResult{Outcome: CombineRevealed, Clue: &clue}
	}
	return CombineResult{Outcome: CombineNoMatch}
}

func pairMatches(combo *casefile.EvidenceCombination, a, b string) bool {
	return (combo.ClueID1 == a && combo.ClueID2 == b) ||
		(combo.ClueID1 == b && combo.ClueID2 == a)
}

// DiscoveredClues returns the clues derived so far, in case order.
func (s *Session) DiscoveredClues() []casefile.Clue {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]casefile.Clue, 0, len(s.discovered))
	for i := range s.c.EvidenceCombinations {
		combo := &s.c.EvidenceCombinations[i]
		if s.discovered[combo.ID] {
			out = append(out, combo.ResultClue)
		}
	}
	return out
}

// CheckTimeline verifies a proposed ordering of timeline event ids. A correct
// submission latches the session as solved; once solved it stays solved no
// matter what is submitted afterwards.
func (s *Session) CheckTimeline(orderedEventIDs []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timelineSolved {
		return true
	}
	if len(orderedEventIDs) != len(s.c.TimelineEvents) {
		return false
	}
	for i, id := range orderedEventIDs {
		event := timelineEventByID(s.c, id)
		if event == nil || event.CorrectOrder != i+1 {
			return false
		}
	}
	s.timelineSolved = true
	return true
}

// TimelineSolved reports whether this session has latched the timeline.
func (s *Session) TimelineSolved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timelineSolved
}

func timelineEventByID(c *casefile.Case, id string) *casefile.TimelineEvent {
	for i := range c.TimelineEvents {
		if c.TimelineEvents[i].ID == id {
			return &c.TimelineEvents[i]
		}
	}
	return nil
}

// UnlockClue submits a code against a locked clue. On success the clue is
// recorded unlocked and returned with its revealed description in place.
// Re-unlocking an already open clue succeeds without consuming an attempt.
func (s *Session) UnlockClue(clueID, code string) (*casefile.Clue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clue := s.c.ClueByID(clueID)
	if clue == nil {
		return nil, ErrClueNotFound
	}
	if !clue.IsLocked {
		return nil, ErrClueNotLocked
	}
	if s.unlocked[clueID] {
		return revealedCopy(clue), nil
	}

	if !s.unlockLimiter.Allow() {
		return nil, ErrTooManyAttempts
	}
	if clue.LockedWithCode == "" || clue.LockedWithCode != code {
		return nil, ErrWrongCode
	}

	s.unlocked[clueID] = true
	return revealedCopy(clue), nil
}

// Interrogate asks a suspect one of their scripted questions and returns the
// canned response. Some answers unlock a clue as a side effect; the unlocked
// clue, if any, is returned alongside.
func (s *Session) Interrogate(suspectID, questionID string) (response string, unlocked *casefile.Clue, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	suspect := s.c.SuspectByID(suspectID)
	if suspect == nil {
		return "", nil, ErrSuspectNotFound
	}
	for _, q := range suspect.Dialogues {
		if q.ID != questionID {
			continue
		}
		if q.UnlocksClueID != "" {
			if clue := s.c.ClueByID(q.UnlocksClueID); clue != nil {
				s.unlocked[clue.ID] = true
				return q.Response, revealedCopy(clue), nil
			}
		}
		return q.Response, nil, nil
	}
	return "", nil, ErrQuestionNotFound
}

// Unlocked reports whether this session has opened the given clue.
func (s *Session) Unlocked(clueID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked[clueID]
}

func revealedCopy(clue *casefile.Clue) *casefile.Clue {
	cp := *clue
	cp.IsLocked = false
	if cp.Revealed != "" {
		cp.Description = cp.Revealed
	}
	return &cp
}
