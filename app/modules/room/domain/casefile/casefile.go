// Package casefile holds the immutable mystery content a room plays through:
// suspects, clues, timeline events, evidence combinations and the solution.
// The consensus engine only ever reads Solution.KillerID; everything else is
// consumed by the puzzle logic and the presentation layer.
package casefile

// Visibility tags a clue with the detective slot allowed to see it.
type Visibility string

const (
	VisibleToA    Visibility = "DETECTIVE_A"
	VisibleToB    Visibility = "DETECTIVE_B"
	VisibleToBoth Visibility = "BOTH"
)

// Question is a single interrogation prompt with its canned response.
// Some questions unlock a clue when asked.
type Question struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	Response      string `json:"response"`
	UnlocksClueID string `json:"unlocks_clue_id,omitempty"`
}

// Relationship links a suspect to another suspect.
type Relationship struct {
	TargetID    string `json:"target_id"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Suspect is one of the characters the detectives can accuse.
type Suspect struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Bio           string         `json:"bio"`
	DetailedBio   string         `json:"detailed_bio,omitempty"`
	Motive        string         `json:"motive,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
	Dialogues     []Question     `json:"dialogues,omitempty"`
}

// Clue is a piece of evidence. A locked clue hides its revealed description
// behind a numeric code until unlocked.
type Clue struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	VisibleTo      Visibility `json:"visible_to"`
	IsLocked       bool       `json:"is_locked"`
	LockedWithCode string     `json:"locked_with_code,omitempty"`
	Revealed       string     `json:"revealed,omitempty"`
	Type           string     `json:"type,omitempty"`
}

// TimelineEvent carries its ground-truth position (1-based) in CorrectOrder.
type TimelineEvent struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Time         string `json:"time"`
	Description  string `json:"description"`
	CorrectOrder int    `json:"correct_order"`
}

// EvidenceCombination maps an unordered pair of clue ids to a derived clue.
type EvidenceCombination struct {
	ID         string `json:"id"`
	ClueID1    string `json:"clue_id_1"`
	ClueID2    string `json:"clue_id_2"`
	ResultClue Clue   `json:"result_clue"`
}

// Solution names the true killer. Exactly one suspect is the killer.
type Solution struct {
	KillerID   string `json:"killer_id"`
	KillerName string `json:"killer_name"`
	Motive     string `json:"motive"`
}

// Case is the full content package for one mystery. It is immutable once
// attached to a room and JSON-serializable so custom cases can be stored as a
// JSONB attachment on the room row.
type Case struct {
	ID                   string                `json:"id"`
	Title                string                `json:"title"`
	Intro                string                `json:"intro"`
	Suspects             []Suspect             `json:"suspects"`
	Clues                []Clue                `json:"clues"`
	TimelineEvents       []TimelineEvent       `json:"timeline_events"`
	EvidenceCombinations []EvidenceCombination `json:"evidence_combinations"`
	Solution             Solution              `json:"solution"`
}

// SuspectByID returns the suspect with the given id, or nil.
func (c *Case) SuspectByID(id string) *Suspect {
	for i := range c.Suspects {
		if c.Suspects[i].ID == id {
			return &c.Suspects[i]
		}
	}
	return nil
}

// ClueByID returns the clue with the given id, or nil.
func (c *Case) ClueByID(id string) *Clue {
	for i := range c.Clues {
		if c.Clues[i].ID == id {
			return &c.Clues[i]
		}
	}
	return nil
}

// CluesVisibleTo returns the clues a detective slot can see, excluding the
// shared pool when shared is false.
func (c *Case) CluesVisibleTo(v Visibility) []Clue {
	out := make([]Clue, 0, len(c.Clues))
	for _, clue := range c.Clues {
		if clue.VisibleTo == v {
			out = append(out, clue)
		}
	}
	return out
}
