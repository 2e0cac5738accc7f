// Package chat validates room chat messages. The rules are pure functions
// over the message text plus a little per-sender history; the package has no
// coupling to room state, storage or the bus. Both the send and the receive
// side run the same validation, so a client that skips the check still cannot
// get a bad message rendered for anyone else.
package chat

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"
)

var (
	// ErrLinkNotAllowed rejects messages containing URLs.
	ErrLinkNotAllowed = errors.New("links are not allowed")
	// ErrProfanity rejects messages containing blocklisted words.
	ErrProfanity = errors.New("message contains inappropriate content")
	// ErrRepeatedCharacters rejects runs of five or more identical characters.
	ErrRepeatedCharacters = errors.New("message contains repeated character spam")
	// ErrDuplicateMessage rejects resending the identical message within the
	// duplicate window.
	ErrDuplicateMessage = errors.New("identical message sent too soon")
	// ErrMuted rejects messages while a flood mute is in effect.
	ErrMuted = errors.New("sender is muted for flooding")
)

const (
	// duplicateWindow is how long an identical resend stays blocked.
	duplicateWindow = 5 * time.Second
	// floodWindow and floodLimit define the rate that triggers a mute.
	floodWindow = 5 * time.Second
	floodLimit  = 5
	// muteDuration is how long a flooding sender stays silenced.
	muteDuration = 30 * time.Second
	// repeatRunLimit is the longest allowed run of one character.
	repeatRunLimit = 4
)

var urlPattern = regexp.MustCompile(`(?i)(https?://\S+)|(www\.\S+)|([a-z0-9]+\.(com|net|org|io|gov|edu))`)

// defaultBlocklist is matched word-by-word after lowercasing; strict entries
// are additionally matched as substrings.
var defaultBlocklist = []string{
	"fuck", "shit", "bitch", "asshole", "bastard", "cunt", "dick",
	"moron", "idiot", "retard", "whore", "slut",
}

var strictBlocklist = []string{"fuck", "cunt"}

// LastMessage is the sender's previous accepted message.
type LastMessage struct {
	Content string
	SentAt  time.Time
}

// Validate checks a single message against the content rules. The flood rule
// lives on Session because it needs send history.
func Validate(text string, last *LastMessage) error {
	return validateAt(text, last, time.Now())
}

func validateAt(text string, last *LastMessage, now time.Time) error {
	lower := strings.ToLower(text)

	if urlPattern.MatchString(lower) {
		return ErrLinkNotAllowed
	}

	if containsProfanity(lower) {
		return ErrProfanity
	}

	if longestRun(lower) > repeatRunLimit {
		return ErrRepeatedCharacters
	}

	if last != nil && last.Content == text && now.Sub(last.SentAt) < duplicateWindow {
		return ErrDuplicateMessage
	}

	return nil
}

func containsProfanity(lower string) bool {
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(",!.?", r)
	})
	for _, word := range words {
		for _, bad := range defaultBlocklist {
			if word == bad {
				return true
			}
		}
	}
	for _, bad := range strictBlocklist {
		if strings.Contains(lower, bad) {
			return true
		}
	}
	return false
}

// longestRun returns the length of the longest run of one rune.
func longestRun(s string) int {
	var longest, run int
	var prev rune
	for i, r := range s {
		if i == 0 || r != prev {
			run = 1
			prev = r
		} else {
			run++
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// Session tracks one sender's chat history: the last accepted message for the
// duplicate rule and the recent send times for the flood rule. Not safe for
// concurrent use; each sender owns their session.
type Session struct {
	last       *LastMessage
	sentAt     []time.Time
	mutedUntil time.Time

	now func() time.Time
}

// NewSession creates a session for one sender.
func NewSession() *Session {
	return &Session{now: time.Now}
}

// Submit validates a message against all rules including flooding, and on
// acceptance records it in the history. Sending more than the flood limit
// inside the window mutes the sender for muteDuration.
func (s *Session) Submit(text string) error {
	now := s.now()

	if now.Before(s.mutedUntil) {
		return ErrMuted
	}

	if err := validateAt(text, s.last, now); err != nil {
		return err
	}

	recent := s.sentAt[:0]
	for _, t := range s.sentAt {
		if now.Sub(t) < floodWindow {
			recent = append(recent, t)
		}
	}
	if len(recent) >= floodLimit {
		s.mutedUntil = now.Add(muteDuration)
		s.sentAt = nil
		return ErrMuted
	}
	s.sentAt = append(recent, now)

	s.last = &LastMessage{Content: text, SentAt: now}
	return nil
}

// MutedUntil reports when the current mute ends; zero when not muted.
func (s *Session) MutedUntil() time.Time {
	return s.mutedUntil
}
