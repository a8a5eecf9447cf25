package service

import (
	"context"

	"github.com/ekovaleva/trustdate/internal/models"
)

// OpenChat makes the given match the active chat.
func (s *Session) OpenChat(matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.matchByID(matchID) == nil {
		return ErrMatchNotFound
	}
	s.activeChatID = matchID
	return nil
}

// CloseChat clears the active chat. Timers already scheduled against
// the match keep applying to it.
func (s *Session) CloseChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeChatID = ""
}

// ActiveChat returns the open match, if any.
func (s *Session) ActiveChat() (models.Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeChatID == "" {
		return models.Match{}, false
	}
	m := s.matchByID(s.activeChatID)
	if m == nil {
		return models.Match{}, false
	}
	return *m, true
}

// NeedsIcebreakers reports whether the chat deserves an icebreaker
// nudge: an empty history, or a conversation gone quiet (last message
// from self with more than two messages exchanged). A pure function of
// the history, recomputed on demand rather than stored, so it can
// re-trigger each time the condition holds.
func NeedsIcebreakers(m models.Match) bool {
	n := len(m.ChatHistory)
	if n == 0 {
		return true
	}
	return m.ChatHistory[n-1].Sender == models.SenderSelf && n > 2
}

// Icebreakers fetches three opener suggestions for a match from the
// generation collaborator. Collaborator failures resolve to templated
// suggestions inside the Generator, never to an error.
func (s *Session) Icebreakers(ctx context.Context, matchID string) ([]string, error) {
	s.mu.Lock()
	m := s.matchByID(matchID)
	if m == nil {
		s.mu.Unlock()
		return nil, ErrMatchNotFound
	}
	name, interests, bio := m.Profile.Name, m.Profile.Interests, m.Profile.Bio
	s.mu.Unlock()

	return s.gen.Icebreakers(ctx, name, interests, bio), nil
}

// TranslateMessage renders a chat message in the target language.
// Fail-open: the original text comes back when translation fails.
func (s *Session) TranslateMessage(ctx context.Context, text, targetLanguage string) string {
	return s.gen.Translate(ctx, text, targetLanguage)
}
