package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ekovaleva/trustdate/internal/genai"
	"github.com/ekovaleva/trustdate/internal/models"
)

// Like promotes a queued profile into a match: the profile is copied out
// of the discovery queue, a Match is prepended to the session (newest
// first) and the candidate is dropped from the queue. An optional opener
// becomes the first message and counts against the messaging quota
// immediately. A celebration event fires now; the chat auto-opens after
// a fixed delay through a non-cancellable timer.
func (s *Session) Like(ctx context.Context, profileID, opener string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var profile *models.Profile
	for i := range s.queue {
		if s.queue[i].ID == profileID {
			profile = &s.queue[i]
			break
		}
	}
	if profile == nil {
		return ErrProfileNotFound
	}

	match := models.Match{
		Profile:     *profile,
		ChatHistory: []models.Message{},
	}
	if opener != "" {
		match.MessagesSent = 1
		match.ChatHistory = append(match.ChatHistory, models.Message{
			Sender:    models.SenderSelf,
			Text:      opener,
			Timestamp: s.now().UnixMilli(),
		})
	}

	s.state.Matches = append([]models.Match{match}, s.state.Matches...)
	// dropFromQueue shifts the backing array, so profile must not be
	// dereferenced past this point; use the copy in match instead.
	s.dropFromQueue(profileID)
	s.saveSession(ctx)

	if s.state.NotificationSettings.Matches && s.notifier != nil {
		s.notifier.Send("It's a Match!", fmt.Sprintf("You are now connected with %s.", match.Profile.Name))
	}
	s.emit(Event{Kind: EventMatchCelebration, MatchID: profileID, Profile: match.Profile})

	s.sched.AfterFunc(celebrationDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.activeChatID = profileID
		s.emit(Event{Kind: EventChatOpened, MatchID: profileID})
	})
	return nil
}

// MessageLocked reports whether the caller must show the unlock flow
// before the next send. The ledger itself does not reject over-quota
// sends; this gate is the caller's responsibility.
func (s *Session) MessageLocked(matchID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.matchByID(matchID)
	if m == nil {
		return false
	}
	return m.MessagesSent >= FreeQuota && !m.IsUnlimited
}

// SendMessage appends a self message to the open chat and schedules the
// simulated counterpart reply. It is a silent no-op when matchID does
// not resolve to the open chat. The reply timer is fire-and-forget: it
// lands on the match even if the chat is closed before it fires.
func (s *Session) SendMessage(ctx context.Context, matchID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeChatID != matchID {
		return
	}
	m := s.matchByID(matchID)
	if m == nil {
		return
	}

	m.ChatHistory = append(m.ChatHistory, models.Message{
		Sender:    models.SenderSelf,
		Text:      text,
		Timestamp: s.now().UnixMilli(),
	})
	if !m.IsUnlimited {
		m.MessagesSent++
	}
	m.IsTyping = true
	s.saveSession(ctx)

	s.sched.AfterFunc(replyDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		m := s.matchByID(matchID)
		if m == nil {
			return
		}
		m.ChatHistory = append(m.ChatHistory, models.Message{
			Sender:    models.SenderCounterpart,
			Text:      replyText,
			Timestamp: s.now().UnixMilli(),
		})
		m.IsTyping = false
		s.saveSession(ctx)
		s.emit(Event{Kind: EventIncomingMessage, MatchID: matchID})
	})
}

// PlaceCall starts a simulated call on the open chat. Without an open
// chat it fails with ErrNoActiveMatch; at quota it signals
// ErrPaywallRequired and changes no state.
func (s *Session) PlaceCall(ctx context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeChatID == "" || s.activeChatID != matchID {
		return ErrNoActiveMatch
	}
	m := s.matchByID(matchID)
	if m == nil {
		return ErrNoActiveMatch
	}
	if !m.IsUnlimited && m.CallsMade >= FreeQuota {
		return ErrPaywallRequired
	}
	if !m.IsUnlimited {
		m.CallsMade++
	}
	s.saveSession(ctx)
	return nil
}

// Unlock lifts the free-tier quota for one match and records the paid
// unlock in the admin ledger. Re-unlocking an already-unlimited match is
// a safe no-op and must not append a second transaction.
func (s *Session) Unlock(ctx context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.matchByID(matchID)
	if m == nil {
		return ErrMatchNotFound
	}
	if m.IsUnlimited {
		return nil
	}

	m.IsUnlimited = true
	s.recordRevenue(UnlockPrice, m.Profile.Name, models.TxTextUnlock)
	s.saveSession(ctx)
	s.saveAdmin(ctx)
	return nil
}

// Report files a trust-and-safety report against a profile and drops it
// from the discovery queue if it is queued. Matches are never touched:
// ledger entries are historical and survive the removal of their
// subject.
func (s *Session) Report(ctx context.Context, profile models.Profile, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrEmptyReason
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reporter := "Anonymous"
	if s.state.Profile != nil {
		reporter = s.state.Profile.Name
	}
	s.admin.Reports = append([]models.Report{{
		ID:                  newID(),
		ReportedProfileID:   profile.ID,
		ReportedProfileName: profile.Name,
		ReporterName:        reporter,
		Reason:              reason,
		Timestamp:           s.now().UnixMilli(),
	}}, s.admin.Reports...)

	s.dropFromQueue(profile.ID)
	s.saveAdmin(ctx)
	return nil
}

// UpgradeMembership flips the member flag and records the membership
// fee. Upgrading an existing member is a no-op.
func (s *Session) UpgradeMembership(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsMember {
		return nil
	}
	label := "User"
	if s.state.Profile != nil {
		label = s.state.Profile.Name
	}
	s.state.IsMember = true
	s.recordRevenue(MembershipPrice, label, models.TxMembership)
	s.saveSession(ctx)
	s.saveAdmin(ctx)
	return nil
}

// GlobalSearch runs a paid deep background check on an arbitrary name.
// Members only; each search is charged before the collaborator call.
func (s *Session) GlobalSearch(ctx context.Context, name, location string) (genai.CheckResult, error) {
	s.mu.Lock()
	if !s.state.IsMember {
		s.mu.Unlock()
		return genai.CheckResult{}, ErrMembershipRequired
	}
	s.recordRevenue(GlobalSearchPrice, "Search: "+name, models.TxGlobalSearchCheck)
	s.saveAdmin(ctx)
	s.mu.Unlock()

	return s.gen.BackgroundCheck(ctx, name, location), nil
}
