// Package service implements the client-local session state machine:
// onboarding progression, the discovery queue, the match and interaction
// ledger with its free-tier quotas, chat simulation and the admin
// revenue ledger. A single Session owns both persisted states and writes
// them through after every observable mutation.
package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ekovaleva/trustdate/internal/genai"
	"github.com/ekovaleva/trustdate/internal/models"
	"github.com/ekovaleva/trustdate/internal/store"
)

// Tunables of the interaction model. Delays and amounts are fixed by
// the product, not configurable.
const (
	// FreeQuota is the free-tier ceiling for messages and calls,
	// tracked independently per match.
	FreeQuota = 3
	// PassScore is the minimum background-check score that verifies
	// an identity.
	PassScore = 70

	// MembershipPrice is charged once for the membership upgrade.
	MembershipPrice = 1.0
	// UnlockPrice is charged per match to lift its quota.
	UnlockPrice = 1.0
	// GlobalSearchPrice is charged per global background search.
	GlobalSearchPrice = 2.0

	celebrationDelay = 2500 * time.Millisecond
	replyDelay       = 1500 * time.Millisecond

	replyText = "Verified Match: Looking forward to our chat!"
)

// Generator is the generative-content collaborator boundary.
type Generator interface {
	// BackgroundCheck always yields a result; collaborator failures map
	// to a deterministic fallback inside the implementation.
	BackgroundCheck(ctx context.Context, name, location string) genai.CheckResult
	// DiscoverProfiles yields one batch of synthetic profiles, empty on
	// failure.
	DiscoverProfiles(ctx context.Context) []genai.GeneratedProfile
	// Icebreakers yields three opener suggestions.
	Icebreakers(ctx context.Context, name string, interests []string, bio string) []string
	// Translate is fail-open: failures return the input text.
	Translate(ctx context.Context, text, targetLanguage string) string
}

// Notifier delivers user-facing notifications.
type Notifier interface {
	Send(title, body string)
}

// EventKind labels a transient UI event emitted by the session.
type EventKind string

const (
	// EventMatchCelebration fires when a like creates a match.
	EventMatchCelebration EventKind = "match_celebration"
	// EventChatOpened fires when a chat is auto-opened after the
	// celebration delay.
	EventChatOpened EventKind = "chat_opened"
	// EventIncomingMessage fires when a simulated reply lands.
	EventIncomingMessage EventKind = "incoming_message"
)

// Event is one transient UI event. Events carry ids, not pointers into
// session state.
type Event struct {
	Kind    EventKind
	MatchID string
	Profile models.Profile
}

// Deps bundles the collaborators a Session needs.
type Deps struct {
	Sessions  *store.SessionStore
	Admin     *store.AdminStore
	Generator Generator
	Notifier  Notifier
	Scheduler Scheduler
	Logger    *zap.Logger
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
	// Rand drives synthetic decoration; defaults to a time-seeded source.
	Rand *rand.Rand
}

// Session is the top-level controller. It is the sole owner of the
// SessionState and AdminSettings and is responsible for persisting them
// after every mutation. All methods are safe for use from timer
// callbacks; mutations are serialized by one mutex, so two timers racing
// on the same match append in arrival order and never interleave
// destructively.
type Session struct {
	mu           sync.Mutex
	state        models.SessionState
	admin        models.AdminSettings
	verification models.VerificationStatus
	queue        []models.Profile
	activeChatID string
	refilling    bool

	sessions *store.SessionStore
	admins   *store.AdminStore
	gen      Generator
	notifier Notifier
	sched    Scheduler
	now      func() time.Time
	rand     *rand.Rand
	log      *zap.Logger
	events   chan Event
}

// New loads both persisted states and returns a ready Session. The
// discovery queue always starts empty after a restore.
func New(ctx context.Context, deps Deps) *Session {
	if deps.Scheduler == nil {
		deps.Scheduler = TimerScheduler{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Session{
		state:        deps.Sessions.Load(ctx),
		admin:        deps.Admin.Load(ctx),
		verification: models.VerificationIdle,
		sessions:     deps.Sessions,
		admins:       deps.Admin,
		gen:          deps.Generator,
		notifier:     deps.Notifier,
		sched:        deps.Scheduler,
		now:          deps.Now,
		rand:         deps.Rand,
		log:          deps.Logger,
		events:       make(chan Event, 16),
	}
}

// Events exposes the transient UI event stream. Events are dropped,
// not blocked on, when nobody is listening.
func (s *Session) Events() <-chan Event {
	return s.events
}

func (s *Session) emit(e Event) {
	select {
	case s.events <- e:
	default:
		s.log.Debug("event dropped", zap.String("kind", string(e.Kind)))
	}
}

// State returns a snapshot of the current session state.
func (s *Session) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Admin returns a snapshot of the admin ledger.
func (s *Session) Admin() models.AdminSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admin
}

// VerificationStatus returns the transient background-check status.
func (s *Session) VerificationStatus() models.VerificationStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verification
}

// SetTheme switches between "light" and "dark".
func (s *Session) SetTheme(ctx context.Context, theme string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Theme = theme
	s.saveSession(ctx)
}

// SetNotificationSettings replaces the notification sub-record.
func (s *Session) SetNotificationSettings(ctx context.Context, ns models.NotificationSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.NotificationSettings = ns
	s.saveSession(ctx)
}

// saveSession writes the session blob through. A persistence error is
// logged, never surfaced: losing one write must not break the session.
// Callers must hold s.mu.
func (s *Session) saveSession(ctx context.Context) {
	if err := s.sessions.Save(ctx, s.state); err != nil {
		s.log.Error("failed to persist session state", zap.Error(err))
	}
}

// saveAdmin writes the admin blob through. Callers must hold s.mu.
func (s *Session) saveAdmin(ctx context.Context) {
	if err := s.admins.Save(ctx, s.admin); err != nil {
		s.log.Error("failed to persist admin settings", zap.Error(err))
	}
}

// matchByID returns the match with the given profile id, or nil.
// Callers must hold s.mu.
func (s *Session) matchByID(id string) *models.Match {
	for i := range s.state.Matches {
		if s.state.Matches[i].Profile.ID == id {
			return &s.state.Matches[i]
		}
	}
	return nil
}
