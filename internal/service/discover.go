package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekovaleva/trustdate/internal/genai"
	"github.com/ekovaleva/trustdate/internal/models"
)

// syntheticReport is the trust summary stamped on generated profiles.
const syntheticReport = "No public records of safety concern found. High trust score."

// Refill requests one batch of candidates from the generation
// collaborator and appends them to the discovery queue. It only runs
// when onboarding is completed and the queue is empty; refills never
// truncate existing items. The queue is in-memory only and is always
// empty right after a session restore.
func (s *Session) Refill(ctx context.Context) error {
	s.mu.Lock()
	if s.state.OnboardingStep != models.StepCompleted {
		s.mu.Unlock()
		return ErrOnboardingIncomplete
	}
	if len(s.queue) > 0 || s.refilling {
		s.mu.Unlock()
		return nil
	}
	s.refilling = true
	s.mu.Unlock()

	generated := s.gen.DiscoverProfiles(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refilling = false
	for _, g := range generated {
		s.queue = append(s.queue, s.decorate(g))
	}
	s.log.Info("discovery queue refilled", zap.Int("count", len(generated)))
	return nil
}

// decorate turns a raw generated profile into a full candidate: fresh
// id, seeded photo triple, synthetic trust score in [90,100) and
// probabilistic social handles. Callers must hold s.mu (for s.rand).
func (s *Session) decorate(g genai.GeneratedProfile) models.Profile {
	mainPhoto := fmt.Sprintf("https://picsum.photos/seed/%s/400/600", g.Name)
	lower := strings.ToLower(g.Name)

	links := &models.SocialLinks{}
	if s.rand.Float64() > 0.3 {
		links.Instagram = "@" + strings.ReplaceAll(lower, " ", "_")
	}
	if s.rand.Float64() > 0.5 {
		links.Twitter = "@" + strings.ReplaceAll(lower, " ", "")
	}
	if s.rand.Float64() > 0.7 {
		links.TikTok = "@" + lower + "_vibe"
	}

	return models.Profile{
		ID:       "profile-" + uuid.NewString(),
		Name:     g.Name,
		Age:      g.Age,
		Bio:      g.Bio,
		Location: g.Location,
		Photo:    mainPhoto,
		Photos: []string{
			mainPhoto,
			fmt.Sprintf("https://picsum.photos/seed/%s-2/400/600", g.Name),
			fmt.Sprintf("https://picsum.photos/seed/%s-3/400/600", g.Name),
		},
		VerificationScore:  90 + s.rand.Intn(10),
		VerificationReport: syntheticReport,
		Interests:          g.Interests,
		SocialLinks:        links,
	}
}

// Queue returns a snapshot of the discovery queue.
func (s *Session) Queue() []models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Profile, len(s.queue))
	copy(out, s.queue)
	return out
}

// Head returns the current candidate without consuming it.
func (s *Session) Head() (models.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return models.Profile{}, false
	}
	return s.queue[0], true
}

// Pass drops the head candidate without creating a match.
func (s *Session) Pass() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return ErrQueueEmpty
	}
	s.queue = s.queue[1:]
	return nil
}

// dropFromQueue removes the profile with the given id, if queued.
// Callers must hold s.mu.
func (s *Session) dropFromQueue(id string) {
	for i := range s.queue {
		if s.queue[i].ID == id {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}
