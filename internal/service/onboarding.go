package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ekovaleva/trustdate/internal/models"
)

// Login records the chosen login method and advances onboarding to the
// identity step. The method itself ("google", "apple") is not stored;
// the prototype has no real accounts.
func (s *Session) Login(ctx context.Context, method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.OnboardingStep != models.StepLogin {
		return ErrInvalidStep
	}
	s.log.Info("login method chosen", zap.String("method", method))
	s.state.OnboardingStep = models.StepIdentity
	s.saveSession(ctx)
	return nil
}

// SubmitIdentity runs the background check for the submitted identity
// and advances onboarding according to the score. The check collaborator
// never fails from this machine's point of view: failures are mapped to
// a deterministic score inside the Generator, so a transition always
// happens. A score below PassScore returns the user to the identity
// step with the candidate profile discarded.
func (s *Session) SubmitIdentity(ctx context.Context, name, location string, age int) (models.VerificationStatus, error) {
	s.mu.Lock()
	if s.state.OnboardingStep != models.StepIdentity {
		s.mu.Unlock()
		return s.verification, ErrInvalidStep
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(location) == "" || age <= 0 {
		s.mu.Unlock()
		return s.verification, ErrIdentityIncomplete
	}
	s.state.OnboardingStep = models.StepVerifying
	s.verification = models.VerificationPending
	s.saveSession(ctx)
	s.mu.Unlock()

	// Blocking collaborator call, outside the lock so timers keep firing.
	result := s.gen.BackgroundCheck(ctx, name, location)

	s.mu.Lock()
	defer s.mu.Unlock()

	if result.Score >= PassScore {
		s.state.IsVerified = true
		s.state.OnboardingStep = models.StepProfileBuilder
		s.state.Profile = &models.Profile{
			ID:                 "me",
			Name:               name,
			Age:                age,
			Location:           location,
			VerificationScore:  result.Score,
			VerificationReport: result.Summary,
			Interests:          []string{},
			SocialLinks:        &models.SocialLinks{},
		}
		s.verification = models.VerificationVerified
		s.log.Info("identity verified", zap.Int("score", result.Score))
	} else {
		s.state.OnboardingStep = models.StepIdentity
		s.verification = models.VerificationFailed
		s.log.Info("identity verification failed", zap.Int("score", result.Score))
	}
	s.saveSession(ctx)
	return s.verification, nil
}

// CompleteProfile patches the self profile with the profile-builder data
// and finishes onboarding. The bio must be longer than five characters,
// at least two interests and one photo are required; the first photo
// becomes the canonical one.
func (s *Session) CompleteProfile(ctx context.Context, bio string, interests, photos []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.OnboardingStep != models.StepProfileBuilder || s.state.Profile == nil {
		return ErrInvalidStep
	}
	if len(bio) <= 5 || len(interests) < 2 || len(photos) == 0 {
		return ErrProfileIncomplete
	}

	s.state.Profile.Bio = bio
	s.state.Profile.Interests = interests
	s.state.Profile.Photos = photos
	s.state.Profile.Photo = photos[0]
	s.state.OnboardingStep = models.StepCompleted
	s.saveSession(ctx)
	s.log.Info("onboarding completed")
	return nil
}
