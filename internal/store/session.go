package store

import (
	"context"
	"encoding/json"

	"github.com/ekovaleva/trustdate/internal/models"
)

// Blob keys. Adding fields to either blob must default-fill on load,
// never break deserialization.
const (
	SessionKey = "trustdate_user"
	AdminKey   = "trustdate_admin"
)

// DefaultSessionState returns a fresh session at the login step.
func DefaultSessionState() models.SessionState {
	return models.SessionState{
		OnboardingStep: models.StepLogin,
		Profile:        nil,
		Matches:        []models.Match{},
		Theme:          "light",
		NotificationSettings: models.NotificationSettings{
			Matches:           true,
			Messages:          true,
			Icebreakers:       true,
			BrowserPermission: "default",
		},
	}
}

// DefaultAdminSettings returns the admin ledger defaults.
func DefaultAdminSettings() models.AdminSettings {
	return models.AdminSettings{
		BankName:      "Global Reserve Bank",
		AccountNumber: "**** **** 1973",
		RoutingNumber: "000000000",
		Transactions:  []models.Transaction{},
		Reports:       []models.Report{},
	}
}

// SessionStore persists the SessionState blob.
type SessionStore struct {
	blobs BlobStore
}

// NewSessionStore returns a SessionStore writing through to blobs.
func NewSessionStore(blobs BlobStore) *SessionStore {
	return &SessionStore{blobs: blobs}
}

// Load reads the session blob. A missing key or malformed payload yields
// fresh defaults; a successfully decoded state is default-filled and then
// reconciled: a Completed step without a profile is corrupt and is
// demoted to the identity step.
func (s *SessionStore) Load(ctx context.Context) models.SessionState {
	state := DefaultSessionState()

	data, err := s.blobs.Get(ctx, SessionKey)
	if err != nil {
		return state
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return DefaultSessionState()
	}

	fillSessionDefaults(&state)

	if state.OnboardingStep == models.StepCompleted && state.Profile == nil {
		state.OnboardingStep = models.StepIdentity
	}
	return state
}

// Save serializes the whole session and replaces the stored blob.
func (s *SessionStore) Save(ctx context.Context, state models.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.blobs.Put(ctx, SessionKey, data)
}

// fillSessionDefaults repairs fields a blob written by an older schema
// may be missing.
func fillSessionDefaults(state *models.SessionState) {
	if state.OnboardingStep == "" {
		state.OnboardingStep = models.StepLogin
	}
	if state.Matches == nil {
		state.Matches = []models.Match{}
	}
	if state.Theme == "" {
		state.Theme = "light"
	}
	if state.NotificationSettings.BrowserPermission == "" {
		state.NotificationSettings.BrowserPermission = "default"
	}
}

// AdminStore persists the AdminSettings blob, independently from the
// session blob.
type AdminStore struct {
	blobs BlobStore
}

// NewAdminStore returns an AdminStore writing through to blobs.
func NewAdminStore(blobs BlobStore) *AdminStore {
	return &AdminStore{blobs: blobs}
}

// Load reads the admin blob, falling back to defaults when the key is
// missing or the payload does not decode.
func (s *AdminStore) Load(ctx context.Context) models.AdminSettings {
	settings := DefaultAdminSettings()

	data, err := s.blobs.Get(ctx, AdminKey)
	if err != nil {
		return settings
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return DefaultAdminSettings()
	}

	if settings.Transactions == nil {
		settings.Transactions = []models.Transaction{}
	}
	if settings.Reports == nil {
		settings.Reports = []models.Report{}
	}
	return settings
}

// Save serializes the admin ledger and replaces the stored blob.
func (s *AdminStore) Save(ctx context.Context, settings models.AdminSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.blobs.Put(ctx, AdminKey, data)
}
