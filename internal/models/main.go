// Package models defines the core data structures for session state,
// profiles, matches and the admin ledger.
package models

// OnboardingStep identifies the stage of first-run account setup.
// It gates access to discovery, matching and chat.
type OnboardingStep string

const (
	// StepLogin means no login method has been chosen yet.
	StepLogin OnboardingStep = "LOGIN"
	// StepIdentity means the user must submit name, location and age.
	StepIdentity OnboardingStep = "IDENTITY"
	// StepVerifying means a background check is in flight.
	StepVerifying OnboardingStep = "VERIFYING"
	// StepProfileBuilder means verification passed and the profile
	// still needs bio, interests and photos.
	StepProfileBuilder OnboardingStep = "PROFILE_BUILDER"
	// StepCompleted is the terminal step; all features are available.
	StepCompleted OnboardingStep = "COMPLETED"
)

// VerificationStatus is the transient status of the background check
// shown while onboarding. It is never persisted.
type VerificationStatus string

const (
	VerificationIdle     VerificationStatus = "IDLE"
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationFailed   VerificationStatus = "FAILED"
)

// SocialLinks holds optional social-network handles for a profile.
type SocialLinks struct {
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	TikTok    string `json:"tiktok,omitempty"`
	Threads   string `json:"threads,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Snapchat  string `json:"snapchat,omitempty"`
}

// NotificationSettings is an independent sub-record of the session,
// mutated only by user toggles.
type NotificationSettings struct {
	// Matches enables a push notification when a new match is made.
	Matches bool `json:"matches"`
	// Messages enables notifications for incoming messages.
	Messages bool `json:"messages"`
	// Icebreakers enables icebreaker-suggestion nudges.
	Icebreakers bool `json:"icebreakers"`
	// BrowserPermission mirrors the platform permission state:
	// "default", "granted" or "denied".
	BrowserPermission string `json:"browserPermission"`
}

// Profile describes a person shown in the app: the verified self profile
// or a discovery candidate. Candidate profiles are immutable once created;
// the self profile is patched exactly once by profile-builder completion.
type Profile struct {
	// ID is the unique identifier ("me" for the self profile).
	ID string `json:"id"`
	// Name is the display name.
	Name string `json:"name"`
	// Age in years.
	Age int `json:"age"`
	// Bio is the free-text self description.
	Bio string `json:"bio"`
	// Location is the city the profile reports.
	Location string `json:"location"`
	// Photo is the canonical "main" photo URL.
	Photo string `json:"photo"`
	// Photos is the ordered photo list; Photos[0] matches Photo.
	Photos []string `json:"photos,omitempty"`
	// VerificationScore is the trust score in [0,100].
	VerificationScore int `json:"verificationScore"`
	// VerificationReport is the free-text summary of the check.
	VerificationReport string `json:"verificationReport"`
	// Interests is the list of declared interests.
	Interests []string `json:"interests"`
	// SocialLinks holds optional social handles.
	SocialLinks *SocialLinks `json:"socialLinks,omitempty"`
}

// MessageSender identifies which side of a chat wrote a message.
type MessageSender string

const (
	// SenderSelf is the app user.
	SenderSelf MessageSender = "me"
	// SenderCounterpart is the matched profile.
	SenderCounterpart MessageSender = "them"
)

// Message is one immutable chat entry. Chat history is append-only and
// ordered by insertion time.
type Message struct {
	Sender    MessageSender `json:"sender"`
	Text      string        `json:"text"`
	Timestamp int64         `json:"timestamp"`
}

// Match wraps one liked Profile together with its interaction counters
// and chat history. Matches are created once and never removed.
type Match struct {
	// Profile is the matched profile, copied at like-time.
	Profile Profile `json:"profile"`
	// MessagesSent counts self messages while the match is not unlimited.
	MessagesSent int `json:"messagesSent"`
	// CallsMade counts placed calls while the match is not unlimited.
	CallsMade int `json:"callsMade"`
	// IsUnlimited flips one-way from false to true on a paid unlock.
	IsUnlimited bool `json:"isUnlimited"`
	// ChatHistory is the append-only message log.
	ChatHistory []Message `json:"chatHistory"`
	// IsTyping marks a simulated reply in flight. Transient.
	IsTyping bool `json:"isTyping,omitempty"`
}

// SessionState is the whole user session, persisted as one blob.
type SessionState struct {
	OnboardingStep OnboardingStep `json:"onboardingStep"`
	IsVerified     bool           `json:"isVerified"`
	IsMember       bool           `json:"isMember"`
	// Profile is nil until identity verification succeeds.
	Profile *Profile `json:"profile"`
	// Matches is ordered newest first.
	Matches []Match `json:"matches"`
	// Theme is "light" or "dark".
	Theme                string               `json:"theme"`
	NotificationSettings NotificationSettings `json:"notificationSettings"`
}

// TransactionKind labels what a ledger transaction paid for.
type TransactionKind string

const (
	TxMembership        TransactionKind = "membership"
	TxTextUnlock        TransactionKind = "text_unlock"
	TxPersonalCheck     TransactionKind = "personal_check"
	TxGlobalSearchCheck TransactionKind = "global_search_check"
)

// Transaction is one append-only revenue record.
type Transaction struct {
	ID     string          `json:"id"`
	Amount float64         `json:"amount"`
	Date   int64           `json:"date"`
	Label  string          `json:"matchName"`
	Kind   TransactionKind `json:"type"`
}

// Report is one append-only trust-and-safety record. Reports outlive
// the profiles they reference.
type Report struct {
	ID                  string `json:"id"`
	ReportedProfileID   string `json:"reportedProfileId"`
	ReportedProfileName string `json:"reportedProfileName"`
	ReporterName        string `json:"reporterName"`
	Reason              string `json:"reason"`
	Timestamp           int64  `json:"timestamp"`
}

// AdminSettings is the admin ledger: payout destination, the running
// revenue total and the append-only transaction and report logs.
// Persisted separately from SessionState.
type AdminSettings struct {
	BankName      string        `json:"bankName"`
	AccountNumber string        `json:"accountNumber"`
	RoutingNumber string        `json:"routingNumber"`
	TotalRevenue  float64       `json:"totalRevenue"`
	Transactions  []Transaction `json:"transactions"`
	Reports       []Report      `json:"reports"`
}
