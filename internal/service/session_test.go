package service_test

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/ekovaleva/trustdate/internal/genai"
	"github.com/ekovaleva/trustdate/internal/models"
	"github.com/ekovaleva/trustdate/internal/service"
	"github.com/ekovaleva/trustdate/internal/store"
)

type mockGen struct {
	BackgroundCheckFunc  func(ctx context.Context, name, location string) genai.CheckResult
	DiscoverProfilesFunc func(ctx context.Context) []genai.GeneratedProfile
	IcebreakersFunc      func(ctx context.Context, name string, interests []string, bio string) []string
	TranslateFunc        func(ctx context.Context, text, targetLanguage string) string
}

func (m *mockGen) BackgroundCheck(ctx context.Context, name, location string) genai.CheckResult {
	if m.BackgroundCheckFunc == nil {
		return genai.CheckResult{Score: 95, Summary: "mock"}
	}
	return m.BackgroundCheckFunc(ctx, name, location)
}

func (m *mockGen) DiscoverProfiles(ctx context.Context) []genai.GeneratedProfile {
	if m.DiscoverProfilesFunc == nil {
		return nil
	}
	return m.DiscoverProfilesFunc(ctx)
}

func (m *mockGen) Icebreakers(ctx context.Context, name string, interests []string, bio string) []string {
	if m.IcebreakersFunc == nil {
		return genai.FallbackIcebreakers(name, interests)
	}
	return m.IcebreakersFunc(ctx, name, interests, bio)
}

func (m *mockGen) Translate(ctx context.Context, text, targetLanguage string) string {
	if m.TranslateFunc == nil {
		return text
	}
	return m.TranslateFunc(ctx, text, targetLanguage)
}

type mockNotifier struct {
	mu     sync.Mutex
	sends  []string
	bodies []string
}

func (m *mockNotifier) Send(title, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, title)
	m.bodies = append(m.bodies, body)
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sends)
}

func (m *mockNotifier) lastBody() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.bodies) == 0 {
		return ""
	}
	return m.bodies[len(m.bodies)-1]
}

// manualScheduler collects scheduled tasks so tests fire timers
// deterministically.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []func()
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, f)
}

// Fire runs every pending task once, in scheduling order.
func (s *manualScheduler) Fire() {
	s.mu.Lock()
	pending := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, f := range pending {
		f()
	}
}

type fixture struct {
	session *service.Session
	gen     *mockGen
	sched   *manualScheduler
	notif   *mockNotifier
	blobs   *store.FileBlobStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	blobs, err := store.NewFileBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBlobStore failed: %v", err)
	}
	gen := &mockGen{}
	sched := &manualScheduler{}
	notif := &mockNotifier{}
	s := service.New(context.Background(), service.Deps{
		Sessions:  store.NewSessionStore(blobs),
		Admin:     store.NewAdminStore(blobs),
		Generator: gen,
		Notifier:  notif,
		Scheduler: sched,
		Rand:      rand.New(rand.NewSource(1)),
	})
	return &fixture{session: s, gen: gen, sched: sched, notif: notif, blobs: blobs}
}

// completeOnboarding walks the fixture session to the completed step.
func (f *fixture) completeOnboarding(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if err := f.session.Login(ctx, "google"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := f.session.SubmitIdentity(ctx, "Jane Doe", "Austin", 29); err != nil {
		t.Fatalf("SubmitIdentity failed: %v", err)
	}
	err := f.session.CompleteProfile(ctx, "I like long walks", []string{"art", "music"}, []string{"photo-1"})
	if err != nil {
		t.Fatalf("CompleteProfile failed: %v", err)
	}
}

// fillQueue refills the queue with n generated profiles.
func (f *fixture) fillQueue(t *testing.T, n int) []models.Profile {
	t.Helper()
	f.gen.DiscoverProfilesFunc = func(context.Context) []genai.GeneratedProfile {
		out := make([]genai.GeneratedProfile, n)
		for i := range out {
			out[i] = genai.GeneratedProfile{
				Name:      fmt.Sprintf("Candidate %d", i),
				Age:       24 + i,
				Bio:       "Generated bio",
				Location:  "Lisbon",
				Interests: []string{"hiking", "tea"},
			}
		}
		return out
	}
	if err := f.session.Refill(context.Background()); err != nil {
		t.Fatalf("Refill failed: %v", err)
	}
	return f.session.Queue()
}

func TestLogin_AdvancesToIdentity(t *testing.T) {
	f := newFixture(t)
	if err := f.session.Login(context.Background(), "google"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if step := f.session.State().OnboardingStep; step != models.StepIdentity {
		t.Errorf("step = %s; want %s", step, models.StepIdentity)
	}
}

func TestLogin_RejectedAfterLoginStep(t *testing.T) {
	f := newFixture(t)
	_ = f.session.Login(context.Background(), "google")
	if err := f.session.Login(context.Background(), "apple"); err != service.ErrInvalidStep {
		t.Errorf("second Login error = %v; want ErrInvalidStep", err)
	}
}

func TestSubmitIdentity_PassingScore(t *testing.T) {
	f := newFixture(t)
	_ = f.session.Login(context.Background(), "google")
	f.gen.BackgroundCheckFunc = func(context.Context, string, string) genai.CheckResult {
		return genai.CheckResult{Score: 85, Summary: "Clean record."}
	}

	status, err := f.session.SubmitIdentity(context.Background(), "Jane Doe", "Austin", 29)
	if err != nil {
		t.Fatalf("SubmitIdentity failed: %v", err)
	}
	if status != models.VerificationVerified {
		t.Errorf("status = %s; want verified", status)
	}

	state := f.session.State()
	if state.OnboardingStep != models.StepProfileBuilder {
		t.Errorf("step = %s; want %s", state.OnboardingStep, models.StepProfileBuilder)
	}
	if !state.IsVerified {
		t.Errorf("expected isVerified true")
	}
	if state.Profile == nil {
		t.Fatalf("expected profile populated")
	}
	if state.Profile.VerificationScore != 85 {
		t.Errorf("score = %d; want 85", state.Profile.VerificationScore)
	}
	if state.Profile.VerificationReport != "Clean record." {
		t.Errorf("report = %q", state.Profile.VerificationReport)
	}
	if state.Profile.Name != "Jane Doe" || state.Profile.Age != 29 || state.Profile.Location != "Austin" {
		t.Errorf("profile identity mismatch: %+v", state.Profile)
	}
}

func TestSubmitIdentity_FailingScore(t *testing.T) {
	f := newFixture(t)
	_ = f.session.Login(context.Background(), "google")
	f.gen.BackgroundCheckFunc = func(context.Context, string, string) genai.CheckResult {
		return genai.CheckResult{Score: 40, Summary: "Records unclear."}
	}

	status, err := f.session.SubmitIdentity(context.Background(), "Jane Doe", "Austin", 29)
	if err != nil {
		t.Fatalf("SubmitIdentity failed: %v", err)
	}
	if status != models.VerificationFailed {
		t.Errorf("status = %s; want failed", status)
	}

	state := f.session.State()
	if state.OnboardingStep != models.StepIdentity {
		t.Errorf("step = %s; want demoted %s", state.OnboardingStep, models.StepIdentity)
	}
	if state.IsVerified {
		t.Errorf("expected isVerified false")
	}
	if state.Profile != nil {
		t.Errorf("expected profile discarded, got %+v", state.Profile)
	}
}

func TestSubmitIdentity_ThresholdBoundary(t *testing.T) {
	for score, wantStep := range map[int]models.OnboardingStep{
		70: models.StepProfileBuilder,
		69: models.StepIdentity,
	} {
		f := newFixture(t)
		_ = f.session.Login(context.Background(), "google")
		f.gen.BackgroundCheckFunc = func(context.Context, string, string) genai.CheckResult {
			return genai.CheckResult{Score: score}
		}
		if _, err := f.session.SubmitIdentity(context.Background(), "Jane Doe", "Austin", 29); err != nil {
			t.Fatalf("SubmitIdentity failed: %v", err)
		}
		if got := f.session.State().OnboardingStep; got != wantStep {
			t.Errorf("score %d: step = %s; want %s", score, got, wantStep)
		}
	}
}

func TestSubmitIdentity_ValidatesInput(t *testing.T) {
	f := newFixture(t)
	_ = f.session.Login(context.Background(), "google")
	if _, err := f.session.SubmitIdentity(context.Background(), "", "Austin", 29); err != service.ErrIdentityIncomplete {
		t.Errorf("error = %v; want ErrIdentityIncomplete", err)
	}
	if _, err := f.session.SubmitIdentity(context.Background(), "Jane", "Austin", 0); err != service.ErrIdentityIncomplete {
		t.Errorf("error = %v; want ErrIdentityIncomplete", err)
	}
}

func TestCompleteProfile_Validation(t *testing.T) {
	f := newFixture(t)
	_ = f.session.Login(context.Background(), "google")
	_, _ = f.session.SubmitIdentity(context.Background(), "Jane Doe", "Austin", 29)

	cases := []struct {
		name      string
		bio       string
		interests []string
		photos    []string
	}{
		{"short bio", "hey", []string{"a", "b"}, []string{"p"}},
		{"one interest", "long enough bio", []string{"a"}, []string{"p"}},
		{"no photos", "long enough bio", []string{"a", "b"}, nil},
	}
	for _, tc := range cases {
		if err := f.session.CompleteProfile(context.Background(), tc.bio, tc.interests, tc.photos); err != service.ErrProfileIncomplete {
			t.Errorf("%s: error = %v; want ErrProfileIncomplete", tc.name, err)
		}
	}
}

func TestCompleteProfile_Completes(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)

	state := f.session.State()
	if state.OnboardingStep != models.StepCompleted {
		t.Errorf("step = %s; want %s", state.OnboardingStep, models.StepCompleted)
	}
	if state.Profile.Photo != "photo-1" {
		t.Errorf("canonical photo = %q; want photo-1", state.Profile.Photo)
	}
}

func TestRefill_RequiresCompletedOnboarding(t *testing.T) {
	f := newFixture(t)
	if err := f.session.Refill(context.Background()); err != service.ErrOnboardingIncomplete {
		t.Errorf("error = %v; want ErrOnboardingIncomplete", err)
	}
}

func TestRefill_BatchOfFive(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	queue := f.fillQueue(t, 5)

	if len(queue) != 5 {
		t.Fatalf("queue length = %d; want 5", len(queue))
	}
	for _, p := range queue {
		if p.ID == "" || p.Photo == "" || len(p.Photos) != 3 {
			t.Errorf("profile not decorated: %+v", p)
		}
		if p.VerificationScore < 90 || p.VerificationScore >= 100 {
			t.Errorf("synthetic score %d out of [90,100)", p.VerificationScore)
		}
	}
}

func TestRefill_NoopWhenQueueNotEmpty(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	f.fillQueue(t, 5)

	calls := 0
	f.gen.DiscoverProfilesFunc = func(context.Context) []genai.GeneratedProfile {
		calls++
		return nil
	}
	if err := f.session.Refill(context.Background()); err != nil {
		t.Fatalf("Refill failed: %v", err)
	}
	if calls != 0 {
		t.Errorf("generator called %d times with a non-empty queue", calls)
	}
}

func TestPass_DropsHead(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	queue := f.fillQueue(t, 5)

	if err := f.session.Pass(); err != nil {
		t.Fatalf("Pass failed: %v", err)
	}
	after := f.session.Queue()
	if len(after) != 4 {
		t.Fatalf("queue length = %d; want 4", len(after))
	}
	if after[0].ID != queue[1].ID {
		t.Errorf("head after pass = %s; want %s", after[0].ID, queue[1].ID)
	}
}

func TestLike_CreatesMatchAndOpensChat(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	queue := f.fillQueue(t, 5)

	if err := f.session.Like(context.Background(), queue[0].ID, ""); err != nil {
		t.Fatalf("Like failed: %v", err)
	}

	state := f.session.State()
	if len(state.Matches) != 1 {
		t.Fatalf("matches = %d; want 1", len(state.Matches))
	}
	if state.Matches[0].MessagesSent != 0 {
		t.Errorf("messagesSent = %d; want 0", state.Matches[0].MessagesSent)
	}
	if got := len(f.session.Queue()); got != 4 {
		t.Errorf("queue length = %d; want 4", got)
	}
	if f.notif.count() != 1 {
		t.Errorf("notifications = %d; want 1", f.notif.count())
	}
	if _, open := f.session.ActiveChat(); open {
		t.Errorf("chat open before celebration delay")
	}

	f.sched.Fire()
	m, open := f.session.ActiveChat()
	if !open {
		t.Fatalf("chat not auto-opened after celebration delay")
	}
	if m.Profile.ID != queue[0].ID {
		t.Errorf("open chat = %s; want %s", m.Profile.ID, queue[0].ID)
	}
}

func TestLike_NotificationNamesLikedProfile(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	queue := f.fillQueue(t, 3)

	// Liking the head shifts the remaining candidates over its queue
	// slot; the notification must still name the liked profile.
	if err := f.session.Like(context.Background(), queue[0].ID, ""); err != nil {
		t.Fatalf("Like failed: %v", err)
	}
	want := fmt.Sprintf("You are now connected with %s.", queue[0].Name)
	if got := f.notif.lastBody(); got != want {
		t.Errorf("notification body = %q; want %q", got, want)
	}
}

func TestLike_OpenerCountsAgainstQuota(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	queue := f.fillQueue(t, 5)

	if err := f.session.Like(context.Background(), queue[0].ID, "Hi there!"); err != nil {
		t.Fatalf("Like failed: %v", err)
	}
	m := f.session.State().Matches[0]
	if m.MessagesSent != 1 {
		t.Errorf("messagesSent = %d; want 1", m.MessagesSent)
	}
	if len(m.ChatHistory) != 1 || m.ChatHistory[0].Sender != models.SenderSelf || m.ChatHistory[0].Text != "Hi there!" {
		t.Errorf("unexpected history: %+v", m.ChatHistory)
	}
}

func TestLike_NotificationRespectsToggle(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	ns := f.session.State().NotificationSettings
	ns.Matches = false
	f.session.SetNotificationSettings(context.Background(), ns)
	queue := f.fillQueue(t, 5)

	_ = f.session.Like(context.Background(), queue[0].ID, "")
	if f.notif.count() != 0 {
		t.Errorf("notification sent despite disabled toggle")
	}
}

// likeAndOpen creates a match and fires the celebration timer so
// the chat is open.
func (f *fixture) likeAndOpen(t *testing.T) models.Profile {
	t.Helper()
	queue := f.fillQueue(t, 5)
	if err := f.session.Like(context.Background(), queue[0].ID, ""); err != nil {
		t.Fatalf("Like failed: %v", err)
	}
	f.sched.Fire()
	return queue[0]
}

func TestSendMessage_QuotaMonotonicity(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	p := f.likeAndOpen(t)

	for k := 1; k <= 3; k++ {
		f.session.SendMessage(context.Background(), p.ID, fmt.Sprintf("msg %d", k))
		if got := f.session.State().Matches[0].MessagesSent; got != k {
			t.Errorf("after %d sends messagesSent = %d", k, got)
		}
		if locked := f.session.MessageLocked(p.ID); locked != (k >= 3) {
			t.Errorf("after %d sends MessageLocked = %v", k, locked)
		}
	}
}

func TestSendMessage_SilentNoopWhenChatNotOpen(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	p := f.likeAndOpen(t)
	f.session.CloseChat()

	f.session.SendMessage(context.Background(), p.ID, "into the void")
	m := f.session.State().Matches[0]
	if m.MessagesSent != 0 || len(m.ChatHistory) != 0 {
		t.Errorf("send applied without an open chat: %+v", m)
	}
}

func TestSendMessage_SimulatedReply(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	p := f.likeAndOpen(t)

	f.session.SendMessage(context.Background(), p.ID, "hello")
	m := f.session.State().Matches[0]
	if !m.IsTyping {
		t.Errorf("expected typing flag set after send")
	}
	if len(m.ChatHistory) != 1 {
		t.Fatalf("history = %d entries; want 1", len(m.ChatHistory))
	}

	f.sched.Fire()
	m = f.session.State().Matches[0]
	if m.IsTyping {
		t.Errorf("typing flag not cleared by reply")
	}
	if len(m.ChatHistory) != 2 {
		t.Fatalf("history = %d entries; want 2", len(m.ChatHistory))
	}
	reply := m.ChatHistory[1]
	if reply.Sender != models.SenderCounterpart {
		t.Errorf("reply sender = %s; want counterpart", reply.Sender)
	}
	if reply.Text != "Verified Match: Looking forward to our chat!" {
		t.Errorf("reply text = %q", reply.Text)
	}
}

func TestSendMessage_ReplyLandsAfterNavigateAway(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	p := f.likeAndOpen(t)

	f.session.SendMessage(context.Background(), p.ID, "hello")
	f.session.CloseChat()
	f.sched.Fire()

	m := f.session.State().Matches[0]
	if len(m.ChatHistory) != 2 {
		t.Errorf("reply did not land after navigate-away: %d entries", len(m.ChatHistory))
	}
}

func TestSendMessage_UnlimitedDoesNotCount(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	p := f.likeAndOpen(t)
	if err := f.session.Unlock(context.Background(), p.ID); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	f.session.SendMessage(context.Background(), p.ID, "free at last")
	if got := f.session.State().Matches[0].MessagesSent; got != 0 {
		t.Errorf("messagesSent = %d; want 0 for unlimited match", got)
	}
	if f.session.MessageLocked(p.ID) {
		t.Errorf("unlimited match reported locked")
	}
}

func TestPlaceCall_NoActiveMatch(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	if err := f.session.PlaceCall(context.Background(), "profile-x"); err != service.ErrNoActiveMatch {
		t.Errorf("error = %v; want ErrNoActiveMatch", err)
	}
}

func TestPlaceCall_CountsUpToQuota(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	p := f.likeAndOpen(t)

	for k := 1; k <= 3; k++ {
		if err := f.session.PlaceCall(context.Background(), p.ID); err != nil {
			t.Fatalf("call %d failed: %v", k, err)
		}
	}
	if got := f.session.State().Matches[0].CallsMade; got != 3 {
		t.Errorf("callsMade = %d; want 3", got)
	}
}

func TestPlaceCall_PaywallAtQuota(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	p := f.likeAndOpen(t)

	for k := 0; k < 3; k++ {
		_ = f.session.PlaceCall(context.Background(), p.ID)
	}
	if err := f.session.PlaceCall(context.Background(), p.ID); err != service.ErrPaywallRequired {
		t.Errorf("error = %v; want ErrPaywallRequired", err)
	}
	if got := f.session.State().Matches[0].CallsMade; got != 3 {
		t.Errorf("callsMade changed by paywalled call: %d", got)
	}
}

func TestPlaceCall_UnlimitedSkipsQuota(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	p := f.likeAndOpen(t)
	_ = f.session.Unlock(context.Background(), p.ID)

	for k := 0; k < 5; k++ {
		if err := f.session.PlaceCall(context.Background(), p.ID); err != nil {
			t.Fatalf("call %d failed: %v", k, err)
		}
	}
	if got := f.session.State().Matches[0].CallsMade; got != 0 {
		t.Errorf("callsMade = %d; want 0 for unlimited match", got)
	}
}

func TestUnlock_RecordsOneTransaction(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	p := f.likeAndOpen(t)

	if err := f.session.Unlock(context.Background(), p.ID); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	admin := f.session.Admin()
	if len(admin.Transactions) != 1 {
		t.Fatalf("transactions = %d; want 1", len(admin.Transactions))
	}
	tx := admin.Transactions[0]
	if tx.Kind != models.TxTextUnlock {
		t.Errorf("kind = %s; want text_unlock", tx.Kind)
	}
	if tx.Amount != service.UnlockPrice {
		t.Errorf("amount = %v; want %v", tx.Amount, service.UnlockPrice)
	}
	if admin.TotalRevenue != service.UnlockPrice {
		t.Errorf("totalRevenue = %v; want %v", admin.TotalRevenue, service.UnlockPrice)
	}
	if !f.session.State().Matches[0].IsUnlimited {
		t.Errorf("match not unlimited after unlock")
	}
}

func TestUnlock_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	p := f.likeAndOpen(t)

	_ = f.session.Unlock(context.Background(), p.ID)
	if err := f.session.Unlock(context.Background(), p.ID); err != nil {
		t.Fatalf("second Unlock failed: %v", err)
	}

	admin := f.session.Admin()
	if len(admin.Transactions) != 1 {
		t.Errorf("transactions = %d after double unlock; want 1", len(admin.Transactions))
	}
	if admin.TotalRevenue != service.UnlockPrice {
		t.Errorf("totalRevenue = %v after double unlock; want %v", admin.TotalRevenue, service.UnlockPrice)
	}
}

func TestUnlock_UnknownMatch(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	if err := f.session.Unlock(context.Background(), "profile-x"); err != service.ErrMatchNotFound {
		t.Errorf("error = %v; want ErrMatchNotFound", err)
	}
}

func TestReport_RequiresReason(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	queue := f.fillQueue(t, 5)
	if err := f.session.Report(context.Background(), queue[0], "  "); err != service.ErrEmptyReason {
		t.Errorf("error = %v; want ErrEmptyReason", err)
	}
}

func TestReport_AppendsAndDropsFromQueue(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	queue := f.fillQueue(t, 5)

	if err := f.session.Report(context.Background(), queue[0], "fake photos"); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	admin := f.session.Admin()
	if len(admin.Reports) != 1 {
		t.Fatalf("reports = %d; want 1", len(admin.Reports))
	}
	rep := admin.Reports[0]
	if rep.ReportedProfileID != queue[0].ID || rep.Reason != "fake photos" {
		t.Errorf("unexpected report: %+v", rep)
	}
	if rep.ReporterName != "Jane Doe" {
		t.Errorf("reporter = %q; want Jane Doe", rep.ReporterName)
	}
	if got := len(f.session.Queue()); got != 4 {
		t.Errorf("queue length = %d; want 4", got)
	}
	if got := len(f.session.State().Matches); got != 0 {
		t.Errorf("report touched matches: %d", got)
	}
}

func TestUpgradeMembership(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)

	if err := f.session.UpgradeMembership(context.Background()); err != nil {
		t.Fatalf("UpgradeMembership failed: %v", err)
	}
	if !f.session.State().IsMember {
		t.Errorf("expected member after upgrade")
	}
	admin := f.session.Admin()
	if len(admin.Transactions) != 1 || admin.Transactions[0].Kind != models.TxMembership {
		t.Errorf("unexpected transactions: %+v", admin.Transactions)
	}

	// Second upgrade is a no-op.
	if err := f.session.UpgradeMembership(context.Background()); err != nil {
		t.Fatalf("second UpgradeMembership failed: %v", err)
	}
	if got := len(f.session.Admin().Transactions); got != 1 {
		t.Errorf("transactions = %d after double upgrade; want 1", got)
	}
}

func TestGlobalSearch_MembersOnly(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)

	if _, err := f.session.GlobalSearch(context.Background(), "John Roe", "Boston"); err != service.ErrMembershipRequired {
		t.Errorf("error = %v; want ErrMembershipRequired", err)
	}
	if got := len(f.session.Admin().Transactions); got != 0 {
		t.Errorf("transactions = %d for rejected search; want 0", got)
	}
}

func TestGlobalSearch_ChargesPerSearch(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	_ = f.session.UpgradeMembership(context.Background())
	f.gen.BackgroundCheckFunc = func(_ context.Context, name, _ string) genai.CheckResult {
		return genai.CheckResult{Score: 77, Summary: "checked " + name}
	}

	result, err := f.session.GlobalSearch(context.Background(), "John Roe", "Boston")
	if err != nil {
		t.Fatalf("GlobalSearch failed: %v", err)
	}
	if result.Score != 77 {
		t.Errorf("score = %d; want 77", result.Score)
	}

	admin := f.session.Admin()
	// Newest first: the search precedes the membership fee in the log.
	if admin.Transactions[0].Kind != models.TxGlobalSearchCheck {
		t.Errorf("kind = %s; want global_search_check", admin.Transactions[0].Kind)
	}
	if admin.Transactions[0].Amount != service.GlobalSearchPrice {
		t.Errorf("amount = %v; want %v", admin.Transactions[0].Amount, service.GlobalSearchPrice)
	}
	wantTotal := service.MembershipPrice + service.GlobalSearchPrice
	if admin.TotalRevenue != wantTotal {
		t.Errorf("totalRevenue = %v; want %v", admin.TotalRevenue, wantTotal)
	}
}

func TestNeedsIcebreakers(t *testing.T) {
	me := models.Message{Sender: models.SenderSelf, Text: "x"}
	them := models.Message{Sender: models.SenderCounterpart, Text: "y"}

	cases := []struct {
		name    string
		history []models.Message
		want    bool
	}{
		{"empty history", nil, true},
		{"short conversation", []models.Message{me, them}, false},
		{"inactive: self last, long", []models.Message{me, them, me}, true},
		{"active: counterpart last", []models.Message{me, them, me, them}, false},
		{"self last but short", []models.Message{me}, false},
	}
	for _, tc := range cases {
		m := models.Match{ChatHistory: tc.history}
		if got := service.NeedsIcebreakers(m); got != tc.want {
			t.Errorf("%s: NeedsIcebreakers = %v; want %v", tc.name, got, tc.want)
		}
	}
}

func TestIcebreakers_UnknownMatch(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	if _, err := f.session.Icebreakers(context.Background(), "profile-x"); err != service.ErrMatchNotFound {
		t.Errorf("error = %v; want ErrMatchNotFound", err)
	}
}

func TestIcebreakers_UsesMatchProfile(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	p := f.likeAndOpen(t)

	var gotName string
	f.gen.IcebreakersFunc = func(_ context.Context, name string, _ []string, _ string) []string {
		gotName = name
		return []string{"a", "b", "c"}
	}
	suggestions, err := f.session.Icebreakers(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Icebreakers failed: %v", err)
	}
	if len(suggestions) != 3 {
		t.Errorf("suggestions = %d; want 3", len(suggestions))
	}
	if gotName != p.Name {
		t.Errorf("collaborator got name %q; want %q", gotName, p.Name)
	}
}

func TestStatePersistedAcrossRestore(t *testing.T) {
	f := newFixture(t)
	f.completeOnboarding(t)
	p := f.likeAndOpen(t)
	f.session.SendMessage(context.Background(), p.ID, "hello")
	f.sched.Fire()

	restored := service.New(context.Background(), service.Deps{
		Sessions:  store.NewSessionStore(f.blobs),
		Admin:     store.NewAdminStore(f.blobs),
		Generator: f.gen,
		Scheduler: &manualScheduler{},
	})

	state := restored.State()
	if state.OnboardingStep != models.StepCompleted {
		t.Errorf("step = %s; want %s", state.OnboardingStep, models.StepCompleted)
	}
	if len(state.Matches) != 1 {
		t.Fatalf("matches = %d; want 1", len(state.Matches))
	}
	if len(state.Matches[0].ChatHistory) != 2 {
		t.Errorf("history = %d entries; want 2", len(state.Matches[0].ChatHistory))
	}
	// The discovery queue never survives a restore.
	if got := len(restored.Queue()); got != 0 {
		t.Errorf("queue = %d after restore; want 0", got)
	}
}

func TestUpdatePayout(t *testing.T) {
	f := newFixture(t)
	f.session.UpdatePayout(context.Background(), "First Bank", "1234", "5678")
	admin := f.session.Admin()
	if admin.BankName != "First Bank" || admin.AccountNumber != "1234" || admin.RoutingNumber != "5678" {
		t.Errorf("payout not updated: %+v", admin)
	}
}
