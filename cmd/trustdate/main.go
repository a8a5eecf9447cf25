// Package main runs the interactive TrustDate client: onboarding,
// discovery, matching, chat and the paid upgrade flows, persisted to
// local blob storage between runs.
package main

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ekovaleva/trustdate/internal/config"
	"github.com/ekovaleva/trustdate/internal/genai"
	"github.com/ekovaleva/trustdate/internal/logger"
	"github.com/ekovaleva/trustdate/internal/models"
	"github.com/ekovaleva/trustdate/internal/notify"
	"github.com/ekovaleva/trustdate/internal/service"
	"github.com/ekovaleva/trustdate/internal/store"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// stdinPrompter asks for notification permission on the terminal.
type stdinPrompter struct {
	in *bufio.Scanner
}

func (p *stdinPrompter) RequestPermission() notify.Permission {
	fmt.Print("Allow notifications? [y/n]: ")
	if !p.in.Scan() {
		return notify.PermissionDenied
	}
	if strings.EqualFold(strings.TrimSpace(p.in.Text()), "y") {
		return notify.PermissionGranted
	}
	return notify.PermissionDenied
}

func main() {
	options := config.Parse()

	fmt.Printf("TrustDate\nBuild version: %s\nBuild date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}

	blobs, err := openBlobStore(options)
	if err != nil {
		log.Log.Fatal("cannot open blob store", zap.Error(err))
	}

	scanner := bufio.NewScanner(os.Stdin)
	notifier := notify.New(notify.PermissionDefault, &stdinPrompter{in: scanner}, log.Log)

	session := service.New(context.Background(), service.Deps{
		Sessions:  store.NewSessionStore(blobs),
		Admin:     store.NewAdminStore(blobs),
		Generator: genai.New(options.GenAIBaseURL, options.GenAIAPIKey, log.Log),
		Notifier:  notifier,
		Logger:    log.Log,
	})

	go printEvents(session)

	repl(session, notifier, scanner, options.AdminAccessKey)
}

// openBlobStore picks the persistence backend: PostgreSQL when a DSN is
// configured, a local file directory otherwise.
func openBlobStore(options *config.Options) (store.BlobStore, error) {
	if options.DatabaseDSN != "" {
		db, err := store.InitPostgres(options.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return store.NewPostgresBlobStore(db), nil
	}
	return store.NewFileBlobStore(options.DataDir)
}

// printEvents renders transient UI events as they arrive.
func printEvents(s *service.Session) {
	for e := range s.Events() {
		switch e.Kind {
		case service.EventMatchCelebration:
			fmt.Printf("\n*** IT'S A MATCH! You are now connected with %s. ***\n", e.Profile.Name)
		case service.EventChatOpened:
			fmt.Printf("\n[chat with %s opened]\n", e.MatchID)
		case service.EventIncomingMessage:
			fmt.Printf("\n[new message in chat %s]\n", e.MatchID)
		}
	}
}

// repl runs the interactive shell loop.
func repl(s *service.Session, notifier *notify.Service, scanner *bufio.Scanner, adminKey string) {
	ctx := context.Background()

	for {
		fmt.Print("trustdate> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			printHelp()
		case "state":
			printState(s)
		case "login":
			if len(args) < 2 {
				fmt.Println("Usage: login google|apple")
				continue
			}
			report(s.Login(ctx, args[1]))
		case "verify":
			name := prompt(scanner, "Full legal name: ")
			city := prompt(scanner, "City: ")
			age, _ := strconv.Atoi(prompt(scanner, "Age: "))
			fmt.Println("Scanning records...")
			status, err := s.SubmitIdentity(ctx, name, city, age)
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("Verification result: %s\n", status)
		case "build":
			bio := prompt(scanner, "Bio: ")
			interests := splitList(prompt(scanner, "Interests (comma separated): "))
			photos := splitList(prompt(scanner, "Photo URLs (comma separated): "))
			report(s.CompleteProfile(ctx, bio, interests, photos))
		case "discover":
			if err := s.Refill(ctx); err != nil {
				fmt.Println(err)
				continue
			}
			if head, ok := s.Head(); ok {
				printProfile(head)
			} else {
				fmt.Println("Updating queue... try again.")
			}
		case "like":
			head, ok := s.Head()
			if !ok {
				fmt.Println("No candidate to like. Run discover first.")
				continue
			}
			report(s.Like(ctx, head.ID, strings.Join(args[1:], " ")))
		case "pass":
			report(s.Pass())
		case "report":
			head, ok := s.Head()
			if !ok {
				fmt.Println("No candidate to report.")
				continue
			}
			if err := s.Report(ctx, head, strings.Join(args[1:], " ")); err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println("Profile reported. Our trust and safety team will review this immediately.")
		case "matches":
			for i, m := range s.State().Matches {
				fmt.Printf("%d. %s (%s) messages=%d calls=%d unlimited=%v\n",
					i+1, m.Profile.Name, m.Profile.ID, m.MessagesSent, m.CallsMade, m.IsUnlimited)
			}
		case "open":
			if len(args) < 2 {
				fmt.Println("Usage: open <match id>")
				continue
			}
			report(s.OpenChat(args[1]))
		case "close":
			s.CloseChat()
		case "chat":
			m, ok := s.ActiveChat()
			if !ok {
				fmt.Println("No open chat. Use open <match id>.")
				continue
			}
			if len(args) < 2 {
				printHistory(m)
				continue
			}
			if s.MessageLocked(m.Profile.ID) {
				fmt.Println("Free message limit reached. Use unlock to continue chatting.")
				continue
			}
			s.SendMessage(ctx, m.Profile.ID, strings.Join(args[1:], " "))
		case "call":
			m, ok := s.ActiveChat()
			if !ok {
				fmt.Println(service.ErrNoActiveMatch)
				continue
			}
			switch err := s.PlaceCall(ctx, m.Profile.ID); {
			case errors.Is(err, service.ErrPaywallRequired):
				fmt.Println("Free call limit reached for this match. Use unlock to lift it ($1.00).")
			case err != nil:
				fmt.Println(err)
			default:
				fmt.Println("Call started.")
			}
		case "unlock":
			m, ok := s.ActiveChat()
			if !ok {
				fmt.Println("Open the chat you want to unlock first.")
				continue
			}
			if err := s.Unlock(ctx, m.Profile.ID); err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println("Unlimited interactions unlocked for this match.")
		case "icebreakers":
			m, ok := s.ActiveChat()
			if !ok {
				fmt.Println("Open a chat first.")
				continue
			}
			suggestions, err := s.Icebreakers(ctx, m.Profile.ID)
			if err != nil {
				fmt.Println(err)
				continue
			}
			for _, sug := range suggestions {
				fmt.Println("-", sug)
			}
		case "translate":
			if len(args) < 3 {
				fmt.Println("Usage: translate <language> <text>")
				continue
			}
			fmt.Println(s.TranslateMessage(ctx, strings.Join(args[2:], " "), args[1]))
		case "upgrade":
			if err := s.UpgradeMembership(ctx); err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println("Membership active.")
		case "search":
			if !s.State().IsMember {
				fmt.Println("Membership required for global background checks.")
				continue
			}
			name := prompt(scanner, "Name to check: ")
			city := prompt(scanner, "Location: ")
			result, err := s.GlobalSearch(ctx, name, city)
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("Score: %d\n%s\n", result.Score, result.Summary)
		case "notifications":
			fmt.Printf("Permission: %s\n", notifier.Request())
		case "theme":
			if len(args) < 2 {
				fmt.Println("Usage: theme light|dark")
				continue
			}
			s.SetTheme(ctx, args[1])
		case "admin":
			key := prompt(scanner, "Admin Access Key Required: ")
			if key != adminKey {
				continue
			}
			printAdmin(s.Admin())
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func printHelp() {
	fmt.Println(`Available commands:
  login google|apple   choose a login method
  verify               submit identity for the background check
  build                finish the profile builder
  discover             show the current candidate (refills when empty)
  like [message]       like the candidate, optionally with an opener
  pass                 skip the candidate
  report <reason>      report the candidate
  matches              list matches
  open <id> / close    open or close a chat
  chat [text]          show history or send a message
  call                 place a call on the open chat
  unlock               lift the free limit for the open chat ($1.00)
  icebreakers          suggest openers for the open chat
  translate <lang> <t> translate a message
  upgrade              become a member ($1.00)
  search               paid global background check ($2.00, members)
  notifications        request notification permission
  theme light|dark     switch theme
  admin                open the admin summary (access key required)
  exit`)
}

func printState(s *service.Session) {
	state := s.State()
	fmt.Printf("step=%s verified=%v member=%v matches=%d queue=%d\n",
		state.OnboardingStep, state.IsVerified, state.IsMember, len(state.Matches), len(s.Queue()))
	if state.Profile != nil {
		fmt.Printf("profile: %s, %d, %s (trust %d)\n",
			state.Profile.Name, state.Profile.Age, state.Profile.Location, state.Profile.VerificationScore)
	}
}

func printProfile(p models.Profile) {
	fmt.Printf("%s, %d — %s\n%s\nInterests: %s\nTrust score: %d\n",
		p.Name, p.Age, p.Location, p.Bio, strings.Join(p.Interests, ", "), p.VerificationScore)
}

func printHistory(m models.Match) {
	for _, msg := range m.ChatHistory {
		fmt.Printf("[%s] %s\n", msg.Sender, msg.Text)
	}
	if m.IsTyping {
		fmt.Printf("%s is typing...\n", m.Profile.Name)
	}
}

func printAdmin(a models.AdminSettings) {
	fmt.Printf("Total revenue: $%.2f\nPayout: %s %s (%s)\n", a.TotalRevenue, a.BankName, a.AccountNumber, a.RoutingNumber)
	fmt.Printf("Transactions (%d):\n", len(a.Transactions))
	for _, tx := range a.Transactions {
		fmt.Printf("  $%.2f %-20s %s\n", tx.Amount, tx.Kind, tx.Label)
	}
	fmt.Printf("Reports (%d):\n", len(a.Reports))
	for _, rep := range a.Reports {
		fmt.Printf("  %s reported by %s: %s\n", rep.ReportedProfileName, rep.ReporterName, rep.Reason)
	}
}

func prompt(scanner *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func report(err error) {
	if err != nil {
		fmt.Println(err)
	}
}
