// Package genai is the client for the generative-content collaborators:
// background checks, discovery-profile generation, icebreaker suggestions
// and chat translation. Every call recovers from a collaborator failure
// with a deterministic local fallback; no error is ever surfaced to the
// caller as an error value the UI must handle.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// maxResponseSize limits the response body read to prevent memory
// exhaustion from a misbehaving endpoint.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

const (
	checkModel = "gemini-3-pro-preview"
	fastModel  = "gemini-3-flash-preview"

	// BatchSize is the number of profiles one generation call yields.
	BatchSize = 5
)

// fallbackSummary is the deterministic background-check result used
// when the collaborator fails.
const fallbackSummary = "Simulation: Profile appears standard. Verified via internal databases."

// CheckResult is the outcome of a background check.
type CheckResult struct {
	// Score is the safety score in [0,100].
	Score int `json:"score"`
	// Summary is the professional summary of the check.
	Summary string `json:"summary"`
	// Sources lists consulted sources, if any.
	Sources []string `json:"sources,omitempty"`
}

// GeneratedProfile is the raw shape the generation collaborator returns.
// The core decorates it with id, photos, score and social links.
type GeneratedProfile struct {
	Name      string   `json:"name"`
	Age       int      `json:"age"`
	Bio       string   `json:"bio"`
	Location  string   `json:"location"`
	Interests []string `json:"interests"`
}

// Client talks to a Gemini-style generateContent REST endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

// New returns a Client for the given endpoint. A nil logger is replaced
// with a no-op logger.
func New(baseURL, apiKey string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// generateRequest is the request envelope for generateContent.
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
}

// generate performs one generateContent call and returns the first
// candidate's text.
func (c *Client) generate(ctx context.Context, model, prompt string, cfg *generationConfig) (string, error) {
	reqBody := generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: cfg,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model %s: %w", model, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model %s returned status %d", model, resp.StatusCode)
	}

	text := gjson.GetBytes(body, "candidates.0.content.parts.0.text").String()
	if text == "" {
		return "", fmt.Errorf("model %s returned no candidate text", model)
	}
	return text, nil
}

// stripFences removes a Markdown code fence some models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

var jsonMime = &generationConfig{ResponseMimeType: "application/json"}

// BackgroundCheck runs a simulated public-safety check for the given
// name and location. On any collaborator failure it returns the fixed
// high-trust simulation result, so callers always receive a score.
func (c *Client) BackgroundCheck(ctx context.Context, name, location string) CheckResult {
	prompt := fmt.Sprintf(`Perform a simulated high-level public safety background check for a person named %q in %q.
Return a safety score from 0 to 100 and a professional summary. If this is a generic test name, assume a high safety score but mention it is a simulation.
Respond with a JSON object: {"score": number, "summary": string, "sources": [string]}.`, name, location)

	text, err := c.generate(ctx, checkModel, prompt, jsonMime)
	if err != nil {
		c.log.Warn("background check failed, using fallback", zap.Error(err))
		return CheckResult{Score: 95, Summary: fallbackSummary}
	}

	body := stripFences(text)
	parsed := gjson.Parse(body)
	if !parsed.Get("score").Exists() {
		c.log.Warn("background check returned unusable payload, using fallback")
		return CheckResult{Score: 95, Summary: fallbackSummary}
	}

	result := CheckResult{
		Score:   int(parsed.Get("score").Int()),
		Summary: parsed.Get("summary").String(),
	}
	for _, s := range parsed.Get("sources").Array() {
		result.Sources = append(result.Sources, s.String())
	}
	return result
}

// DiscoverProfiles requests one batch of synthetic dating profiles.
// A collaborator failure yields an empty list.
func (c *Client) DiscoverProfiles(ctx context.Context) []GeneratedProfile {
	prompt := fmt.Sprintf(`Generate %d diverse dating profiles with names, ages, bios, locations, and interests. Ensure bios are engaging and professional.
Respond with a JSON array of objects: {"name": string, "age": number, "bio": string, "location": string, "interests": [string]}.`, BatchSize)

	text, err := c.generate(ctx, fastModel, prompt, jsonMime)
	if err != nil {
		c.log.Warn("profile generation failed", zap.Error(err))
		return nil
	}

	var profiles []GeneratedProfile
	if err := json.Unmarshal([]byte(stripFences(text)), &profiles); err != nil {
		c.log.Warn("profile generation returned unusable payload", zap.Error(err))
		return nil
	}
	return profiles
}

// Icebreakers suggests three opener messages for a match. On failure it
// returns fixed templated suggestions built from the match's interests.
func (c *Client) Icebreakers(ctx context.Context, name string, interests []string, bio string) []string {
	prompt := fmt.Sprintf(`Generate 3 unique, engaging, and friendly icebreaker messages for a dating app match.
The person's name is %s.
Their interests are: %s.
Their bio says: %q.
Make the icebreakers diverse: one light-hearted, one based on an interest, and one open-ended question.
Respond with a JSON array of 3 strings.`, name, strings.Join(interests, ", "), bio)

	text, err := c.generate(ctx, fastModel, prompt, jsonMime)
	if err != nil {
		c.log.Warn("icebreaker generation failed, using fallback", zap.Error(err))
		return FallbackIcebreakers(name, interests)
	}

	var suggestions []string
	if err := json.Unmarshal([]byte(stripFences(text)), &suggestions); err != nil || len(suggestions) == 0 {
		c.log.Warn("icebreaker generation returned unusable payload, using fallback")
		return FallbackIcebreakers(name, interests)
	}
	return suggestions
}

// FallbackIcebreakers builds the deterministic suggestions used when
// the collaborator is unavailable.
func FallbackIcebreakers(name string, interests []string) []string {
	first := "your interests"
	if len(interests) > 0 {
		first = interests[0]
	}
	second := "one of your hobbies"
	if len(interests) > 1 {
		second = interests[1]
	}
	return []string{
		fmt.Sprintf("Hey %s, I saw you like %s, that's so cool!", name, first),
		fmt.Sprintf("Hi %s! Your bio really caught my eye. How's your week going?", name),
		fmt.Sprintf("I've been meaning to try something related to %s. Any tips?", second),
	}
}

// Translate renders text into the named target language. Fail-open: any
// failure returns the original text unchanged so chat is never blocked.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) string {
	temp := 0.1
	prompt := fmt.Sprintf(`Translate the following text into %s. Return ONLY the translated text without any explanations, quotes, or additional notes: %q`, targetLanguage, text)

	out, err := c.generate(ctx, fastModel, prompt, &generationConfig{Temperature: &temp})
	if err != nil {
		c.log.Warn("translation failed, returning original", zap.Error(err))
		return text
	}
	if trimmed := strings.TrimSpace(out); trimmed != "" {
		return trimmed
	}
	return text
}
