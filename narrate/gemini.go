package narrate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"wolfsim/werewolf"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash"
	geminiTimeout      = 15 * time.Second
)

// generator produces one model reply for a prompt.
type generator interface {
	generate(ctx context.Context, prompt string) (string, error)
}

type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g genaiGenerator) generate(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		cfg)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// GeminiNarrator asks a Gemini model for dialogue. Role claims and reports
// always come from the fallback narrator; the model only flavors ordinary
// lines. Any model failure falls back as well.
type GeminiNarrator struct {
	gen      generator
	fallback werewolf.Narrator
	timeout  time.Duration
}

// NewGeminiNarrator connects to Gemini. An empty model selects
// DefaultGeminiModel; a nil fallback selects a time-seeded RuleNarrator.
func NewGeminiNarrator(ctx context.Context, apiKey, model string, fallback werewolf.Narrator) (*GeminiNarrator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return newGeminiNarrator(genaiGenerator{client: client, model: model}, fallback), nil
}

// GeminiFromEnv builds a narrator from GEMINI_API_KEY and GEMINI_MODEL.
func GeminiFromEnv(ctx context.Context, fallback werewolf.Narrator) (*GeminiNarrator, error) {
	return NewGeminiNarrator(ctx, os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"), fallback)
}

func newGeminiNarrator(gen generator, fallback werewolf.Narrator) *GeminiNarrator {
	if fallback == nil {
		fallback = NewRuleNarrator(nil, 0)
	}
	return &GeminiNarrator{gen: gen, fallback: fallback, timeout: geminiTimeout}
}

type geminiReply struct {
	Text    string `json:"text"`
	Thought string `json:"thought"`
}

// Narrate implements werewolf.Narrator.
func (n *GeminiNarrator) Narrate(req werewolf.NarrationRequest) werewolf.Narration {
	base := n.fallback.Narrate(req)
	if base.IsClaim() || req.Target == "" {
		return base
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	raw, err := n.gen.generate(ctx, buildPrompt(req))
	if err != nil {
		log.Printf("[Narrator] gemini generate for %s failed: %v", req.Speaker, err)
		return base
	}
	reply, err := parseReply(raw, req.Target)
	if err != nil {
		log.Printf("[Narrator] gemini reply for %s rejected: %v. Reply was: %s", req.Speaker, err, raw)
		return base
	}
	return werewolf.Narration{
		Text:         reply.Text,
		InnerThought: fmt.Sprintf("[%s] %s", req.Strategy, reply.Thought),
	}
}

func buildPrompt(req werewolf.NarrationRequest) string {
	var facts []string
	if s := req.Facts.FirstSighting; s != nil {
		facts = append(facts, fmt.Sprintf("You privately saw that %s is %s.", s.Target, s.Verdict))
	}
	if m := req.Facts.LatestMedium; m != nil {
		facts = append(facts, fmt.Sprintf("You privately sensed that %s, executed on day %d, was %s.", m.Target, m.Round, m.Verdict))
	}
	if req.Facts.GuardTarget != "" {
		facts = append(facts, fmt.Sprintf("You intend to guard %s tonight.", req.Facts.GuardTarget))
	}
	if len(facts) == 0 {
		facts = append(facts, "You have no private information.")
	}

	return fmt.Sprintf(`You are %s, a player in a game of werewolf on day %d.
Your secret role: %s. Your personality: %s. Your tactic today: %s.
%s

You have decided to vote for %s. Say one short line to the village that names %s,
staying in character and never revealing your secret role.

Respond ONLY in JSON format:
{
  "text": "<what you say out loud>",
  "thought": "<one short private thought>"
}`,
		req.Speaker, req.Round,
		req.Role.Title(), req.Personality.Style(), req.Strategy,
		strings.Join(facts, "\n"),
		req.Target, req.Target)
}

// parseReply decodes the model's JSON and checks it names the target.
func parseReply(raw, target string) (geminiReply, error) {
	var r geminiReply
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &r); err != nil {
		return geminiReply{}, fmt.Errorf("parse reply: %w", err)
	}
	r.Text = strings.TrimSpace(r.Text)
	r.Thought = strings.TrimSpace(r.Thought)
	if r.Text == "" {
		return geminiReply{}, fmt.Errorf("empty text")
	}
	if !strings.Contains(r.Text, target) {
		return geminiReply{}, fmt.Errorf("text does not name %s", target)
	}
	return r, nil
}
