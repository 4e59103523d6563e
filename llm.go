package medspan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"google.golang.org/genai"
)

var _ TokenLabeler = (*LLMAnnotator)(nil)

// annotateTag is the prompt template tag the annotator renders.
const annotateTag = "annotate"

// defaultAnnotateTemplate asks for exact-substring mentions so they can be
// located back in the source text.
const defaultAnnotateTemplate = `You are a clinical entity annotator. Find every medication-related mention in the document below.
Respond with a JSON array of objects of the form {"text": "<exact substring copied from the document>", "label": "<one of: {{ TypeList }}>"}.
Copy each mention character for character. Respond with [] when the document contains none.

<<DOC>>
{{ Document }}
<<END>>`

// LLMAnnotator is an opt-in TokenLabeler backed by a generative model. The
// model returns mentions as (text, label) pairs; each mention is located at
// its first unconsumed occurrence in the source and emitted as a single
// B-tagged token, so reconstruction and assembly treat it exactly like
// model-backend output.
//
// It is not part of the default candidate list: mention location is a
// string search, not a span map, and the ONNX backends are preferred
// whenever they load. Wire it in with WithLabeler.
type LLMAnnotator struct {
	client     *genai.Client
	model      string
	prompts    PromptProvider
	log        *slog.Logger
	maxRetries int
	backoff    time.Duration
}

// NewLLMAnnotator returns an annotator using the given generative model.
// A nil provider falls back to the built-in annotation template; a nil
// logger falls back to slog.Default().
func NewLLMAnnotator(client *genai.Client, model string, prompts PromptProvider, log *slog.Logger) (*LLMAnnotator, error) {
	if client == nil {
		return nil, fmt.Errorf("client not initialized")
	}
	if model == "" {
		return nil, fmt.Errorf("model not specified")
	}
	if prompts == nil {
		p, err := NewStickPromptProvider(WithTemplates(map[string]string{
			annotateTag: defaultAnnotateTemplate,
		}))
		if err != nil {
			return nil, err
		}
		prompts = p
	}
	if log == nil {
		log = slog.Default()
	}
	return &LLMAnnotator{
		client:     client,
		model:      model,
		prompts:    prompts,
		log:        log,
		maxRetries: 2,
		backoff:    500 * time.Millisecond,
	}, nil
}

func (a *LLMAnnotator) Name() string { return "genai/" + a.model }

// mention is one extracted (text, label) pair from the model's JSON answer.
type mention struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// LabelTokens annotates each text in turn. Unlocatable mentions and labels
// outside the canonical set are dropped, not errors.
func (a *LLMAnnotator) LabelTokens(ctx context.Context, texts []string) ([][]TokenLabel, error) {
	typeNames := make([]string, 0, len(entityTypes))
	for _, t := range entityTypes {
		typeNames = append(typeNames, string(t))
	}

	labels := make([][]TokenLabel, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if text == "" {
			continue
		}

		prompt, err := a.prompts.GetPrompt(annotateTag, 1, typeNames, text)
		if err != nil {
			return nil, fmt.Errorf("render annotation prompt: %w", err)
		}

		raw, err := a.generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("annotate text %d: %w", i, err)
		}

		var mentions []mention
		if err := json.Unmarshal(SanitizeJSONResponse(raw), &mentions); err != nil {
			return nil, fmt.Errorf("annotate text %d: decode mentions: %w", i, err)
		}

		labels[i] = a.locate(text, mentions)
	}
	return labels, nil
}

// generate calls the model and returns the raw response bytes.
func (a *LLMAnnotator) generate(ctx context.Context, prompt string) ([]byte, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	var raw []byte
	err := retryable(func() error {
		resp, genErr := a.client.Models.GenerateContent(ctx, a.model, contents, config)
		if genErr != nil {
			return fmt.Errorf("failed to generate content: %w", genErr)
		}
		if len(resp.Candidates) == 0 {
			return fmt.Errorf("no candidates in response")
		}
		candidate := resp.Candidates[0]
		if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
			return fmt.Errorf("no parts in candidate content")
		}
		if candidate.Content.Parts[0].Text == "" {
			return fmt.Errorf("no text in first part of response")
		}
		raw = []byte(candidate.Content.Parts[0].Text)
		return nil
	}, a.maxRetries, a.backoff, a.log)
	return raw, err
}

// locate maps mentions back onto the source text. Each mention consumes its
// first case-insensitive occurrence after the previous one, so repeated
// mentions land on successive occurrences.
func (a *LLMAnnotator) locate(text string, mentions []mention) []TokenLabel {
	haystack := strings.ToLower(text)
	folded := len(haystack) == len(text)
	if !folded {
		// Lowercasing shifted byte offsets (rare unicode case folds);
		// match case-sensitively so offsets stay aligned.
		haystack = text
	}
	cursor := 0

	var toks []TokenLabel
	for _, m := range mentions {
		if m.Text == "" {
			continue
		}
		typ := EntityType(strings.ToUpper(m.Label))
		if !validEntityType[typ] {
			a.log.Debug("dropping mention with unknown label", "label", m.Label, "text", m.Text)
			continue
		}
		needle := m.Text
		if folded {
			needle = strings.ToLower(m.Text)
		}
		idx := strings.Index(haystack[cursor:], needle)
		if idx < 0 {
			// Retry from the top for out-of-order mention lists.
			idx = strings.Index(haystack, needle)
			if idx < 0 {
				a.log.Debug("dropping unlocatable mention", "text", m.Text)
				continue
			}
		} else {
			idx += cursor
		}
		end := idx + len(needle)
		cursor = end
		toks = append(toks, TokenLabel{
			Start: utf8.RuneCountInString(text[:idx]),
			End:   utf8.RuneCountInString(text[:end]),
			Tag:   "B-" + string(typ),
		})
	}
	return toks
}
