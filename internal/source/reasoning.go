package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"polybot/internal/consensus"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// voteSchema constrains the reasoning service's reply before any field is
// trusted. Heterogeneous payloads are adapted here, at the boundary only.
const voteSchema = `{
  "type": "object",
  "required": ["action", "confidence"],
  "properties": {
    "action": {"type": "string"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 100},
    "rationale": {"type": "string"}
  }
}`

var compiledVoteSchema = jsonschema.MustCompileString("vote.json", voteSchema)

// ReasoningClient invokes the external reasoning service and returns its raw
// JSON reply. Prompt construction and transport live behind this interface.
type ReasoningClient interface {
	Evaluate(ctx context.Context, req consensus.Request) (string, error)
}

// ReasoningSource adapts reasoning-service replies into votes.
type ReasoningSource struct {
	id     string
	client ReasoningClient
}

func NewReasoningSource(id string, client ReasoningClient) *ReasoningSource {
	if strings.TrimSpace(id) == "" {
		id = "reasoning"
	}
	return &ReasoningSource{id: id, client: client}
}

func (s *ReasoningSource) ID() string { return s.id }

func (s *ReasoningSource) Vote(ctx context.Context, req consensus.Request) (consensus.Vote, error) {
	if s.client == nil {
		return consensus.Vote{}, fmt.Errorf("reasoning client not configured")
	}
	raw, err := s.client.Evaluate(ctx, req)
	if err != nil {
		return consensus.Vote{}, fmt.Errorf("reasoning service call failed: %w", err)
	}
	return parseVotePayload(s.id, raw)
}

func parseVotePayload(sourceID, raw string) (consensus.Vote, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return consensus.Vote{}, fmt.Errorf("reasoning service returned empty payload")
	}
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return consensus.Vote{}, fmt.Errorf("reasoning payload is not valid json: %w", err)
	}
	if err := compiledVoteSchema.Validate(doc); err != nil {
		return consensus.Vote{}, fmt.Errorf("reasoning payload failed schema validation: %w", err)
	}
	parsed := gjson.Parse(raw)
	return consensus.Vote{
		SourceID:   sourceID,
		Action:     consensus.NormalizeAction(parsed.Get("action").String()),
		Confidence: parsed.Get("confidence").Float(),
		Rationale:  truncate(parsed.Get("rationale").String(), 200),
	}, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
