package actions

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	contractx "github.com/napatw/storeops/agent/contract"
)

// ParseProposals extracts action proposals from raw model output. Any
// malformation yields an empty slice, never an error: a model that cannot
// produce the shape simply proposes nothing. Parsed proposals get fresh
// 8-char ids; these stay stable for the rest of the thread's life.
func ParseProposals(raw string) []contractx.ActionProposal {
	content := strings.TrimSpace(raw)
	if idx := strings.Index(content, "```json"); idx >= 0 {
		content = content[idx+len("```json"):]
		if end := strings.Index(content, "```"); end >= 0 {
			content = content[:end]
		}
	} else if idx := strings.Index(content, "```"); idx >= 0 {
		content = content[idx+len("```"):]
		if end := strings.Index(content, "```"); end >= 0 {
			content = content[:end]
		}
	}

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end < start {
		return nil
	}

	var proposals []contractx.ActionProposal
	if err := json.Unmarshal([]byte(content[start:end+1]), &proposals); err != nil {
		log.Debug().Err(err).Msg("discard malformed action proposals")
		return nil
	}

	for i := range proposals {
		proposals[i].ID = uuid.NewString()[:8]
		if !proposals[i].Type.Valid() {
			log.Warn().Str("type", string(proposals[i].Type)).Msg("keeping proposal with unknown action type")
		}
	}
	return proposals
}
