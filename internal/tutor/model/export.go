package model

import (
	"encoding/json"
	"fmt"
)

// sessionExport is the persisted session document. It embeds the full state
// so export/load round-trips exactly, plus the derived overall score.
type sessionExport struct {
	*ConversationState
	OverallScore float64 `json:"overall_score"`
}

// ExportSession serializes a session to its JSON document form.
func ExportSession(state *ConversationState) ([]byte, error) {
	if state == nil {
		return nil, fmt.Errorf("nil session state")
	}
	doc := sessionExport{ConversationState: state, OverallScore: state.OverallScore()}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal session %s: %w", state.SessionID, err)
	}
	return b, nil
}

// LoadSession parses a session document produced by ExportSession.
func LoadSession(data []byte) (*ConversationState, error) {
	var doc sessionExport
	doc.ConversationState = &ConversationState{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if doc.SessionID == "" {
		return nil, fmt.Errorf("session document missing session_id")
	}
	return doc.ConversationState, nil
}
