// Package conversation normalizes raw client message lists into the strictly
// alternating user/assistant sequence the generation provider requires.
package conversation

import (
	"encoding/json"
	"fmt"

	"courtside-api/internal/shared"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole maps any external role string onto the two roles the provider
// understands. Only an exact "assistant" match counts; system and unknown
// roles collapse to user.
func ParseRole(s string) Role {
	if s == string(RoleAssistant) {
		return RoleAssistant
	}
	return RoleUser
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ResolveContent flattens whatever the client sent in the content field to
// plain text. Content-block arrays use the first block's text field; block
// lists without one are kept as their JSON serialization so nothing is
// silently dropped.
func ResolveContent(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case nil:
		return ""
	case []any:
		if len(c) == 0 {
			return ""
		}
		if m := shared.GetFirstMap(c); m != nil {
			if text, ok := m["text"].(string); ok {
				return text
			}
		}
		b, err := json.Marshal(c)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprint(c)
	}
}

// Normalize folds a raw message list into a canonical conversation.
// Consecutive user turns are concatenated with a blank line so multi-part
// follow-ups survive as one turn; consecutive assistant turns keep only the
// latest content, since only the newest draft matters for context. The
// result always starts with a user turn and is never empty.
func Normalize(raw []shared.RawMessage) []Message {
	msgs := make([]Message, 0, len(raw))
	for _, rm := range raw {
		role := ParseRole(rm.Role)
		content := ResolveContent(rm.Content)

		if n := len(msgs); n > 0 && msgs[n-1].Role == role {
			switch role {
			case RoleUser:
				msgs[n-1].Content = msgs[n-1].Content + "\n\n" + content
			case RoleAssistant:
				msgs[n-1].Content = content
			}
			continue
		}
		msgs = append(msgs, Message{Role: role, Content: content})
	}

	if len(msgs) == 0 || msgs[0].Role != RoleUser {
		msgs = append([]Message{{Role: RoleUser, Content: "Hello"}}, msgs...)
	}
	return msgs
}

// PromptPreview returns the newest user turn trimmed for record keeping.
func PromptPreview(msgs []Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleUser {
			return shared.Truncate(msgs[i].Content, shared.PromptPreviewLength)
		}
	}
	return ""
}
