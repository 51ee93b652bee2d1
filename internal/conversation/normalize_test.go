package conversation

import (
	"strings"
	"testing"

	"courtside-api/internal/shared"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	require.Equal(t, RoleAssistant, ParseRole("assistant"))
	require.Equal(t, RoleUser, ParseRole("user"))
	require.Equal(t, RoleUser, ParseRole("system"))
	require.Equal(t, RoleUser, ParseRole("Assistant"))
	require.Equal(t, RoleUser, ParseRole(""))
}

func TestResolveContent(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"string passthrough", "hello", "hello"},
		{"nil is empty", nil, ""},
		{"empty block list is empty", []any{}, ""},
		{
			"first block text wins",
			[]any{map[string]any{"type": "text", "text": "from block"}, map[string]any{"text": "ignored"}},
			"from block",
		},
		{
			"blocks without text serialize",
			[]any{map[string]any{"type": "image", "url": "x"}},
			`[{"type":"image","url":"x"}]`,
		},
		{"number coerces", float64(42), "42"},
		{"bool coerces", true, "true"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ResolveContent(tc.in))
		})
	}
}

// requireCanonical asserts what every normalized conversation must
// satisfy: non-empty, strictly alternating, user first.
func requireCanonical(t *testing.T, msgs []Message) {
	t.Helper()
	require.NotEmpty(t, msgs)
	require.Equal(t, RoleUser, msgs[0].Role)
	for i := 1; i < len(msgs); i++ {
		require.NotEqual(t, msgs[i-1].Role, msgs[i].Role, "roles must alternate at %d", i)
	}
}

func TestNormalizeAlwaysCanonical(t *testing.T) {
	hostile := [][]shared.RawMessage{
		nil,
		{},
		{{Role: "assistant", Content: "only assistant"}},
		{{Role: "assistant", Content: "a"}, {Role: "assistant", Content: "b"}},
		{{Role: "user", Content: "a"}, {Role: "user", Content: "b"}, {Role: "assistant", Content: "c"}},
		{{Role: "system", Content: "sys"}, {Role: "user", Content: "q"}},
		{{Role: "weird", Content: nil}, {Role: "assistant", Content: []any{}}},
		{{Role: "user", Content: float64(1)}, {Role: "assistant", Content: "x"}, {Role: "user", Content: "y"}},
	}

	for _, raw := range hostile {
		requireCanonical(t, Normalize(raw))
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	msgs := Normalize(nil)
	require.Equal(t, []Message{{Role: RoleUser, Content: "Hello"}}, msgs)
}

func TestNormalizeAssistantFirstGetsSyntheticTurn(t *testing.T) {
	msgs := Normalize([]shared.RawMessage{{Role: "assistant", Content: "draft"}})
	require.Len(t, msgs, 2)
	require.Equal(t, Message{Role: RoleUser, Content: "Hello"}, msgs[0])
	require.Equal(t, Message{Role: RoleAssistant, Content: "draft"}, msgs[1])
}

func TestNormalizeUserFoldConcatenates(t *testing.T) {
	msgs := Normalize([]shared.RawMessage{
		{Role: "user", Content: "first part"},
		{Role: "user", Content: "second part"},
	})
	require.Len(t, msgs, 1)
	require.True(t, strings.Contains(msgs[0].Content, "first part"))
	require.True(t, strings.Contains(msgs[0].Content, "second part"))
	require.Equal(t, "first part\n\nsecond part", msgs[0].Content)
}

func TestNormalizeAssistantFoldKeepsLast(t *testing.T) {
	msgs := Normalize([]shared.RawMessage{
		{Role: "user", Content: "q"},
		{Role: "assistant", Content: "old draft"},
		{Role: "assistant", Content: "new draft"},
	})
	require.Len(t, msgs, 2)
	require.Equal(t, "new draft", msgs[1].Content)
	require.NotContains(t, msgs[1].Content, "old draft")
}

func TestNormalizeIdempotentOnCanonical(t *testing.T) {
	canonical := []shared.RawMessage{
		{Role: "user", Content: "question"},
		{Role: "assistant", Content: "answer"},
		{Role: "user", Content: "follow up"},
	}
	msgs := Normalize(canonical)
	require.Equal(t, []Message{
		{Role: RoleUser, Content: "question"},
		{Role: RoleAssistant, Content: "answer"},
		{Role: RoleUser, Content: "follow up"},
	}, msgs)
}

func TestPromptPreviewTruncates(t *testing.T) {
	long := strings.Repeat("x", 500)
	msgs := Normalize([]shared.RawMessage{{Role: "user", Content: long}})
	preview := PromptPreview(msgs)
	require.Len(t, preview, shared.PromptPreviewLength)

	require.Equal(t, "", PromptPreview(nil))
}
