package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/tkp/internal/llm"
)

func TestToGenaiSchema_QuoteContract(t *testing.T) {
	s, err := ToGenaiSchema(llm.BuildQuoteJSONSchema())
	require.NoError(t, err)

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t, []string{"id", "complexity", "query", "description", "found_items"}, s.Required)
	assert.Equal(t, genai.TypeInteger, s.Properties["id"].Type)
	assert.Equal(t, []string{"simple", "medium", "complex"}, s.Properties["complexity"].Enum)
	assert.Equal(t, genai.TypeString, s.Properties["additional_notes"].Type)

	items := s.Properties["found_items"]
	require.NotNil(t, items)
	assert.Equal(t, genai.TypeArray, items.Type)
	require.NotNil(t, items.Items)
	assert.Equal(t, genai.TypeInteger, items.Items.Properties["count"].Type)
	assert.Equal(t, genai.TypeNumber, items.Items.Properties["unit_cost"].Type)
	assert.ElementsMatch(t, []string{"name", "count", "unit_cost"}, items.Items.Required)
}

func TestToGenaiSchema_UnknownType(t *testing.T) {
	_, err := ToGenaiSchema(map[string]any{"type": "null"})
	assert.Error(t, err)
}

func TestFirstText(t *testing.T) {
	_, ok := firstText(nil)
	assert.False(t, ok)

	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: nil},
		{Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"id":1}`)}}},
	}}
	txt, ok := firstText(resp)
	assert.True(t, ok)
	assert.Equal(t, `{"id":1}`, txt)
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(Config{}, nil)
	assert.Error(t, err)

	c, err := NewClient(Config{APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", c.cfg.Model)
	assert.NotNil(t, c.schema)
}
