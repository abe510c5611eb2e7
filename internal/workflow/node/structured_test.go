package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cardShape struct {
	Headline string `json:"headline"`
	Insight  string `json:"insight"`
}

var cardFields = []string{"headline", "insight"}

func TestDecodeLenientCleanParse(t *testing.T) {
	raw := `{"headline":"h","insight":"i"}`

	v, diags, err := DecodeLenient[cardShape](raw, cardFields)

	require.NoError(t, err)
	assert.Equal(t, "h", v.Headline)
	assert.Equal(t, "i", v.Insight)
	assert.Empty(t, diags)
}

func TestDecodeLenientExtractsFromSurroundingText(t *testing.T) {
	raw := "Here is the card:\n```json\n{\"headline\":\"h\",\"insight\":\"i\"}\n```\nDone."

	v, diags, err := DecodeLenient[cardShape](raw, cardFields)

	require.NoError(t, err)
	assert.Equal(t, "h", v.Headline)
	assert.Contains(t, diags, "extracted_json_from_surrounding_text")
}

func TestDecodeLenientStripsExtraFields(t *testing.T) {
	raw := `{"headline":"h","insight":"i","zz_note":"x","aa_note":"y"}`

	v, diags, err := DecodeLenient[cardShape](raw, cardFields)

	require.NoError(t, err)
	assert.Equal(t, "h", v.Headline)
	// 剥离字段按字典序记入同一条诊断
	require.Len(t, diags, 1)
	assert.Equal(t, "stripped_extra_fields: aa_note, zz_note", diags[0])
}

func TestDecodeLenientEmptyInput(t *testing.T) {
	_, _, err := DecodeLenient[cardShape]("   \n\t ", cardFields)

	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestDecodeLenientIrreparableInput(t *testing.T) {
	_, _, err := DecodeLenient[cardShape]("the paper proposes a new attention variant", cardFields)

	assert.Error(t, err)
}

func TestDecodeStrictRejectsUnknownFields(t *testing.T) {
	_, err := DecodeStrict[cardShape](`{"headline":"h","insight":"i","extra":1}`)

	assert.Error(t, err)
}

func TestExtractJSONObjectPrefersFirstValue(t *testing.T) {
	out := ExtractJSONObject(`noise {"a":1} trailing`)

	assert.Equal(t, `{"a":1}`, out)
}

func TestTruncateByRunes(t *testing.T) {
	assert.Equal(t, "", TruncateByRunes("abc", 0))
	assert.Equal(t, "abc", TruncateByRunes("abc", 10))
	assert.Equal(t, "注意", TruncateByRunes("注意力机制", 2))
}
