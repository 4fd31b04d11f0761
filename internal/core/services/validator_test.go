package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastelandworks/gumshoe/internal/core/domain"
)

func TestValidate_StripsSpeakerLabel(t *testing.T) {
	v := NewResponseValidator(0)

	clean, err := v.Validate("Nick Valentine: Evening, pal.", "Nick Valentine", "Hi")

	require.NoError(t, err)
	assert.Equal(t, "Evening, pal.", clean)
}

func TestValidate_KeepsOpeningWhenLabelMentionedMidReply(t *testing.T) {
	v := NewResponseValidator(0)

	clean, err := v.Validate("The sign on the door says Nick Valentine: come on in.", "Nick Valentine", "Hi")

	require.NoError(t, err)
	assert.Equal(t, "The sign on the door says", clean,
		"a mid-reply mention of the label must not discard the opening")
}

func TestValidate_CutsInventedNextTurn(t *testing.T) {
	v := NewResponseValidator(0)

	clean, err := v.Validate("Evening, pal. User: And then what?", "Nick Valentine", "Hi")

	require.NoError(t, err)
	assert.Equal(t, "Evening, pal.", clean)
}

func TestValidate_FirstLineOnly(t *testing.T) {
	v := NewResponseValidator(0)

	clean, err := v.Validate("Evening, pal.\nAnd another thing entirely.", "Nick Valentine", "Hi")

	require.NoError(t, err)
	assert.Equal(t, "Evening, pal.", clean)
}

func TestValidate_StripsStageDirectionsAndQuotes(t *testing.T) {
	v := NewResponseValidator(0)

	clean, err := v.Validate(`"[lights a cigarette] Evening, pal."`, "Nick Valentine", "Hi")

	require.NoError(t, err)
	assert.Equal(t, "Evening, pal.", clean)
}

func TestValidate_EmptyAfterCleaning(t *testing.T) {
	v := NewResponseValidator(0)

	tests := []struct {
		name string
		raw  string
	}{
		{"Whitespace only", "   \n  "},
		{"Stage direction only", "[stares into the middle distance]"},
		{"Quotes only", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.raw, "Nick Valentine", "Hi")
			assert.ErrorIs(t, err, domain.ErrEmptyResponse)
		})
	}
}

func TestValidate_RejectsEcho(t *testing.T) {
	v := NewResponseValidator(0)

	_, err := v.Validate("what's  THE story", "Nick Valentine", "What's the story")

	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
}

func TestValidate_SentenceCap(t *testing.T) {
	v := NewResponseValidator(2)

	clean, err := v.Validate("One. Two! Three? Four.", "Nick Valentine", "Hi")

	require.NoError(t, err)
	assert.Equal(t, "One. Two!", clean)
}

func TestValidate_UnderCapUntouched(t *testing.T) {
	v := NewResponseValidator(3)

	clean, err := v.Validate("Just the one sentence.", "Nick Valentine", "Hi")

	require.NoError(t, err)
	assert.Equal(t, "Just the one sentence.", clean)
}

func TestValidate_DefaultCap(t *testing.T) {
	v := NewResponseValidator(0)

	clean, err := v.Validate("A. B. C. D. E.", "Nick Valentine", "Hi")

	require.NoError(t, err)
	assert.Equal(t, "A. B. C.", clean)
}
