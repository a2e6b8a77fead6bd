package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"samosa-vision/internal/domain/entity"
)

func TestValidator_Success(t *testing.T) {
	v := NewValidator()

	rec, err := v.Validate(`Here you go: {"score": 85, "corners": [{"name":"Top","angle":60,"comment":"Crispy"}]}`)
	require.NoError(t, err)
	require.Equal(t, &entity.AnalysisRecord{
		Score:   85,
		Corners: []entity.CornerObservation{{Name: "Top", Angle: 60, Comment: "Crispy"}},
	}, rec)
}

func TestValidator_FencedReplyWithProse(t *testing.T) {
	raw := "Great photo!\n```json\n{\n  \"score\": 72.5,\n  \"corners\": [\n" +
		"    {\"name\": \"Top\", \"angle\": 58, \"comment\": \"Golden\"},\n" +
		"    {\"name\": \"Left\", \"angle\": 61, \"comment\": \"A bit soft\"},\n" +
		"    {\"name\": \"Right\", \"angle\": 61, \"comment\": \"Flaky\"}\n  ]\n}\n```\nEnjoy."

	rec, err := NewValidator().Validate(raw)
	require.NoError(t, err)
	require.Equal(t, 72.5, rec.Score)
	require.Len(t, rec.Corners, 3)
	require.Equal(t, "Left", rec.Corners[1].Name)
	require.Equal(t, "Flaky", rec.Corners[2].Comment)
}

func TestValidator_Refusal(t *testing.T) {
	v := NewValidator()
	cases := []string{
		"Sorry, I am unable to identify a samosa",
		"SORRY! {\"score\": 85, \"corners\": [{\"name\":\"Top\",\"angle\":60,\"comment\":\"Crispy\"}]}",
		"I apologize, but this looks like a pizza.",
		"I can't see any pastry here.",
		"I'm not able to analyze this image.",
	}
	for _, raw := range cases {
		_, err := v.Validate(raw)
		require.ErrorIs(t, err, entity.ErrNoSubjectDetected, raw)
	}
}

func TestValidator_NoStructuredPayload(t *testing.T) {
	v := NewValidator()
	cases := []string{
		"I see a triangular pastry but cannot quantify it.",
		"",
		"} reversed {",
		`{"score": 85, "corners": [}`,
		`{score: 85}`,
		`first {"score": 1} then {"score": 2}`,
	}
	for _, raw := range cases {
		_, err := v.Validate(raw)
		require.ErrorIs(t, err, entity.ErrNoStructuredPayload, raw)
	}
}

func TestValidator_InvalidShape(t *testing.T) {
	v := NewValidator()
	cases := []string{
		`{"corners": [{"name":"Top","angle":60,"comment":"Crispy"}]}`,
		`{"score": null, "corners": [{"name":"Top","angle":60,"comment":"Crispy"}]}`,
		`{"score": "85", "corners": [{"name":"Top","angle":60,"comment":"Crispy"}]}`,
		`{"score": 101, "corners": [{"name":"Top","angle":60,"comment":"Crispy"}]}`,
		`{"score": -1, "corners": [{"name":"Top","angle":60,"comment":"Crispy"}]}`,
		`{"score": 85}`,
		`{"score": 85, "corners": null}`,
		`{"score": 85, "corners": []}`,
		`{"score": 85, "corners": {"name":"Top"}}`,
		`{"score": 85, "corners": ["Top"]}`,
		`{"score": 85, "corners": [{"angle":60,"comment":"Crispy"}]}`,
		`{"score": 85, "corners": [{"name":"Top","angle":"sixty","comment":"Crispy"}]}`,
		`{"score": 85, "corners": [{"name":"Top","angle":200,"comment":"Crispy"}]}`,
		`{"score": 85, "corners": [{"name":"Top","angle":60}]}`,
	}
	for _, raw := range cases {
		_, err := v.Validate(raw)
		require.ErrorIs(t, err, entity.ErrInvalidAnalysisShape, raw)
	}
}

func TestValidator_ZeroScoreIsValid(t *testing.T) {
	rec, err := NewValidator().Validate(`{"score": 0, "corners": [{"name":"Top","angle":60,"comment":"Soggy"}]}`)
	require.NoError(t, err)
	require.Zero(t, rec.Score)
}

func TestValidator_CustomMarkers(t *testing.T) {
	v := NewValidator("  NOPE ")

	_, err := v.Validate("nope, not a samosa")
	require.ErrorIs(t, err, entity.ErrNoSubjectDetected)

	_, err = v.Validate("sorry {\"score\": 85, \"corners\": [{\"name\":\"Top\",\"angle\":60,\"comment\":\"Crispy\"}]}")
	require.NoError(t, err)
}
