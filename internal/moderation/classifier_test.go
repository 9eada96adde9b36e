package moderation

import (
	"testing"
)

func TestClassifierFlags(t *testing.T) {
	t.Parallel()

	classifier := NewClassifier([]string{"egg", "Spamword"})

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"clean text", "hello there", false},
		{"plain match", "i like egg", true},
		{"case folded", "I LIKE EGG", true},
		{"punctuation stripped", "e.g.g!", true},
		{"substring match is intentional", "eggplant soup", true},
		{"term normalized at construction", "spamword here", true},
		{"empty message", "", false},
		{"term split by spaces stays split", "e g g", false},
		{"non-ASCII letter is not spliced out", "eéggs", false},
		{"accented text stays clean", "séance résumé café", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := classifier.Flags(tt.text); got != tt.want {
				t.Fatalf("Flags(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifierIsPure(t *testing.T) {
	t.Parallel()

	classifier := NewClassifier([]string{"egg"})
	for i := 0; i < 3; i++ {
		if !classifier.Flags("egg salad") {
			t.Fatalf("classification changed between calls")
		}
	}
}

func TestClassifierUnicodeTerms(t *testing.T) {
	t.Parallel()

	classifier := NewClassifier([]string{"café"})

	if !classifier.Flags("meet me at the CAFÉ!") {
		t.Fatalf("non-ASCII banned term must match case-folded")
	}
	if classifier.Flags("cafe") {
		t.Fatalf("ASCII lookalike must not match an accented term")
	}
}

func TestClassifierNoTerms(t *testing.T) {
	t.Parallel()

	classifier := NewClassifier(nil)
	if classifier.Flags("anything at all") {
		t.Fatalf("empty term set must never flag")
	}
}
