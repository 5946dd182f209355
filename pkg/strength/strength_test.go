package strength

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEvaluate_Scenarios(t *testing.T) {
	cases := []struct {
		name     string
		password string
		want     PasswordStrength
		eligible bool
	}{
		{"empty", "", PasswordStrength{Score: 0, Tier: TierWeak}, false},
		{"all classes", "Abcdef1!", PasswordStrength{Score: 100, Tier: TierStrong}, true},
		{"lower only short", "abc", PasswordStrength{Score: 20, Tier: TierWeak}, false},
		{"long lower", "abcdefgh", PasswordStrength{Score: 50, Tier: TierMedium}, true},
		{"long lower upper digit", "Secret123", PasswordStrength{Score: 85, Tier: TierStrong}, true},
		{"short upper lower", "Ab", PasswordStrength{Score: 40, Tier: TierMedium}, true},
		{"accented counts as symbol", "ção", PasswordStrength{Score: 35, Tier: TierWeak}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.password)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("strength mismatch (-want +got):\n%s", diff)
			}
			if got.Eligible() != tc.eligible {
				t.Fatalf("eligible = %v, want %v", got.Eligible(), tc.eligible)
			}
		})
	}
}

func TestScore_RangeAndMonotonic(t *testing.T) {
	base := []string{"", "a", "A", "1", "!", "aaaaaaaa", "Aa1!", "ÁÉÍÓÚáéíóú", "senha forte 123"}
	additions := []string{"A", "a", "7", "#", "xxxxxxxx"}

	for _, s := range base {
		score := Score(s)
		if score < 0 || score > MaxScore {
			t.Fatalf("Score(%q) = %d out of range", s, score)
		}
		for _, add := range additions {
			grown := Score(s + add)
			if grown < score {
				t.Fatalf("Score(%q)=%d decreased to %d after adding %q", s, score, grown, add)
			}
		}
	}
}

func TestClassify_Boundaries(t *testing.T) {
	cases := map[int]Tier{
		0:   TierWeak,
		39:  TierWeak,
		40:  TierMedium,
		79:  TierMedium,
		80:  TierStrong,
		100: TierStrong,
	}
	for score, want := range cases {
		if got := Classify(score); got != want {
			t.Fatalf("Classify(%d) = %s, want %s", score, got, want)
		}
	}
}

func TestTierLabels(t *testing.T) {
	if got := TierWeak.Label(); got != "Senha fraca" {
		t.Fatalf("weak label %q", got)
	}
	if got := TierMedium.Label(); got != "Senha média" {
		t.Fatalf("medium label %q", got)
	}
	if got := Evaluate("Abcdef1!").Label(); got != "Senha forte" {
		t.Fatalf("strong label %q", got)
	}
}
