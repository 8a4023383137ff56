package subject

import "testing"

func TestNormalizeFragments(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Português", Portuguese},
		{"Língua Portuguesa", Portuguese},
		{"  LÍNGUA PORTUGUESA  ", Portuguese},
		{"portugues", Portuguese},
		{"RLM", Logic},
		{"Raciocínio Lógico", Logic},
		{"raciocinio logico-matematico", Logic},
		{"Matemática", Logic},
		{"Lógica", Logic},
		{"Informática", Computing},
		{"NOÇÕES DE INFORMÁTICA", Computing},
		{"História e Geografia", HistoryGeo},
		{"História do Paraná", HistoryGeo},
		{"Geografia", HistoryGeo},
		{"Noções de Direito", LegalNotions},
		{"Direito Constitucional", LegalNotions},
		{"Legislação", Legislation},
		{"Legislação Específica", Legislation},
		{"\tlegislacao municipal\n", Legislation},
	}
	for _, tc := range cases {
		if got := Normalize(tc.raw); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeFirstRuleWins(t *testing.T) {
	// Mentions both "direito" and "legislação": the earlier rule applies.
	if got := Normalize("Legislação e Direito Administrativo"); got != LegalNotions {
		t.Fatalf("got %q, want %q", got, LegalNotions)
	}
}

func TestNormalizePassthroughAndFallback(t *testing.T) {
	if got := Normalize("Atualidades"); got != "Atualidades" {
		t.Fatalf("unrecognised label should pass through, got %q", got)
	}
	if got := Normalize("  Ética no Serviço Público "); got != "  Ética no Serviço Público " {
		t.Fatalf("passthrough must return the raw label unchanged, got %q", got)
	}
	for _, raw := range []string{"", "   ", "\n"} {
		if got := Normalize(raw); got != Other {
			t.Fatalf("Normalize(%q) = %q, want %q", raw, got, Other)
		}
	}
}

func TestNormalizeIsIdempotentOnCanonical(t *testing.T) {
	for _, c := range Canonical() {
		if got := Normalize(c); got != c {
			t.Errorf("Normalize(%q) = %q", c, got)
		}
		if !IsCanonical(c) {
			t.Errorf("IsCanonical(%q) = false", c)
		}
	}
	if IsCanonical(Other) {
		t.Fatal("Other is not a scored subject")
	}
}
