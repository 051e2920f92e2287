package listener

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSubject(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	cases := map[string]struct {
		year        int
		institution string
	}{
		"PGA 2025 - Fatec Votorantim":     {2025, "Fatec Votorantim"},
		"Fwd: PGA Fatec Sorocaba 2024":    {2024, "Fatec Sorocaba"},
		"RE: Enc: PGA-2023: Fatec Itu:":   {2023, "Fatec Itu"},
		"PGA 2025 - Fatec Mogi-Mirim":     {2025, "Fatec Mogi-Mirim"},
		"PGA":                             {2026, ""},
		"Plano de gestão Fatec São Roque": {2026, "Plano de gestão Fatec São Roque"},
		"":                                {2026, ""},
	}
	for subject, want := range cases {
		year, institution := ParseSubject(subject, now)
		assert.Equal(t, want.year, year, subject)
		assert.Equal(t, want.institution, institution, subject)
	}
}
