package util

import "strings"

var codeReplacer = strings.NewReplacer(
	" ", "-",
	"ç", "c",
	"ã", "a",
	"á", "a",
	"é", "e",
	"í", "i",
	"ó", "o",
	"ú", "u",
)

// CollapseNewlines trims input and turns embedded line breaks into spaces.
func CollapseNewlines(input string) string {
	return strings.ReplaceAll(strings.TrimSpace(input), "\n", " ")
}

// UnitCode derives a unit code from an institution name, e.g.
// "Fatec São Paulo" -> "fatec-sao-paulo". Only the accents used in
// institution names are folded; anything else is kept as is.
func UnitCode(name string) string {
	if name == "" {
		return ""
	}
	return codeReplacer.Replace(strings.ToLower(name))
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
