package pipeline

import (
	"strings"

	"golang.org/x/text/cases"

	"pga/internal"
)

// institutionSearchPages bounds how far into the document the cover and
// identification text is expected.
const institutionSearchPages = 3

// DetectInstitution returns the first registry name that occurs, ignoring
// case, in the text of the first pages. ok is false when none does.
func DetectInstitution(pages []internal.Page, registry []string) (name string, ok bool) {
	fold := cases.Fold()

	search := pages
	if len(search) > institutionSearchPages {
		search = search[:institutionSearchPages]
	}

	for _, page := range search {
		if page.Text == "" {
			continue
		}
		text := fold.String(page.Text)
		for _, candidate := range registry {
			if candidate == "" {
				continue
			}
			if strings.Contains(text, fold.String(candidate)) {
				return candidate, true
			}
		}
	}
	return "", false
}
