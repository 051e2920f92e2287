package listener

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const separators = "-–:_|/"

var (
	reYear        = regexp.MustCompile(`\b20[0-9]{2}\b`)
	reReplyPrefix = regexp.MustCompile(`(?i)^((re|res|fw|fwd|enc)\s*:\s*)+`)
	rePGA         = regexp.MustCompile(`(?i)\bPGA\b`)
)

// ParseSubject reads the reference year and institution from a subject such
// as "PGA 2025 - Fatec Votorantim". Without a year the current one is used;
// the institution is whatever remains and may be empty.
func ParseSubject(subject string, now time.Time) (year int, institution string) {
	year = now.Year()
	if m := reYear.FindString(subject); m != "" {
		year, _ = strconv.Atoi(m)
	}

	rest := reReplyPrefix.ReplaceAllString(strings.TrimSpace(subject), "")
	rest = rePGA.ReplaceAllString(rest, " ")
	rest = reYear.ReplaceAllString(rest, " ")

	var words []string
	for _, f := range strings.Fields(rest) {
		if strings.Trim(f, separators) != "" {
			words = append(words, f)
		}
	}
	return year, strings.Trim(strings.Join(words, " "), separators+" ")
}
