// Package sortname converts person names between display order
// ("Stephen King") and library sort order ("King, Stephen"). The filer
// uses Display to undo "Surname, Given" forms that providers return;
// ForPerson produces the sort form for the CSV index.
package sortname

import (
	"strings"
)

// GenerationalSuffixes are preserved as they distinguish different people.
var GenerationalSuffixes = []string{
	"Jr.", "Jr", "Sr.", "Sr", "Junior", "Senior", "II", "III", "IV",
}

// AcademicSuffixes are credentials, not part of the name, and are stripped.
var AcademicSuffixes = []string{
	"PhD", "Ph.D", "Ph.D.", "MD", "M.D", "M.D.", "JD", "J.D", "J.D.",
	"MBA", "M.B.A.", "MA", "M.A.", "BA", "B.A.", "Esq", "Esq.",
}

// Prefixes are honorifics stripped from either form.
var Prefixes = []string{
	"Dr.", "Dr", "Mr.", "Mr", "Mrs.", "Mrs", "Ms.", "Ms",
	"Prof.", "Prof", "Rev.", "Rev", "Sir", "Dame", "Lord", "Lady",
}

// Particles stay attached to the given name in library style:
// "Ludwig van Beethoven" -> "Beethoven, Ludwig van".
var Particles = []string{
	"van", "von", "de", "da", "di", "du", "del", "della", "la", "le",
	"el", "al", "bin", "ibn",
}

// Display converts a "Surname, Given" name to "Given Surname". Names
// without a comma are returned trimmed; a trailing generational suffix
// after a second comma is kept at the end.
//
// Examples:
//   - "King, Stephen" -> "Stephen King"
//   - "Beethoven, Ludwig van" -> "Ludwig van Beethoven"
//   - "King, Martin Luther, Jr." -> "Martin Luther King Jr."
func Display(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || !strings.Contains(name, ",") {
		return name
	}

	parts := strings.Split(name, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	surname := parts[0]
	given := ""
	var suffixes []string
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		if isGenerationalSuffix(p) {
			suffixes = append(suffixes, p)
		} else if given == "" {
			given = p
		} else {
			given += " " + p
		}
	}

	if given == "" {
		return surname
	}
	out := given + " " + surname
	if len(suffixes) > 0 {
		out += " " + strings.Join(suffixes, " ")
	}
	return strings.TrimSpace(out)
}

// ForPerson generates a sort name from a display name: "Last, First"
// with honorifics stripped, academic suffixes dropped, generational
// suffixes preserved, and particles moved to the end with the given name.
func ForPerson(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	parts := strings.Fields(name)
	if len(parts) <= 1 {
		return name
	}

	for len(parts) > 1 && matchAny(parts[0], Prefixes) {
		parts = parts[1:]
	}

	var generational []string
suffixes:
	for len(parts) > 1 {
		last := parts[len(parts)-1]
		switch {
		case isGenerationalSuffix(last):
			generational = append([]string{strings.TrimSuffix(last, ",")}, generational...)
			parts = parts[:len(parts)-1]
		case matchAny(strings.TrimSuffix(last, ","), AcademicSuffixes):
			parts = parts[:len(parts)-1]
		default:
			break suffixes
		}
	}

	if len(parts) == 1 {
		out := parts[0]
		if len(generational) > 0 {
			out += ", " + strings.Join(generational, ", ")
		}
		return out
	}

	surname := parts[len(parts)-1]
	given := parts[:len(parts)-1]

	// Pull trailing particles over to the given-name side.
	var particles []string
	for len(given) > 0 && matchAny(given[len(given)-1], Particles) {
		particles = append([]string{given[len(given)-1]}, particles...)
		given = given[:len(given)-1]
	}

	var b strings.Builder
	b.WriteString(surname)
	if len(given) > 0 || len(particles) > 0 {
		b.WriteString(", ")
		b.WriteString(strings.TrimSpace(strings.Join(given, " ") + " " + strings.Join(particles, " ")))
	}
	if len(generational) > 0 {
		b.WriteString(", ")
		b.WriteString(strings.Join(generational, ", "))
	}
	return b.String()
}

func isGenerationalSuffix(word string) bool {
	return matchAny(strings.TrimSuffix(word, ","), GenerationalSuffixes)
}

func matchAny(word string, list []string) bool {
	for _, w := range list {
		if strings.EqualFold(word, w) {
			return true
		}
	}
	return false
}
