package contacts

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

func newCollator() *collate.Collator {
	return collate.New(language.French, collate.IgnoreCase)
}

// Sort orders contacts for display: favourites first, then by name using
// French collation without regard to case.
func Sort(list []Contact) {
	c := newCollator()
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].IsFavorite != list[j].IsFavorite {
			return list[i].IsFavorite
		}
		return c.CompareString(list[i].Name, list[j].Name) < 0
	})
}

// Group is one section of the alphabetical index.
type Group struct {
	Letter   string    `json:"letter"`
	Contacts []Contact `json:"contacts"`
}

// GroupByInitial buckets contacts by the upper-cased first character of their
// name. Sections are ordered by letter; each keeps the input order.
func GroupByInitial(list []Contact) []Group {
	index := map[string]int{}
	var groups []Group
	for _, contact := range list {
		letter := initial(contact.Name)
		pos, ok := index[letter]
		if !ok {
			pos = len(groups)
			index[letter] = pos
			groups = append(groups, Group{Letter: letter})
		}
		groups[pos].Contacts = append(groups[pos].Contacts, contact)
	}

	c := newCollator()
	sort.SliceStable(groups, func(i, j int) bool {
		return c.CompareString(groups[i].Letter, groups[j].Letter) < 0
	})
	return groups
}

func initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "#"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r))
}
