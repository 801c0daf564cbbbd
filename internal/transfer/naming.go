package transfer

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/angelmondragon/mycrew-backend/internal/filters"
	"github.com/angelmondragon/mycrew-backend/pkg/enums"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	fileNamePrefix       = "MyCrew"
	fileNameDefaultToken = "Tous"
)

var (
	unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	repeatedUnders  = regexp.MustCompile(`_{2,}`)
)

// FileName derives a descriptive name for a list export from its filter
// description: the job, the country, and a single region or a region count,
// then the contact count and the export date.
func FileName(description string, count int, exportedAt time.Time, format enums.TransferFormat) string {
	var tokens []string
	for _, part := range strings.Split(description, filters.DescriptionSeparator) {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, filters.LabelJob):
			tokens = append(tokens, strings.TrimSpace(strings.TrimPrefix(part, filters.LabelJob)))
		case strings.HasPrefix(part, filters.LabelCountry):
			tokens = append(tokens, strings.TrimSpace(strings.TrimPrefix(part, filters.LabelCountry)))
		case strings.HasPrefix(part, filters.LabelRegions):
			regions := strings.Split(strings.TrimPrefix(part, filters.LabelRegions), ",")
			if len(regions) == 1 {
				tokens = append(tokens, strings.TrimSpace(regions[0]))
			} else {
				tokens = append(tokens, strconv.Itoa(len(regions))+"_regions")
			}
		}
	}
	if len(tokens) == 0 {
		tokens = []string{fileNameDefaultToken}
	}

	parts := []string{fileNamePrefix}
	for _, token := range tokens {
		if safe := SafeFileToken(token); safe != "" {
			parts = append(parts, safe)
		}
	}
	parts = append(parts, strconv.Itoa(count)+"_contacts", exportedAt.Format("2006-01-02"))

	name := repeatedUnders.ReplaceAllString(strings.Join(parts, "_"), "_")
	return name + "." + format.Extension()
}

// ContactFileName names a single-contact JSON export.
func ContactFileName(name string) string {
	safe := SafeFileToken(name)
	if safe == "" {
		safe = "Contact"
	}
	return "Contact_" + safe + ".json"
}

// SafeFileToken folds accents, turns whitespace into underscores and strips
// everything outside [a-zA-Z0-9_-].
func SafeFileToken(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	folded = strings.Join(strings.Fields(folded), "_")
	folded = strings.NewReplacer("/", "-", `\`, "-").Replace(folded)
	folded = unsafeFileChars.ReplaceAllString(folded, "")
	folded = repeatedUnders.ReplaceAllString(folded, "_")
	return strings.Trim(folded, "_")
}

// DetectFormat infers the import format from a file name.
func DetectFormat(fileName string) (enums.TransferFormat, bool) {
	return enums.FormatFromExtension(filepath.Ext(fileName))
}
