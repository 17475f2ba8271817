package pdf

import (
	"regexp"
	"strings"
)

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// Keyword sections run from "keyword" up to the next blank line.
var keywordsPattern = regexp.MustCompile(`(?is)(keyword.*?)(?:(?:\r*\n){2})`)

var keywordLabels = strings.NewReplacer(
	"\n", " ",
	"Keywords:", "",
	"KEYWORDS:", "",
	"Keywords", "",
	"KEYWORDS", "",
)

// ExtractText returns the text of the first maxPages pages (all pages when
// maxPages <= 0). Blocks are separated by a blank line and the lines of a
// block by a single newline. Unreadable pages are skipped.
func ExtractText(filePath string, maxPages int) (string, error) {
	doc, err := Open(filePath)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	if maxPages <= 0 || maxPages > doc.NumPage() {
		maxPages = doc.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page, err := doc.Page(i)
		if err != nil {
			continue
		}
		blocks, err := page.Blocks()
		if err != nil {
			continue
		}
		for _, b := range blocks {
			builder.WriteString(b.Text)
			builder.WriteString("\n\n")
		}
	}

	return builder.String(), nil
}

// ExtractKeywords returns the study's keyword list, or "" when the PDF has
// no keyword section.
func ExtractKeywords(filePath string) (string, error) {
	text, err := ExtractText(filePath, 0)
	if err != nil {
		return "", err
	}
	return FindKeywords(text), nil
}

// FindKeywords extracts the first keyword section from text with its label
// removed.
func FindKeywords(text string) string {
	m := keywordsPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(keywordLabels.Replace(m[1]))
}

// ExtractDOI searches the first few pages of a PDF for a DOI. No DOI is not
// an error.
func ExtractDOI(filePath string) (string, error) {
	// DOI is usually on the first page
	text, err := ExtractText(filePath, 3)
	if err != nil {
		return "", err
	}
	return findDOI(text), nil
}

// findDOI finds a DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}
