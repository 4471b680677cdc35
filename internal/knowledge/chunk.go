package knowledge

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const MaxPassageRunes = 1500

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "can": true, "do": true, "does": true, "for": true,
	"from": true, "how": true, "i": true, "in": true, "is": true, "it": true,
	"my": true, "of": true, "on": true, "or": true, "should": true, "the": true,
	"to": true, "what": true, "when": true, "which": true, "who": true,
	"why": true, "with": true, "you": true, "your": true,
}

// Chunk splits text into passages of at most max runes. Paragraphs are kept
// together where they fit; longer ones are split between words.
func Chunk(text string, max int) []string {
	var chunks []string
	var cur strings.Builder

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
	}
	add := func(piece, sep string) {
		if cur.Len() > 0 && utf8.RuneCountInString(cur.String())+len(sep)+utf8.RuneCountInString(piece) > max {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteString(sep)
		}
		cur.WriteString(piece)
	}

	for _, para := range paragraphBreak.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= max {
			add(para, "\n\n")
			continue
		}
		flush()
		for _, word := range strings.Fields(para) {
			for utf8.RuneCountInString(word) > max {
				r := []rune(word)
				add(string(r[:max]), " ")
				word = string(r[max:])
			}
			add(word, " ")
		}
		flush()
	}
	flush()
	return chunks
}

// Terms lowercases query and drops punctuation, stop words and duplicates.
func Terms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if stopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}

// MatchExpr builds an FTS5 query matching any of the terms.
func MatchExpr(query string) string {
	terms := Terms(query)
	for i, t := range terms {
		terms[i] = `"` + t + `"`
	}
	return strings.Join(terms, " OR ")
}
