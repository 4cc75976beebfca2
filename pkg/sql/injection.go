package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// checkLiteralsForInjection runs libinjection over the contents of each
// single-quoted string literal in the query. The keyword scan in Sanitize
// already confines the statement kind; this is a second layer that catches
// stacked-query and comment tricks smuggled through literal values.
//
// Running libinjection over the whole statement would flag every legitimate
// query, so only literal contents are checked.
func checkLiteralsForInjection(sqlQuery string) error {
	for _, lit := range extractStringLiterals(sqlQuery) {
		if isSQLi, fingerprint := libinjection.IsSQLi(lit); isSQLi {
			return &InvalidQueryError{
				Reason: "string literal matches injection fingerprint " + string(fingerprint),
				SQL:    sqlQuery,
			}
		}
	}
	return nil
}

// extractStringLiterals returns the contents of each single-quoted literal.
// Doubled quotes ('') are unescaped to a single quote so libinjection sees
// the value the database would see.
func extractStringLiterals(sqlQuery string) []string {
	var literals []string
	var current []rune
	inString := false

	runes := []rune(sqlQuery)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if !inString {
			if ch == '\'' {
				inString = true
				current = current[:0]
			}
			continue
		}
		if ch == '\'' {
			// Doubled quote is an escaped quote inside the literal.
			if i+1 < len(runes) && runes[i+1] == '\'' {
				current = append(current, '\'')
				i++
				continue
			}
			inString = false
			literals = append(literals, string(current))
			continue
		}
		current = append(current, ch)
	}

	return literals
}
