package rawimport

import (
	"sort"
	"strconv"
	"strings"

	"github.com/schollz/closestmatch"
	"golang.org/x/text/unicode/norm"

	"gstledger/internal/domain"
	"gstledger/internal/ledger"
)

// headerScanDepth bounds how far below the top the header row may sit; portal
// downloads put a few title lines above it.
const headerScanDepth = 10

// minRecognized is how many accepted headers a row needs to count as the header row.
const minRecognized = 3

// HeaderSuggestion pairs an unrecognized header with the closest accepted one.
type HeaderSuggestion struct {
	Header     string `json:"header"`
	Suggestion string `json:"suggestion,omitempty"`
}

func buildRows(grid [][]string, profile ledger.SourceProfile) (*Result, error) {
	at := findHeaderRow(grid, profile)
	if at < 0 {
		return nil, domain.ErrNoHeaderRow
	}
	headers := mergeHeaders(grid, at)

	res := &Result{Headers: headers}
	for _, line := range grid[at+1:] {
		if blank(line) {
			continue
		}
		row := make(domain.RawRow, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(line) {
				if v := cleanCell(line[i]); v != "" {
					row[h] = v
					continue
				}
			}
			row[h] = nil
		}
		res.Rows = append(res.Rows, row)
	}
	res.Unmapped = suggest(headers, profile)
	return res, nil
}

// findHeaderRow returns the first row within reach that names enough known columns.
func findHeaderRow(grid [][]string, profile ledger.SourceProfile) int {
	for i := 0; i < len(grid) && i < headerScanDepth; i++ {
		n := 0
		for _, cell := range grid[i] {
			if profile.Recognizes(cleanCell(cell)) {
				n++
			}
		}
		if n >= minRecognized {
			return i
		}
	}
	return -1
}

// mergeHeaders fills blank header cells from the row above. GSTR-2B groups tax
// columns under a merged caption, leaving gaps in the lower header row.
func mergeHeaders(grid [][]string, at int) []string {
	headers := make([]string, len(grid[at]))
	seen := make(map[string]int, len(headers))
	for i, cell := range grid[at] {
		h := cleanCell(cell)
		if h == "" && at > 0 && i < len(grid[at-1]) {
			h = cleanCell(grid[at-1][i])
		}
		if h != "" {
			// A repeated caption keeps the first column under its plain name.
			if n := seen[h]; n > 0 {
				seen[h] = n + 1
				h = h + " " + strconv.Itoa(n+1)
			} else {
				seen[h] = 1
			}
		}
		headers[i] = h
	}
	return headers
}

func suggest(headers []string, profile ledger.SourceProfile) []HeaderSuggestion {
	known := profile.Headers()
	keys := make([]string, 0, len(known))
	byKey := make(map[string]string, len(known))
	for _, h := range known {
		k := ledger.HeaderKey(h)
		if _, dup := byKey[k]; dup || k == "" {
			continue
		}
		byKey[k] = h
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cm := closestmatch.New(keys, []int{2, 3})

	var out []HeaderSuggestion
	for _, h := range headers {
		if h == "" || profile.Recognizes(h) {
			continue
		}
		s := HeaderSuggestion{Header: h}
		if match := cm.Closest(ledger.HeaderKey(h)); match != "" {
			s.Suggestion = byKey[match]
		}
		out = append(out, s)
	}
	return out
}

// cleanCell folds compatibility characters such as non-breaking spaces and
// collapses runs of whitespace.
func cleanCell(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

func blank(line []string) bool {
	for _, c := range line {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
