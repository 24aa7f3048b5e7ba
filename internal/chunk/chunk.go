// Package chunk splits a unified diff into size-bounded pieces at file, then
// hunk, boundaries so each piece fits a reviewer turn's token budget.
package chunk

import (
	"regexp"
	"strings"
)

var (
	fileHeaderRe = regexp.MustCompile(`(?m)^diff --git `)
	hunkHeaderRe = regexp.MustCompile(`(?m)^@@ `)
)

// Tokens estimates the token count of s using the coarse heuristic
// len(s)/4 rounded up. Empty string is 0.
func Tokens(s string) int {
	if s == "" {
		return 0
	}
	return (len(s) + 3) / 4
}

// piece is one file's diff, or one bin-packed group of a file's hunks,
// always carrying the file header when the source diff had one.
type piece struct {
	text string
}

// Chunk splits diff into pieces whose token estimate stays within maxTokens.
// Concatenating the result with "\n" reproduces diff exactly, except when a
// single file's hunks are split across multiple output chunks: each such
// chunk repeats that file's header, so the join contains bytes (the
// repeated header) not present in diff. maxTokens <= 0 disables splitting:
// the whole diff is returned as a single chunk.
func Chunk(diff string, maxTokens int) []string {
	if strings.TrimSpace(diff) == "" {
		return nil
	}
	if maxTokens <= 0 {
		return []string{diff}
	}

	files := splitFiles(diff)
	if len(files) == 0 {
		// No `diff --git` markers at all: treat the whole input as one file.
		files = []string{diff}
	}

	var pieces []piece
	for _, f := range files {
		if Tokens(f) <= maxTokens {
			pieces = append(pieces, piece{text: f})
			continue
		}
		pieces = append(pieces, splitOversizedFile(f, maxTokens)...)
	}

	return binPack(pieces, maxTokens)
}

// splitFiles breaks diff at `diff --git ` boundaries. Every segment but the
// last has its trailing separator newline stripped, since that newline is
// restored by the caller's "\n" join; the last segment keeps whatever
// trailing bytes the source diff itself ended with, so concatenation
// reproduces diff exactly even when diff ends in "\n".
func splitFiles(diff string) []string {
	idxs := fileHeaderRe.FindAllStringIndex(diff, -1)
	if len(idxs) == 0 {
		return nil
	}
	var out []string
	for i, loc := range idxs {
		start := loc[0]
		end := len(diff)
		if i+1 < len(idxs) {
			end = idxs[i+1][0]
		}
		seg := diff[start:end]
		if i+1 < len(idxs) {
			seg = strings.TrimSuffix(seg, "\n")
		}
		out = append(out, seg)
	}
	return out
}

// splitOversizedFile bin-packs one file's hunks into chunks that each carry
// the file header. A file with a single hunk (or no hunk markers at all,
// e.g. a binary or rename diff) is never split further.
func splitOversizedFile(file string, maxTokens int) []piece {
	hunkIdxs := hunkHeaderRe.FindAllStringIndex(file, -1)
	if len(hunkIdxs) <= 1 {
		return []piece{{text: file}}
	}

	header := file[:hunkIdxs[0][0]]
	header = strings.TrimSuffix(header, "\n")

	var hunks []string
	for i, loc := range hunkIdxs {
		start := loc[0]
		end := len(file)
		if i+1 < len(hunkIdxs) {
			end = hunkIdxs[i+1][0]
		}
		seg := file[start:end]
		if i+1 < len(hunkIdxs) {
			seg = strings.TrimSuffix(seg, "\n")
		}
		hunks = append(hunks, seg)
	}

	var pieces []piece
	var current []string
	currentTokens := Tokens(header)

	flush := func() {
		if len(current) == 0 {
			return
		}
		body := strings.Join(append([]string{header}, current...), "\n")
		pieces = append(pieces, piece{text: body})
		current = nil
		currentTokens = Tokens(header)
	}

	for _, h := range hunks {
		ht := Tokens(h)
		if len(current) > 0 && currentTokens+ht > maxTokens {
			flush()
		}
		current = append(current, h)
		currentTokens += ht
	}
	flush()

	return pieces
}

// binPack greedily groups pieces into output chunks, opening a new chunk
// whenever appending the next piece would exceed maxTokens. A single piece
// that alone exceeds the budget is emitted whole (invariant 5).
func binPack(pieces []piece, maxTokens int) []string {
	var chunks []string
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, "\n"))
		current = nil
		currentTokens = 0
	}

	for _, p := range pieces {
		pt := Tokens(p.text)
		if len(current) > 0 && currentTokens+pt > maxTokens {
			flush()
		}
		current = append(current, p.text)
		currentTokens += pt
	}
	flush()

	return chunks
}
