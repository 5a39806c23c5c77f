// Package chunking splits course text into bounded, overlapping chunks
// suitable for retrieval and prompt assembly.
package chunking

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Chunk is one retrievable piece of a course's normalized text.
// StartOffset and EndOffset are byte offsets into the normalized text,
// and Text is exactly that slice.
type Chunk struct {
	CourseID    string `json:"course_id"`
	Index       int    `json:"index"`
	Text        string `json:"text"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
}

// Config controls chunk sizing. Sizes are in bytes of normalized text.
type Config struct {
	TargetSize int
	Overlap    int
}

// DefaultConfig returns the standard 500/50 sizing.
func DefaultConfig() Config {
	return Config{TargetSize: 500, Overlap: 50}
}

// Chunker splits text into chunks. It is stateless and safe for concurrent use.
type Chunker struct {
	cfg Config
}

// New creates a Chunker. Out-of-range values fall back to the defaults.
func New(cfg Config) *Chunker {
	def := DefaultConfig()
	if cfg.TargetSize <= 0 {
		cfg.TargetSize = def.TargetSize
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.TargetSize {
		cfg.Overlap = min(def.Overlap, cfg.TargetSize/10)
	}
	return &Chunker{cfg: cfg}
}

// Config returns the effective configuration.
func (c *Chunker) Config() Config {
	return c.cfg
}

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	leadingSpace    = regexp.MustCompile(`(?m)^[ \t]+`)
	excessNewlines  = regexp.MustCompile(`\n{3,}`)
	paragraphBreak  = regexp.MustCompile(`\n\n+`)
	lineBreak       = regexp.MustCompile(`\n+`)
	sentenceEnd     = regexp.MustCompile(`[.!?]\s+`)
)

// Normalize canonicalizes whitespace: runs of spaces and tabs collapse to a
// single space, line endings become \n, leading whitespace is stripped from
// every line, and three or more newlines collapse to a paragraph break.
func Normalize(text string) string {
	s := strings.ReplaceAll(text, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = horizontalSpace.ReplaceAllString(s, " ")
	s = leadingSpace.ReplaceAllString(s, "")
	s = excessNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// span is a half-open byte range into the normalized text.
type span struct {
	start, end int
}

func (s span) len() int { return s.end - s.start }

// Chunk normalizes text and splits it into chunks with contiguous zero-based
// indices. Blank input yields no chunks. CourseID is left empty for the
// caller to fill in.
func (c *Chunker) Chunk(text string) []Chunk {
	n := Normalize(text)
	if n == "" {
		return nil
	}

	target, overlap := c.cfg.TargetSize, c.cfg.Overlap

	var pieces []span
	for _, seg := range c.segment(n) {
		if seg.len() > target {
			pieces = append(pieces, c.splitLarge(n, seg)...)
			continue
		}
		pieces = append(pieces, seg)
	}

	var chunks []Chunk
	emit := func(sp span) {
		sp = trimSpan(n, sp)
		if sp.len() == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Index:       len(chunks),
			Text:        n[sp.start:sp.end],
			StartOffset: sp.start,
			EndOffset:   sp.end,
		})
	}

	cur := span{start: -1}
	for _, p := range pieces {
		if cur.start >= 0 && p.end-cur.start > target {
			emit(cur)
			// Seed the next chunk with the tail of the one just closed,
			// shortened so the new piece still fits.
			next := max(cur.end-overlap, p.end-target, cur.start)
			if next >= cur.end {
				next = p.start
			} else {
				next = runeStartForward(n, next, cur.end)
			}
			cur.start = next
		}
		if cur.start < 0 {
			cur.start = p.start
		}
		cur.end = p.end
	}
	if cur.start >= 0 {
		emit(cur)
	}
	return chunks
}

// segment splits normalized text into paragraphs, falling back to lines and
// then sentence groups when the text has no paragraph structure.
func (c *Chunker) segment(n string) []span {
	whole := span{0, len(n)}
	segs := splitOn(n, whole, paragraphBreak)
	if len(segs) != 1 || len(n) <= c.cfg.TargetSize {
		return segs
	}
	segs = splitOn(n, whole, lineBreak)
	if len(segs) != 1 {
		return segs
	}
	return group(sentences(n, whole), c.cfg.TargetSize/2)
}

// splitLarge breaks a segment longer than the target size into pieces no
// longer than TargetSize-Overlap, preferring sentence boundaries.
func (c *Chunker) splitLarge(n string, seg span) []span {
	limit := c.cfg.TargetSize - c.cfg.Overlap
	sents := sentences(n, seg)
	if len(sents) <= 1 {
		return hardSplit(n, seg, limit)
	}

	var out []span
	for _, p := range group(sents, limit) {
		if p.len() > limit {
			out = append(out, hardSplit(n, p, limit)...)
			continue
		}
		out = append(out, p)
	}
	return out
}

func splitOn(n string, sp span, sep *regexp.Regexp) []span {
	var out []span
	prev := sp.start
	for _, loc := range sep.FindAllStringIndex(n[sp.start:sp.end], -1) {
		out = appendTrimmed(out, n, span{prev, sp.start + loc[0]})
		prev = sp.start + loc[1]
	}
	return appendTrimmed(out, n, span{prev, sp.end})
}

// sentences splits after '.', '!' or '?' followed by whitespace.
func sentences(n string, sp span) []span {
	var out []span
	prev := sp.start
	for _, loc := range sentenceEnd.FindAllStringIndex(n[sp.start:sp.end], -1) {
		out = appendTrimmed(out, n, span{prev, sp.start + loc[0] + 1})
		prev = sp.start + loc[1]
	}
	return appendTrimmed(out, n, span{prev, sp.end})
}

// group greedily merges consecutive spans while the merged span stays within limit.
func group(spans []span, limit int) []span {
	var out []span
	cur := span{start: -1}
	for _, s := range spans {
		if cur.start >= 0 && s.end-cur.start > limit {
			out = append(out, cur)
			cur = span{start: -1}
		}
		if cur.start < 0 {
			cur.start = s.start
		}
		cur.end = s.end
	}
	if cur.start >= 0 {
		out = append(out, cur)
	}
	return out
}

// hardSplit cuts sp into pieces of at most limit bytes, breaking at the last
// whitespace at or before each boundary when one exists.
func hardSplit(n string, sp span, limit int) []span {
	var out []span
	pos := sp.start
	for pos < sp.end {
		end := min(pos+limit, sp.end)
		if end < sp.end {
			if cut := strings.LastIndexAny(n[pos:end+1], " \n"); cut > 0 {
				end = pos + cut
			} else {
				end = runeStartBackward(n, end, pos)
			}
		}
		out = appendTrimmed(out, n, span{pos, end})
		pos = end
	}
	return out
}

func appendTrimmed(out []span, n string, sp span) []span {
	sp = trimSpan(n, sp)
	if sp.len() == 0 {
		return out
	}
	return append(out, sp)
}

func trimSpan(n string, sp span) span {
	for sp.start < sp.end && isSpace(n[sp.start]) {
		sp.start++
	}
	for sp.end > sp.start && isSpace(n[sp.end-1]) {
		sp.end--
	}
	return sp
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\n', '\t', '\r', '\f', '\v':
		return true
	}
	return false
}

// runeStartForward moves i forward to the next rune boundary, not past limit.
func runeStartForward(s string, i, limit int) int {
	for i < limit && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}

// runeStartBackward moves i back to a rune boundary strictly after floor.
// If none exists it moves forward instead so that progress is guaranteed.
func runeStartBackward(s string, i, floor int) int {
	j := i
	for j > floor && !utf8.RuneStart(s[j]) {
		j--
	}
	if j > floor {
		return j
	}
	return runeStartForward(s, i, len(s))
}
