package chunking

import (
	"fmt"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapse spaces and tabs", "a  \t b", "a b"},
		{"crlf", "a\r\nb", "a\nb"},
		{"excess newlines", "a\n\n\n\n\nb", "a\n\nb"},
		{"leading whitespace per line", "  a\n\t b", "a\nb"},
		{"blank line with spaces keeps paragraph", "a\n   \nb", "a\n\nb"},
		{"trim", "\n\n  a  \n\n", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestChunk_BlankInput(t *testing.T) {
	c := New(DefaultConfig())
	for _, in := range []string{"", "   ", "\n\n\t"} {
		if got := c.Chunk(in); len(got) != 0 {
			t.Errorf("Chunk(%q) returned %d chunks, want 0", in, len(got))
		}
	}
}

func TestChunk_SmallParagraphsPackIntoOneChunk(t *testing.T) {
	p1 := strings.Repeat("a", 240)
	p2 := strings.Repeat("b", 240)
	chunks := New(DefaultConfig()).Chunk(p1 + "\n\n" + p2)

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, p1) || !strings.Contains(chunks[0].Text, p2) {
		t.Fatal("chunk should contain both paragraphs")
	}
	if chunks[0].StartOffset != 0 || chunks[0].EndOffset != 482 {
		t.Fatalf("offsets = [%d,%d), want [0,482)", chunks[0].StartOffset, chunks[0].EndOffset)
	}
}

// Two 300-byte paragraphs cannot share a 500-byte chunk, so the second
// chunk starts with the 50-byte tail of the first.
func TestChunk_OverflowCarriesOverlap(t *testing.T) {
	p1 := strings.Repeat("a", 300)
	p2 := strings.Repeat("b", 300)
	chunks := New(DefaultConfig()).Chunk(p1 + "\n\n" + p2)

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].Text != p1 {
		t.Fatalf("first chunk should be the first paragraph")
	}
	if chunks[1].StartOffset != 250 {
		t.Fatalf("second chunk start = %d, want 250", chunks[1].StartOffset)
	}
	if !strings.HasPrefix(chunks[1].Text, strings.Repeat("a", 50)+"\n\n") {
		t.Fatalf("second chunk should begin with the overlap tail, got %q", chunks[1].Text[:60])
	}
	if got := chunks[0].EndOffset - chunks[1].StartOffset; got != 50 {
		t.Fatalf("overlap = %d, want 50", got)
	}
}

func TestChunk_UnbrokenTokenIsHardSplit(t *testing.T) {
	chunks := New(DefaultConfig()).Chunk(strings.Repeat("x", 1200))

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for _, ch := range chunks {
		if len(ch.Text) > 500 {
			t.Errorf("chunk %d has %d bytes", ch.Index, len(ch.Text))
		}
	}
	if chunks[len(chunks)-1].EndOffset != 1200 {
		t.Fatalf("last chunk should end at 1200, got %d", chunks[len(chunks)-1].EndOffset)
	}
}

func TestChunk_SentenceFallbackWithoutLineBreaks(t *testing.T) {
	var b strings.Builder
	for i := range 60 {
		fmt.Fprintf(&b, "Sentence number %d explains one more idea. ", i)
	}
	text := b.String()

	chunks := New(DefaultConfig()).Chunk(text)
	if len(chunks) < 4 {
		t.Fatalf("got %d chunks, expected the text to be split", len(chunks))
	}
	for _, ch := range chunks {
		if len(ch.Text) > 500 {
			t.Errorf("chunk %d has %d bytes", ch.Index, len(ch.Text))
		}
	}
	// Sentence groups mean the first chunk ends on a sentence boundary.
	if !strings.HasSuffix(chunks[0].Text, ".") {
		t.Errorf("first chunk should end at a sentence, got %q", chunks[0].Text)
	}
}

func TestChunk_LongParagraphSplitsOnWords(t *testing.T) {
	words := strings.Repeat("word ", 300) // one paragraph, no sentence ends
	text := "Intro paragraph.\n\n" + words + "\n\nOutro paragraph."

	chunks := New(DefaultConfig()).Chunk(text)
	n := Normalize(text)
	for _, ch := range chunks {
		if len(ch.Text) > 500 {
			t.Errorf("chunk %d has %d bytes", ch.Index, len(ch.Text))
		}
		if ch.Text != n[ch.StartOffset:ch.EndOffset] {
			t.Errorf("chunk %d text does not match its offsets", ch.Index)
		}
	}
}

func TestChunk_MultibyteTextKeepsValidUTF8(t *testing.T) {
	text := strings.Repeat("é", 700) // 1400 bytes, no whitespace
	for _, ch := range New(DefaultConfig()).Chunk(text) {
		if !strings.HasPrefix(ch.Text, "é") {
			t.Fatalf("chunk %d does not start on a rune boundary", ch.Index)
		}
		if !utf8.ValidString(ch.Text) {
			t.Fatalf("chunk %d contains invalid UTF-8", ch.Index)
		}
	}
}

func TestChunk_Deterministic(t *testing.T) {
	text := randomText(rand.New(rand.NewPCG(7, 11)), 4000)
	c := New(DefaultConfig())
	if !reflect.DeepEqual(c.Chunk(text), c.Chunk(text)) {
		t.Fatal("chunking the same text twice gave different results")
	}
}

func TestChunk_Invariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	configs := []Config{DefaultConfig(), {TargetSize: 120, Overlap: 20}, {TargetSize: 64, Overlap: 0}}

	for round := range 200 {
		cfg := configs[round%len(configs)]
		c := New(cfg)
		text := randomText(rng, 50+rng.IntN(3000))
		n := Normalize(text)
		chunks := c.Chunk(text)

		covered := make([]bool, len(n))
		for i, ch := range chunks {
			if ch.Index != i {
				t.Fatalf("round %d: chunk %d has index %d", round, i, ch.Index)
			}
			if len(ch.Text) > cfg.TargetSize {
				t.Fatalf("round %d: chunk %d has %d bytes (target %d)", round, i, len(ch.Text), cfg.TargetSize)
			}
			if ch.Text != n[ch.StartOffset:ch.EndOffset] {
				t.Fatalf("round %d: chunk %d text/offset mismatch", round, i)
			}
			if i > 0 {
				prev := chunks[i-1]
				if ch.StartOffset < prev.StartOffset || ch.EndOffset < prev.EndOffset {
					t.Fatalf("round %d: offsets decrease at chunk %d", round, i)
				}
				if ov := prev.EndOffset - ch.StartOffset; ov > cfg.Overlap {
					t.Fatalf("round %d: overlap %d exceeds %d at chunk %d", round, ov, cfg.Overlap, i)
				}
			}
			for p := ch.StartOffset; p < ch.EndOffset; p++ {
				covered[p] = true
			}
		}
		for p := range n {
			if !covered[p] && !isSpace(n[p]) {
				t.Fatalf("round %d: byte %d (%q) not covered by any chunk", round, p, n[p])
			}
		}
	}
}

// randomText builds prose with words of at most 12 letters, sentence ends,
// and occasional line and paragraph breaks.
func randomText(rng *rand.Rand, size int) string {
	var b strings.Builder
	for b.Len() < size {
		word := strings.Repeat(string(rune('a'+rng.IntN(26))), 1+rng.IntN(12))
		b.WriteString(word)
		switch r := rng.IntN(40); {
		case r == 0:
			b.WriteString(".\n\n")
		case r == 1:
			b.WriteString("\n")
		case r < 5:
			b.WriteString(". ")
		case r == 5:
			b.WriteString("  \t ")
		default:
			b.WriteString(" ")
		}
	}
	return b.String()
}
