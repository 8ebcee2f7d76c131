package chunker

import (
	"strings"
	"testing"
)

// TestSplit_KnownWindowing verifies the exact offset formula on a known string.
func TestSplit_KnownWindowing(t *testing.T) {
	c, err := NewChunker(4, 1)
	if err != nil {
		t.Fatalf("NewChunker failed: %v", err)
	}

	chunks := c.Split("ABCDEFGHIJ")

	want := []string{"ABCD", "DEFG", "GHIJ"}
	if len(chunks) != len(want) {
		t.Fatalf("Expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, w := range want {
		if chunks[i].Content != w {
			t.Errorf("Chunk %d: expected %q, got %q", i, w, chunks[i].Content)
		}
		if chunks[i].Index != i {
			t.Errorf("Chunk %d: expected index %d, got %d", i, i, chunks[i].Index)
		}
	}
}

// TestSplit_EmptyInput verifies empty text yields zero chunks.
func TestSplit_EmptyInput(t *testing.T) {
	c := NewDefaultChunker()
	if chunks := c.Split(""); len(chunks) != 0 {
		t.Errorf("Expected no chunks for empty input, got %d", len(chunks))
	}
}

// TestSplit_ShortInput verifies text no longer than one window is a single chunk.
func TestSplit_ShortInput(t *testing.T) {
	c, err := NewChunker(100, 20)
	if err != nil {
		t.Fatalf("NewChunker failed: %v", err)
	}

	input := "short text"
	chunks := c.Split(input)
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != input {
		t.Errorf("Expected chunk to equal input, got %q", chunks[0].Content)
	}

	// Exactly one window long is still a single chunk.
	exact := strings.Repeat("x", 100)
	chunks = c.Split(exact)
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk for window-sized input, got %d", len(chunks))
	}
	if chunks[0].Content != exact {
		t.Errorf("Window-sized chunk does not equal input")
	}
}

// TestSplit_Reconstruction verifies that dropping each chunk's leading overlap
// and concatenating reconstructs the source exactly.
func TestSplit_Reconstruction(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
		text    string
	}{
		{"no overlap", 5, 0, "the quick brown fox jumps over the lazy dog"},
		{"small overlap", 4, 1, "ABCDEFGHIJ"},
		{"large overlap", 10, 7, strings.Repeat("abcdefg", 13)},
		{"defaults", DefaultChunkSize, DefaultOverlap, strings.Repeat("lorem ipsum dolor sit amet ", 200)},
		{"uneven tail", 8, 3, "0123456789abcdef0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewChunker(tc.size, tc.overlap)
			if err != nil {
				t.Fatalf("NewChunker failed: %v", err)
			}

			chunks := c.Split(tc.text)

			var b strings.Builder
			for i, ch := range chunks {
				if len(ch.Content) > tc.size {
					t.Errorf("Chunk %d longer than window: %d > %d", i, len(ch.Content), tc.size)
				}
				if i == 0 {
					b.WriteString(ch.Content)
					continue
				}
				// Later chunks repeat the previous chunk's tail; a chunk
				// shorter than the overlap is fully contained in it.
				if len(ch.Content) > tc.overlap {
					b.WriteString(ch.Content[tc.overlap:])
				}
			}
			if b.String() != tc.text {
				t.Errorf("Reconstruction mismatch:\nwant %q\ngot  %q", tc.text, b.String())
			}
		})
	}
}

// TestSplit_OverlapIsShared verifies consecutive chunks share exactly the
// configured number of characters of source text.
func TestSplit_OverlapIsShared(t *testing.T) {
	c, err := NewChunker(6, 2)
	if err != nil {
		t.Fatalf("NewChunker failed: %v", err)
	}

	chunks := c.Split("abcdefghijklmnopqrstuvwxyz")
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Content
		tail := prev[len(prev)-2:]
		if !strings.HasPrefix(chunks[i].Content, tail) {
			t.Errorf("Chunk %d does not start with previous chunk's tail %q: %q", i, tail, chunks[i].Content)
		}
	}
}

// TestSplit_Deterministic verifies repeated runs yield identical output.
func TestSplit_Deterministic(t *testing.T) {
	c := NewDefaultChunker()
	text := strings.Repeat("determinism matters for chunk ids. ", 100)

	first := c.Split(text)
	second := c.Split(text)
	if len(first) != len(second) {
		t.Fatalf("Chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Chunk %d differs between runs", i)
		}
	}
}

// TestNewChunker_InvalidParams rejects bad size/overlap combinations.
func TestNewChunker_InvalidParams(t *testing.T) {
	if _, err := NewChunker(0, 0); err == nil {
		t.Error("Expected error for zero size")
	}
	if _, err := NewChunker(10, 10); err == nil {
		t.Error("Expected error for overlap == size")
	}
	if _, err := NewChunker(10, -1); err == nil {
		t.Error("Expected error for negative overlap")
	}
}
