package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	c := New(1000, 200)
	chunks := c.Chunk("CREATE TABLE users (id INT PRIMARY KEY, email TEXT);")
	require.Len(t, chunks, 1)
	require.Equal(t, "CREATE TABLE users (id INT PRIMARY KEY, email TEXT);", chunks[0])
}

func TestChunk_EmptyAndWhitespaceOnly(t *testing.T) {
	c := New(1000, 200)
	require.Empty(t, c.Chunk(""))
	require.Empty(t, c.Chunk("   \n\t  "))
}

func TestChunk_Deterministic(t *testing.T) {
	c := New(100, 20)
	text := strings.Repeat("The orders table references customers via customer_id. ", 40)
	first := c.Chunk(text)
	second := c.Chunk(text)
	require.Equal(t, first, second)
	require.Greater(t, len(first), 1)
}

func TestChunk_RespectsSizeAndPrefersSentenceBreaks(t *testing.T) {
	c := New(100, 20)
	text := strings.Repeat("Orders join customers on customer_id. ", 30)
	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		require.LessOrEqual(t, len([]rune(chunk)), 100)
		require.NotEmpty(t, chunk)
		require.True(t, strings.HasSuffix(chunk, "."), "chunk should end at a sentence boundary: %q", chunk)
	}
}

func TestChunk_WordBreakWhenNoSentence(t *testing.T) {
	c := New(50, 10)
	text := strings.Repeat("alpha beta gamma delta ", 20)
	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		require.LessOrEqual(t, len([]rune(chunk)), 50)
	}
}

func TestChunk_HardCutOnUnbrokenRun(t *testing.T) {
	c := New(100, 20)
	text := strings.Repeat("x", 450)
	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)
	var total int
	for _, chunk := range chunks {
		require.LessOrEqual(t, len([]rune(chunk)), 100)
		total += len(chunk)
	}
	// Overlapping windows re-read part of the input, never skip any of it.
	require.GreaterOrEqual(t, total, len(text))
}

// A sentence terminator stuck near the window start with no spaces after it
// forces the minimal one-rune advance; the scan must still terminate and
// still reach the tail of the input.
func TestChunk_TerminatesOnPathologicalInput(t *testing.T) {
	c := New(1000, 200)
	text := "ab." + strings.Repeat("x", 5000)
	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)
	last := chunks[len(chunks)-1]
	require.True(t, strings.HasSuffix(last, "x"))
}

func TestChunk_OverlapCarriesContext(t *testing.T) {
	c := New(100, 40)
	text := strings.Repeat("customers orders invoices payments shipments ", 20)
	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 2)
	for i := 1; i < len(chunks); i++ {
		head := chunks[i][:10]
		require.Contains(t, chunks[i-1], head, "chunk %d should re-open with the tail of chunk %d", i, i-1)
	}
}

func TestNew_InvalidConfigFallsBack(t *testing.T) {
	c := New(0, -1)
	require.Equal(t, DefaultChunkSize, c.chunkSize)
	require.Equal(t, DefaultChunkSize/5, c.overlap)

	c = New(100, 100)
	require.Equal(t, 20, c.overlap)
}

func TestChunk_NormalizesWhitespace(t *testing.T) {
	c := New(1000, 200)
	chunks := c.Chunk("SELECT\n\n  *\tFROM   users")
	require.Len(t, chunks, 1)
	require.Equal(t, "SELECT * FROM users", chunks[0])
}
