package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_EmptyAndWhitespace(t *testing.T) {
	assert.Nil(t, Chunk("", 100))
	assert.Nil(t, Chunk("   \n\t", 100))
}

func TestChunk_NonPositiveBudget(t *testing.T) {
	d := "diff --git a/x b/x\n@@ -1 +1 @@\n-a\n+b\n"
	assert.Equal(t, []string{d}, Chunk(d, 0))
	assert.Equal(t, []string{d}, Chunk(d, -5))
}

func smallDiff(path string, body string) string {
	return "diff --git a/" + path + " b/" + path + "\n--- a/" + path + "\n+++ b/" + path + "\n" + body
}

func TestChunk_SmallDiffFitsOneChunk(t *testing.T) {
	d := smallDiff("a.go", "@@ -1 +1 @@\n-x\n+y\n")
	got := Chunk(d, 1000)
	require.Len(t, got, 1)
	assert.Equal(t, d, got[0])
}

func TestChunk_EachChunkStartsWithFileHeader(t *testing.T) {
	f1 := smallDiff("a.go", "@@ -1 +1 @@\n-x\n+y\n")
	f2 := smallDiff("b.go", "@@ -1 +1 @@\n-x\n+y\n")
	d := f1 + "\n" + f2

	// Force a split between the two files with a tiny budget.
	got := Chunk(d, Tokens(f1))
	for _, c := range got {
		assert.True(t, strings.HasPrefix(c, "diff --git "))
	}
}

func TestChunk_JoinReproducesOriginal_WhenNoHunkSplitting(t *testing.T) {
	f1 := smallDiff("a.go", "@@ -1 +1 @@\n-x\n+y\n")
	f2 := smallDiff("b.go", "@@ -1 +1 @@\n-x\n+y\n")
	d := f1 + "\n" + f2

	got := Chunk(d, 1_000_000)
	assert.Equal(t, d, strings.Join(got, "\n"))
}

func TestChunk_SingleOversizedHunkNotSplitFurther(t *testing.T) {
	hunk := "@@ -1,50 +1,50 @@\n" + strings.Repeat("-line\n+line\n", 40)
	d := smallDiff("big.go", hunk)

	got := Chunk(d, 10) // budget far smaller than the single hunk
	require.Len(t, got, 1)
	assert.Equal(t, d, got[0])
}

func TestChunk_MultiHunkFileSplitsAcrossChunks(t *testing.T) {
	hunk1 := "@@ -1,3 +1,3 @@\n-a\n+b\n"
	hunk2 := "@@ -50,3 +50,3 @@\n-c\n+d\n"
	d := smallDiff("multi.go", hunk1+hunk2)

	got := Chunk(d, Tokens("diff --git a/multi.go b/multi.go\n--- a/multi.go\n+++ b/multi.go")+Tokens(hunk1))
	require.True(t, len(got) >= 1)
	for _, c := range got {
		assert.True(t, strings.HasPrefix(c, "diff --git "))
	}
}
