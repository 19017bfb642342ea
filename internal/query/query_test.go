package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "docker compose up d", Normalize("Docker-Compose   up -d!"))
	assert.Equal(t, "git_hooks dir", Normalize("git_hooks/dir"))
	assert.Equal(t, "", Normalize("!!! ---"))
}

func TestExtractKeywords(t *testing.T) {
	keywords := ExtractKeywords("how to start the redis server")
	assert.Equal(t, []string{"start", "redis", "server"}, keywords)
}

func TestExtractKeywords_DropsShortTokens(t *testing.T) {
	keywords := ExtractKeywords("ls -l a b xy")
	assert.Equal(t, []string{"ls", "xy"}, keywords)
}

func TestExtractKeywords_KeepsDuplicates(t *testing.T) {
	keywords := ExtractKeywords("redis redis restart")
	assert.Equal(t, []string{"redis", "redis", "restart"}, keywords)
}

func TestExtractKeywords_Empty(t *testing.T) {
	assert.Empty(t, ExtractKeywords("the a an"))
	assert.Empty(t, ExtractKeywords(""))
}

func TestExtractKeyTerms_PhrasePrecedence(t *testing.T) {
	terms := ExtractKeyTerms("git commit my changes")

	// The phrase must come before its standalone constituents.
	phraseIdx, gitIdx, commitIdx := -1, -1, -1
	for i, term := range terms {
		switch term {
		case "git commit":
			phraseIdx = i
		case "git":
			gitIdx = i
		case "commit":
			commitIdx = i
		}
	}
	assert.GreaterOrEqual(t, phraseIdx, 0, "phrase should be extracted")
	assert.Greater(t, gitIdx, phraseIdx)
	assert.Greater(t, commitIdx, phraseIdx)
}

func TestExtractKeyTerms_VocabularyOnly(t *testing.T) {
	terms := ExtractKeyTerms("start redis docker")
	assert.Contains(t, terms, "docker")
	assert.Contains(t, terms, "redis")
	assert.Contains(t, terms, "start")
	assert.NotContains(t, terms, "frobnicate")
}

func TestExtractKeyTerms_Deduplicates(t *testing.T) {
	terms := ExtractKeyTerms("docker docker docker")
	count := 0
	for _, term := range terms {
		if term == "docker" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestExtractKeyTerms_NoVocabulary(t *testing.T) {
	assert.Empty(t, ExtractKeyTerms("xyzzy plugh"))
}

func TestIsStopword(t *testing.T) {
	assert.True(t, IsStopword("the"))
	assert.False(t, IsStopword("redis"))
}
