package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine_NoKeyTerms(t *testing.T) {
	// Without key terms the base score passes through unchanged.
	assert.InDelta(t, 0.42, Combine("docker ps", 0.42, nil), 1e-9)
}

func TestCombine_NoMatchPassesThrough(t *testing.T) {
	// Key terms absent from the command leave it unboosted.
	assert.InDelta(t, 0.3, Combine("ls -la", 0.3, []string{"docker", "redis"}), 1e-9)
}

func TestCombine_AllTermsMatch(t *testing.T) {
	// docker-compose up -d redis spans tool, datastore, and action.
	// All-match boost: 0.5 * 1.5 * 1.5 * 2.0
	got := Combine("docker-compose up -d redis", 0.5, []string{"docker", "redis", "up"})
	assert.InDelta(t, 0.5*1.5*1.5*2.0, got, 1e-9)
}

func TestCombine_PartialMatch(t *testing.T) {
	// One of two terms matches; no datastore term in the command, so the
	// concept boost is 1.5 (tool + action).
	got := Combine("docker build .", 0.4, []string{"docker", "redis"})
	assert.InDelta(t, 0.4*(1+0.5*1.5)*1.5, got, 1e-9)
}

func TestCombine_ConceptBoostMonotonic(t *testing.T) {
	// Equal base similarity: a command spanning all three concept
	// categories must strictly outrank one spanning none.
	base := 0.5
	terms := []string{"run"}
	all := Combine("docker run redis", base, terms)
	none := Combine("echo run", base, terms)
	assert.Greater(t, all, none)
}

func TestCombine_TwoCategoriesBeatOne(t *testing.T) {
	base := 0.5
	terms := []string{"docker"}
	two := Combine("docker start", base, terms)
	one := Combine("docker ps -a", base, terms)
	assert.Greater(t, two, one)
}

func TestLexicalScore_NoKeywords(t *testing.T) {
	assert.Zero(t, LexicalScore("docker ps", nil))
}

func TestLexicalScore_NoMatch(t *testing.T) {
	assert.Zero(t, LexicalScore("ls -la", []string{"docker", "redis"}))
}

func TestLexicalScore_PartialMatch(t *testing.T) {
	got := LexicalScore("docker ps", []string{"docker", "redis"})
	assert.InDelta(t, 0.5, got, 1e-9)
}

func TestLexicalScore_AdjacentPairBonus(t *testing.T) {
	// Both keywords match adjacently: (2/2 + 0.2) * 1.5, clamped to 1.0.
	got := LexicalScore("git commit -m fix", []string{"git", "commit"})
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestLexicalScore_ClampedToOne(t *testing.T) {
	keywords := []string{"docker", "compose", "up"}
	got := LexicalScore("docker compose up", keywords)
	assert.LessOrEqual(t, got, 1.0)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestLexicalScore_CaseAndPunctuationInsensitive(t *testing.T) {
	a := LexicalScore("Docker-Compose UP", []string{"docker", "compose"})
	b := LexicalScore("docker compose up", []string{"docker", "compose"})
	assert.InDelta(t, a, b, 1e-9)
}
