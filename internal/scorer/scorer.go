// Package scorer boosts raw similarity scores with keyword and concept
// evidence from the command text.
package scorer

import "strings"

// BoostFactor is the multiplier applied per key-term evidence.
const BoostFactor = 1.5

// Concept categories. A command that spans more than one category is more
// likely to be the operational command the user remembers.
var (
	toolTerms      = []string{"docker", "git", "npm", "python", "kubectl", "terraform", "ansible"}
	datastoreTerms = []string{"redis", "postgres", "mysql", "mongodb", "elasticsearch", "cassandra"}
	actionTerms    = []string{"run", "start", "stop", "deploy", "build", "install", "update", "up", "down"}
)

// Combine merges a base similarity score with key-term evidence found in
// the command text. With no matching key terms the base score passes
// through unchanged; the concept boost only ever amplifies an existing
// keyword match.
func Combine(command string, base float64, keyTerms []string) float64 {
	commandLower := strings.ToLower(command)

	matched := 0
	for _, term := range keyTerms {
		if strings.Contains(commandLower, term) {
			matched++
		}
	}

	if len(keyTerms) > 0 && matched == len(keyTerms) {
		return base * BoostFactor * 1.5 * conceptBoost(commandLower)
	}
	if matched > 0 {
		pct := float64(matched) / float64(len(keyTerms))
		return base * (1 + pct*BoostFactor) * conceptBoost(commandLower)
	}
	return base
}

// conceptBoost rewards commands whose text spans concept categories:
// 2.0 for all three of tool/datastore/action, 1.5 for exactly two, 1.0
// otherwise.
func conceptBoost(commandLower string) float64 {
	hasTool := containsAny(commandLower, toolTerms)
	hasDatastore := containsAny(commandLower, datastoreTerms)
	hasAction := containsAny(commandLower, actionTerms)

	if hasTool && hasDatastore && hasAction {
		return 2.0
	}
	if (hasTool && hasDatastore) || (hasTool && hasAction) || (hasDatastore && hasAction) {
		return 1.5
	}
	return 1.0
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
