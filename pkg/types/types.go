// Package types defines data structures shared across cmdrecall packages.
package types

// CommandRecord is one captured shell command as stored by the capture
// shell. Records are immutable once written; cmdrecall only reads them.
type CommandRecord struct {
	ID        int64
	Command   string
	Timestamp string
	Cwd       string
	ExitCode  int
	Keywords  string // optional, empty when the capture shell recorded none
}

// EnrichedText returns the text fed to similarity backends. Stored keywords
// are repeated to double their term frequency weight.
func (c *CommandRecord) EnrichedText() string {
	if c.Keywords == "" {
		return c.Command
	}
	return c.Command + " " + c.Keywords + " " + c.Keywords
}

// ScoredResult is one ranked command returned from a query. It is derived
// per query and never persisted.
type ScoredResult struct {
	CommandID int64
	Command   string
	Timestamp string
	Cwd       string
	ExitCode  int
	Score     float64
}
