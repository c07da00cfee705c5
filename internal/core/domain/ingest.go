package domain

import (
	"fmt"
	"strings"
	"time"
)

// IngestOptions controls one ingestion run.
type IngestOptions struct {
	// Force bypasses the source-level hash skip.
	Force bool

	// Progress, if set, is called before and after each source in a batch.
	Progress func(IngestEvent)
}

// IngestEvent reports batch progress.
type IngestEvent struct {
	// Source is the source name.
	Source string

	// Done is false when the source is about to start.
	Done bool

	// Result is set when the source completed.
	Result *IngestResult

	// Err is set when the source failed.
	Err error
}

// IngestResult is the outcome of ingesting one source.
type IngestResult struct {
	// Source is the source name.
	Source string

	// Total is the number of chunks in the current parse.
	Total int

	// Embedded is the number of chunks re-embedded and written.
	Embedded int

	// Skipped is the number of chunks whose content was unchanged.
	Skipped int

	// Deleted is the number of orphaned chunks removed.
	Deleted int

	// Unchanged is true when the source hash matched and nothing was parsed.
	Unchanged bool

	// Duration is the wall time of the run.
	Duration time.Duration
}

// Summary renders the one-line result used by the CLI.
func (r IngestResult) Summary() string {
	if r.Unchanged {
		return "  unchanged, skipping"
	}
	return fmt.Sprintf("  %d chunks: %d embedded, %d skipped, %d deleted (%s)",
		r.Total, r.Embedded, r.Skipped, r.Deleted, FormatDuration(r.Duration))
}

// SourceFailure records a per-source error in a batch.
type SourceFailure struct {
	Source string
	Err    error
}

// BatchSummary aggregates a registry ingestion.
type BatchSummary struct {
	// Results holds the per-source outcomes in processing order.
	Results []IngestResult

	// Failures holds sources that failed recoverably.
	Failures []SourceFailure

	// Duration is the wall time of the whole batch.
	Duration time.Duration
}

// Processed returns the number of sources that completed.
func (b BatchSummary) Processed() int {
	return len(b.Results)
}

// Unchanged returns how many sources were skipped by source hash.
func (b BatchSummary) Unchanged() int {
	n := 0
	for _, r := range b.Results {
		if r.Unchanged {
			n++
		}
	}
	return n
}

// Totals sums chunk counts across all results.
func (b BatchSummary) Totals() (total, embedded, skipped, deleted int) {
	for _, r := range b.Results {
		total += r.Total
		embedded += r.Embedded
		skipped += r.Skipped
		deleted += r.Deleted
	}
	return total, embedded, skipped, deleted
}

// String renders the closing summary line.
func (b BatchSummary) String() string {
	total, embedded, skipped, deleted := b.Totals()

	var sb strings.Builder
	sb.WriteString("Done. ")
	if n := b.Processed(); n == 1 {
		sb.WriteString("1 entry processed")
	} else {
		fmt.Fprintf(&sb, "%d entries processed", n)
	}
	if u := b.Unchanged(); u > 0 {
		fmt.Fprintf(&sb, ", %d unchanged", u)
	}
	fmt.Fprintf(&sb, ", %d chunks (%d embedded, %d skipped, %d deleted)", total, embedded, skipped, deleted)
	if f := len(b.Failures); f > 0 {
		fmt.Fprintf(&sb, ", %d failed", f)
	}
	fmt.Fprintf(&sb, " in %s", FormatDuration(b.Duration))
	if secs := b.Duration.Seconds(); embedded > 0 && secs > 0 {
		fmt.Fprintf(&sb, " (%.1f chunks/s)", float64(embedded)/secs)
	}
	return sb.String()
}

// FormatDuration renders milliseconds below one second, seconds otherwise.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Round(time.Millisecond).Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
