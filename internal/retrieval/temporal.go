// ABOUTME: LLM-based temporal intent parsing for natural language queries
// ABOUTME: Turns phrases like "last month" into a concrete half-open date range
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/secondbrain-labs/cerebro/internal/storage/sqlite"
)

// JSONCompleter returns a chat completion constrained to a JSON object
type JSONCompleter interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const temporalPromptTemplate = `You are a temporal intent parser. Analyze the user's query and determine if it has a time-based constraint.
Today's date is %s.

If the query mentions a time period, respond with JSON:
{"has_temporal_constraint": true, "start_date": "YYYY-MM-DD", "end_date": "YYYY-MM-DD"}

If there's no time constraint, respond with:
{"has_temporal_constraint": false}

Examples:
- "What did I work on last month?" -> {"has_temporal_constraint": true, "start_date": "2025-12-01", "end_date": "2025-12-31"}
- "Documents from yesterday" -> {"has_temporal_constraint": true, "start_date": "2026-01-13", "end_date": "2026-01-13"}
- "What is machine learning?" -> {"has_temporal_constraint": false}`

type temporalResponse struct {
	HasTemporalConstraint bool   `json:"has_temporal_constraint"`
	StartDate             string `json:"start_date"`
	EndDate               string `json:"end_date"`
}

// TemporalParser extracts date constraints from queries. It never fails
// the query: any parsing problem degrades to "no temporal constraint",
// which widens the search instead of breaking it.
type TemporalParser struct {
	llm    JSONCompleter
	logger *slog.Logger
	now    func() time.Time
}

func NewTemporalParser(llm JSONCompleter, logger *slog.Logger) *TemporalParser {
	return &TemporalParser{llm: llm, logger: logger, now: time.Now}
}

// Parse returns the time range the query constrains results to, or nil
// when the query has no temporal intent.
func (p *TemporalParser) Parse(ctx context.Context, query string) *sqlite.TimeRange {
	systemPrompt := fmt.Sprintf(temporalPromptTemplate, p.now().UTC().Format("2006-01-02"))

	raw, err := p.llm.CompleteJSON(ctx, systemPrompt, query)
	if err != nil {
		p.logger.Warn("temporal parsing failed, searching without date filter", "error", err)
		return nil
	}

	var resp temporalResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		p.logger.Warn("temporal parser returned malformed JSON", "error", err, "response", raw)
		return nil
	}
	if !resp.HasTemporalConstraint {
		return nil
	}

	start, err := time.Parse("2006-01-02", resp.StartDate)
	if err != nil {
		p.logger.Warn("temporal parser returned invalid start date", "start_date", resp.StartDate)
		return nil
	}
	end, err := time.Parse("2006-01-02", resp.EndDate)
	if err != nil {
		p.logger.Warn("temporal parser returned invalid end date", "end_date", resp.EndDate)
		return nil
	}
	// The model names the last day inclusively; advance one day so the
	// half-open range [start, end) covers all of it.
	end = end.AddDate(0, 0, 1)
	if !end.After(start) {
		p.logger.Warn("temporal parser returned inverted range", "start_date", resp.StartDate, "end_date", resp.EndDate)
		return nil
	}

	return &sqlite.TimeRange{Start: start.UTC(), End: end.UTC()}
}
