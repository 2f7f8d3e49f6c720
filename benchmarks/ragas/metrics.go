// ABOUTME: RAGAS metrics implementation for faithfulness and context recall
// ABOUTME: Deterministic string-match evaluation against scenario ground truth
package ragas

import (
	"fmt"
	"strings"
)

// MetricsCalculator computes RAGAS scores for benchmark scenarios
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateFaithfulness scores whether the answer matches ground truth:
// all expected strings present, no forbidden strings.
func (m *MetricsCalculator) CalculateFaithfulness(answer string, expected, forbidden []string) (float64, string) {
	answerUpper := strings.ToUpper(answer)

	var missing []string
	for _, want := range expected {
		if !strings.Contains(answerUpper, strings.ToUpper(want)) {
			missing = append(missing, want)
		}
	}

	var leaked []string
	for _, bad := range forbidden {
		if strings.Contains(answerUpper, strings.ToUpper(bad)) {
			leaked = append(leaked, bad)
		}
	}

	switch {
	case len(missing) == 0 && len(leaked) == 0:
		return 1.0, "answer matches ground truth"
	case len(missing) > 0 && len(leaked) > 0:
		return 0.0, fmt.Sprintf("missing expected items %v and forbidden items found %v", missing, leaked)
	case len(missing) > 0:
		return 0.5, fmt.Sprintf("missing expected items %v", missing)
	default:
		return 0.5, fmt.Sprintf("forbidden items found %v", leaked)
	}
}

// CalculateContextRecall scores the proportion of expected facts that
// appear in the retrieved context.
func (m *MetricsCalculator) CalculateContextRecall(retrievedContext, expectedItems []string) (float64, string) {
	if len(expectedItems) == 0 {
		return 1.0, "no context retrieval required"
	}

	allContext := strings.ToUpper(strings.Join(retrievedContext, " "))

	found := 0
	var missing []string
	for _, item := range expectedItems {
		if strings.Contains(allContext, strings.ToUpper(item)) {
			found++
		} else {
			missing = append(missing, item)
		}
	}

	recall := float64(found) / float64(len(expectedItems))
	if recall == 1.0 {
		return 1.0, "all expected items retrieved"
	}
	return recall, fmt.Sprintf("partial recall (%.2f), missing %v", recall, missing)
}

// Evaluate scores one scenario outcome. Passing requires >= 0.9 on both
// faithfulness and recall.
func (m *MetricsCalculator) Evaluate(scenario Scenario, answer string, retrievedContext []string) Result {
	faithfulness, faithfulnessDetail := m.CalculateFaithfulness(
		answer, scenario.GroundTruth.ExpectedInAnswer, scenario.GroundTruth.ForbiddenInAnswer)
	recall, recallDetail := m.CalculateContextRecall(
		retrievedContext, scenario.GroundTruth.ExpectedContextItems)

	status := "FAIL"
	if faithfulness >= 0.9 && recall >= 0.9 {
		status = "PASS"
	}

	preview := answer
	if len(preview) > 200 {
		preview = preview[:200]
	}

	return Result{
		ScenarioID:         scenario.ID,
		ScenarioName:       scenario.Name,
		FaithfulnessScore:  faithfulness,
		ContextRecallScore: recall,
		OverallScore:       (faithfulness + recall) / 2.0,
		Status:             status,
		Details: map[string]interface{}{
			"faithfulness_detail": faithfulnessDetail,
			"recall_detail":       recallDetail,
			"answer_preview":      preview,
			"context_items":       len(retrievedContext),
		},
	}
}
