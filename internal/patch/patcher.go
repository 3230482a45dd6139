package patch

import (
	"fmt"
	"strings"

	"github.com/relbind/relbind/internal/bindings"
)

const (
	patchMismatchErrorTemplateConstant     = "patch rule %d (%s) matched nothing"
	rewriteDivergenceErrorTemplateConstant = "patch rule %d keeps recreating its own pattern"
	lineSeparatorConstant                  = "\n"
	rewriteConvergenceLimitConstant        = 16
)

// PatchMismatchError reports a rule that matched zero occurrences while strict mode is enabled.
type PatchMismatchError struct {
	RuleIndex int
	Rule      Rule
}

// Error describes the unmatched rule.
func (mismatchError PatchMismatchError) Error() string {
	return fmt.Sprintf(patchMismatchErrorTemplateConstant, mismatchError.RuleIndex, string(mismatchError.Rule.Kind))
}

// RewriteDivergenceError reports a rewrite rule whose substitutions never
// reach a pattern-free line.
type RewriteDivergenceError struct {
	RuleIndex int
	Rule      Rule
}

// Error describes the diverging rule.
func (divergenceError RewriteDivergenceError) Error() string {
	return fmt.Sprintf(rewriteDivergenceErrorTemplateConstant, divergenceError.RuleIndex)
}

// RuleOutcome reports the effect of a single rule application.
type RuleOutcome struct {
	Rule         Rule
	MatchCount   int
	RemovedFiles []string
}

// ApplyReport aggregates per-rule outcomes for one patch pass.
type ApplyReport struct {
	Outcomes []RuleOutcome
}

// Patcher applies ordered rule lists to binding sets.
type Patcher struct {
	strict bool
}

// NewPatcher constructs a Patcher; strict mode promotes unmatched rules to errors.
func NewPatcher(strict bool) *Patcher {
	return &Patcher{strict: strict}
}

// Apply runs every rule once, in order, against the provided binding set.
//
// Line order is preserved and non-matching lines are left unchanged. Applying
// the same rule list to already-patched output is a no-op: rewrite
// substitutions repeat within a line until the pattern no longer appears, and
// deleted files are absent from the set on a second pass.
func (patcher *Patcher) Apply(bindingSet *bindings.BindingSet, rules []Rule) (ApplyReport, error) {
	report := ApplyReport{Outcomes: make([]RuleOutcome, 0, len(rules))}

	for ruleIndex, rule := range rules {
		var outcome RuleOutcome
		switch rule.Kind {
		case RuleKindRewrite:
			rewriteOutcome, rewriteError := patcher.applyRewrite(bindingSet, ruleIndex, rule)
			if rewriteError != nil {
				return report, rewriteError
			}
			outcome = rewriteOutcome
		case RuleKindDelete:
			outcome = patcher.applyDelete(bindingSet, rule)
		}

		if patcher.strict && outcome.MatchCount == 0 {
			return report, PatchMismatchError{RuleIndex: ruleIndex, Rule: rule}
		}

		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report, nil
}

func (patcher *Patcher) applyRewrite(bindingSet *bindings.BindingSet, ruleIndex int, rule Rule) (RuleOutcome, error) {
	outcome := RuleOutcome{Rule: rule}

	for _, bindingFile := range bindingSet.Files() {
		lines := strings.Split(bindingFile.Content, lineSeparatorConstant)
		fileMatchCount := 0
		for lineIndex, line := range lines {
			if !strings.Contains(line, rule.Pattern) {
				continue
			}

			// A replacement suffix can recombine with the rest of the line into a
			// fresh pattern occurrence, so substitution repeats until the line is
			// pattern-free.
			rewrittenLine := line
			for substitutionPass := 0; strings.Contains(rewrittenLine, rule.Pattern); substitutionPass++ {
				if substitutionPass == rewriteConvergenceLimitConstant {
					return outcome, RewriteDivergenceError{RuleIndex: ruleIndex, Rule: rule}
				}
				rewrittenLine = strings.ReplaceAll(rewrittenLine, rule.Pattern, rule.Replacement)
			}

			lines[lineIndex] = rewrittenLine
			fileMatchCount++
		}

		if fileMatchCount == 0 {
			continue
		}

		outcome.MatchCount += fileMatchCount
		bindingSet.Replace(bindingFile.RelativePath, strings.Join(lines, lineSeparatorConstant))
	}

	return outcome, nil
}

func (patcher *Patcher) applyDelete(bindingSet *bindings.BindingSet, rule Rule) RuleOutcome {
	outcome := RuleOutcome{Rule: rule}

	if bindingSet.Remove(rule.FileName) {
		outcome.MatchCount++
		outcome.RemovedFiles = append(outcome.RemovedFiles, rule.FileName)
	}

	for _, bindingFile := range bindingSet.Files() {
		lines := strings.Split(bindingFile.Content, lineSeparatorConstant)
		retainedLines := make([]string, 0, len(lines))
		droppedLineCount := 0
		for _, line := range lines {
			if strings.Contains(line, rule.FileName) {
				droppedLineCount++
				continue
			}
			retainedLines = append(retainedLines, line)
		}

		if droppedLineCount == 0 {
			continue
		}

		outcome.MatchCount += droppedLineCount
		bindingSet.Replace(bindingFile.RelativePath, strings.Join(retainedLines, lineSeparatorConstant))
	}

	return outcome
}
