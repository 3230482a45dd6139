package patch

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ruleKindRewriteStringConstant              = "rewrite"
	ruleKindDeleteStringConstant               = "delete"
	rulesFileLoadErrorTemplateConstant         = "failed to load patch rules: %w"
	rulesFileParseErrorTemplateConstant        = "failed to parse patch rules: %w"
	rulesFilePathRequiredMessageConstant       = "patch rules path must be provided"
	ruleKindInvalidTemplateConstant            = "patch rule %d has unsupported kind %q"
	rewritePatternRequiredTemplateConstant     = "rewrite rule %d requires a pattern"
	rewriteReplacementContainsTemplateConstant = "rewrite rule %d replacement contains its own pattern; a second pass would not be a no-op"
	deleteFileNameRequiredTemplateConstant     = "delete rule %d requires a file name"
)

// RuleKind identifies a patch rule behavior.
type RuleKind string

// Supported rule kinds.
const (
	RuleKindRewrite RuleKind = RuleKind(ruleKindRewriteStringConstant)
	RuleKindDelete  RuleKind = RuleKind(ruleKindDeleteStringConstant)
)

// Rule describes a single deterministic text transformation.
type Rule struct {
	Kind        RuleKind `yaml:"kind"`
	Pattern     string   `yaml:"pattern"`
	Replacement string   `yaml:"replacement"`
	FileName    string   `yaml:"file"`
}

type rulesDocument struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads an ordered rule list from the YAML file at the provided path.
func LoadRules(filePath string) ([]Rule, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return nil, errors.New(rulesFilePathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return nil, fmt.Errorf(rulesFileLoadErrorTemplateConstant, readError)
	}

	var document rulesDocument
	if unmarshalError := yaml.Unmarshal(contentBytes, &document); unmarshalError != nil {
		return nil, fmt.Errorf(rulesFileParseErrorTemplateConstant, unmarshalError)
	}

	if validationError := ValidateRules(document.Rules); validationError != nil {
		return nil, validationError
	}

	return document.Rules, nil
}

// ValidateRules rejects malformed rules and rewrite rules that would not be idempotent.
func ValidateRules(rules []Rule) error {
	for ruleIndex, rule := range rules {
		switch rule.Kind {
		case RuleKindRewrite:
			if len(strings.TrimSpace(rule.Pattern)) == 0 {
				return fmt.Errorf(rewritePatternRequiredTemplateConstant, ruleIndex)
			}
			if strings.Contains(rule.Replacement, rule.Pattern) {
				return fmt.Errorf(rewriteReplacementContainsTemplateConstant, ruleIndex)
			}
		case RuleKindDelete:
			if len(strings.TrimSpace(rule.FileName)) == 0 {
				return fmt.Errorf(deleteFileNameRequiredTemplateConstant, ruleIndex)
			}
		default:
			return fmt.Errorf(ruleKindInvalidTemplateConstant, ruleIndex, string(rule.Kind))
		}
	}

	return nil
}
