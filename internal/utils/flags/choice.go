package flags

import (
	"fmt"
	"strings"
)

const (
	choiceListOpeningConstant       = "<"
	choiceListClosingConstant       = ">"
	choiceListSeparatorConstant     = "|"
	choiceUsageTemplateConstant     = "`%s` %s"
	bareChoiceUsageTemplateConstant = "`%s`"
)

// FormatChoiceUsage renders a flag usage string whose placeholder lists the
// accepted values with the default value spelled in upper case.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := renderChoicePlaceholder(defaultChoice, choices)
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(bareChoiceUsageTemplateConstant, placeholder)
	}
	return fmt.Sprintf(choiceUsageTemplateConstant, placeholder, description)
}

func renderChoicePlaceholder(defaultChoice string, choices []string) string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))

	var placeholder strings.Builder
	placeholder.WriteString(choiceListOpeningConstant)

	listedChoices := make(map[string]struct{}, len(choices))
	for _, candidateChoice := range choices {
		trimmedChoice := strings.TrimSpace(candidateChoice)
		if len(trimmedChoice) == 0 {
			continue
		}

		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, alreadyListed := listedChoices[normalizedChoice]; alreadyListed {
			continue
		}
		listedChoices[normalizedChoice] = struct{}{}

		if len(listedChoices) > 1 {
			placeholder.WriteString(choiceListSeparatorConstant)
		}
		if normalizedChoice == normalizedDefault {
			placeholder.WriteString(strings.ToUpper(trimmedChoice))
			continue
		}
		placeholder.WriteString(trimmedChoice)
	}

	placeholder.WriteString(choiceListClosingConstant)
	return placeholder.String()
}
