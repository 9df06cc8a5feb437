package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitRevParseSubcommandNameConstant           = "rev-parse"
	gitConfigSubcommandNameConstant             = "config"
	gitWorkTreeFlagConstant                     = "--is-inside-work-tree"
	gitConfigGetFlagConstant                    = "--get"
	gitConfigLocalScopeFlagConstant             = "--local"
	gitConfigGlobalScopeFlagConstant            = "--global"
	gitConfigRemoveSectionFlagConstant          = "--remove-section"
	gitWorkTreeAffirmativeOutputValue           = "true"
	localScopeLabelConstant                     = "local"
	globalScopeLabelConstant                    = "global"
	scopedKeyLabelTemplateConstant              = "%s %s"
	missingConfigurationValueExitCodeConstant   = 1
	missingConfigurationSectionExitCodeConstant = 128
	outsideWorkTreeExitCodeConstant             = 128
)

const (
	gitWorkTreeStartTemplateConstant                        = "Analyzing repository at %s"
	gitWorkTreeSuccessTemplateConstant                      = "%s is a Git repository"
	gitWorkTreeNegativeTemplateConstant                     = "%s is not inside a Git work tree"
	gitWorkTreeFailureTemplateConstant                      = "Could not confirm %s is a Git repository (exit code %d%s)"
	gitWorkTreeExecutionFailureTemplateConstant             = "Could not analyze %s: %s"
	gitConfigLookupStartTemplateConstant                    = "Reading %s in %s"
	gitConfigLookupSuccessTemplateConstant                  = "%s in %s is %s"
	gitConfigLookupMissingTemplateConstant                  = "No %s set in %s"
	gitConfigLookupFailureTemplateConstant                  = "Failed to read %s in %s (exit code %d%s)"
	gitConfigLookupExecutionFailureTemplateConstant         = "Unable to read %s in %s: %s"
	gitConfigUpdateStartTemplateConstant                    = "Setting %s in %s to %s"
	gitConfigUpdateSuccessTemplateConstant                  = "Set %s in %s to %s"
	gitConfigUpdateFailureTemplateConstant                  = "Failed to set %s in %s to %s (exit code %d%s)"
	gitConfigUpdateExecutionFailureTemplateConstant         = "Unable to set %s in %s to %s: %s"
	gitConfigSectionRemovalStartTemplateConstant            = "Removing %s section in %s"
	gitConfigSectionRemovalSuccessTemplateConstant          = "Removed %s section in %s"
	gitConfigSectionRemovalMissingTemplateConstant          = "No %s section in %s"
	gitConfigSectionRemovalFailureTemplateConstant          = "Failed to remove %s section in %s (exit code %d%s)"
	gitConfigSectionRemovalExecutionFailureTemplateConstant = "Unable to remove %s section in %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(command, result, failure, stage)
	case gitConfigSubcommandNameConstant:
		return formatter.describeGitConfigMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	if containsArgument(arguments, gitWorkTreeFlagConstant) {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitWorkTreeStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			trimmedOutput := strings.TrimSpace(result.StandardOutput)
			if len(trimmedOutput) > 0 && !strings.EqualFold(trimmedOutput, gitWorkTreeAffirmativeOutputValue) {
				return fmt.Sprintf(gitWorkTreeNegativeTemplateConstant, workingDirectory)
			}
			return fmt.Sprintf(gitWorkTreeSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			if result.ExitCode == outsideWorkTreeExitCodeConstant {
				return fmt.Sprintf(gitWorkTreeNegativeTemplateConstant, workingDirectory)
			}
			return fmt.Sprintf(gitWorkTreeFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitWorkTreeExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitConfigMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)
	operands := formatter.extractConfigurationOperands(arguments)

	if containsArgument(arguments, gitConfigRemoveSectionFlagConstant) {
		sectionLabel := formatter.ensureValue(formatter.argumentAtIndex(operands, 0))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitConfigSectionRemovalStartTemplateConstant, sectionLabel, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitConfigSectionRemovalSuccessTemplateConstant, sectionLabel, workingDirectory)
		case messageStageFailure:
			if result.ExitCode == missingConfigurationSectionExitCodeConstant {
				return fmt.Sprintf(gitConfigSectionRemovalMissingTemplateConstant, sectionLabel, workingDirectory)
			}
			return fmt.Sprintf(gitConfigSectionRemovalFailureTemplateConstant, sectionLabel, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitConfigSectionRemovalExecutionFailureTemplateConstant, sectionLabel, workingDirectory, formatter.describeFailure(failure))
		}
	}

	if containsArgument(arguments, gitConfigGetFlagConstant) {
		keyLabel := formatter.formatConfigurationKeyLabel(arguments, formatter.argumentAtIndex(operands, 0))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitConfigLookupStartTemplateConstant, keyLabel, workingDirectory)
		case messageStageSuccess:
			trimmedValue := strings.TrimSpace(result.StandardOutput)
			if len(trimmedValue) == 0 {
				return fmt.Sprintf(gitConfigLookupMissingTemplateConstant, keyLabel, workingDirectory)
			}
			return fmt.Sprintf(gitConfigLookupSuccessTemplateConstant, keyLabel, workingDirectory, trimmedValue)
		case messageStageFailure:
			if result.ExitCode == missingConfigurationValueExitCodeConstant {
				return fmt.Sprintf(gitConfigLookupMissingTemplateConstant, keyLabel, workingDirectory)
			}
			return fmt.Sprintf(gitConfigLookupFailureTemplateConstant, keyLabel, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitConfigLookupExecutionFailureTemplateConstant, keyLabel, workingDirectory, formatter.describeFailure(failure))
		}
	}

	if len(operands) >= 2 {
		keyLabel := formatter.formatConfigurationKeyLabel(arguments, operands[0])
		assignedValue := formatter.ensureValue(operands[1])
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitConfigUpdateStartTemplateConstant, keyLabel, workingDirectory, assignedValue)
		case messageStageSuccess:
			return fmt.Sprintf(gitConfigUpdateSuccessTemplateConstant, keyLabel, workingDirectory, assignedValue)
		case messageStageFailure:
			return fmt.Sprintf(gitConfigUpdateFailureTemplateConstant, keyLabel, workingDirectory, assignedValue, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitConfigUpdateExecutionFailureTemplateConstant, keyLabel, workingDirectory, assignedValue, formatter.describeFailure(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf(scopedKeyLabelTemplateConstant, commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

// formatConfigurationKeyLabel prefixes a configuration key with its scope when
// the invocation names one, producing labels such as "local user.email".
func (formatter CommandMessageFormatter) formatConfigurationKeyLabel(arguments []string, configurationKey string) string {
	keyLabel := formatter.ensureValue(configurationKey)
	if containsArgument(arguments, gitConfigLocalScopeFlagConstant) {
		return fmt.Sprintf(scopedKeyLabelTemplateConstant, localScopeLabelConstant, keyLabel)
	}
	if containsArgument(arguments, gitConfigGlobalScopeFlagConstant) {
		return fmt.Sprintf(scopedKeyLabelTemplateConstant, globalScopeLabelConstant, keyLabel)
	}
	return keyLabel
}

// extractConfigurationOperands returns the non-flag arguments following the
// config subcommand, typically the configuration key and an optional value.
func (formatter CommandMessageFormatter) extractConfigurationOperands(arguments []string) []string {
	operands := []string{}
	for argumentIndex := 1; argumentIndex < len(arguments); argumentIndex++ {
		trimmedArgument := strings.TrimSpace(arguments[argumentIndex])
		if len(trimmedArgument) == 0 {
			continue
		}
		if strings.HasPrefix(trimmedArgument, "-") {
			continue
		}
		operands = append(operands, trimmedArgument)
	}
	return operands
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return arguments[index]
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
