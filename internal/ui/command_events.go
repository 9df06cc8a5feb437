package ui

import (
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/git-passport/internal/execshell"
)

const (
	gitRevParseSubcommandConstant            = "rev-parse"
	gitConfigSubcommandConstant              = "config"
	gitConfigGetFlagConstant                 = "--get"
	gitConfigRemoveSectionFlagConstant       = "--remove-section"
	missingConfigurationValueExitCode        = 1
	repositoryProbeRejectionExitCodeConstant = 128
)

// ConsoleCommandEventLogger renders command lifecycle events through a zap
// logger configured for human-readable output. Messages come from
// execshell.CommandMessageFormatter so console feedback matches the wording of
// the executor's diagnostic logs, including the Git-aware descriptions of
// configuration reads and writes.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger, formatter: execshell.CommandMessageFormatter{}}
}

// CommandStarted implements execshell.CommandEventObserver by announcing the command about to run.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver by reporting the
// command outcome. Non-zero exits that the repository probes treat as ordinary
// answers, such as an unset configuration key, stay at the info level.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.ExitCode == 0 {
		eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(command, result))
		return
	}
	completionMessage := eventLogger.formatter.BuildFailureMessage(command, result)
	if describesExpectedProbeOutcome(command, result) {
		eventLogger.logger.Info(completionMessage)
		return
	}
	eventLogger.logger.Warn(completionMessage)
}

// CommandExecutionFailed implements execshell.CommandEventObserver by reporting commands that never ran.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}

// describesExpectedProbeOutcome reports whether a non-zero exit code matches an
// outcome the repository probes tolerate. Unset configuration keys exit with 1
// while missing sections and directories outside a work tree exit with 128.
func describesExpectedProbeOutcome(command execshell.ShellCommand, result execshell.ExecutionResult) bool {
	if command.Name != execshell.CommandGit || len(command.Details.Arguments) == 0 {
		return false
	}
	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitRevParseSubcommandConstant:
		return result.ExitCode == repositoryProbeRejectionExitCodeConstant
	case gitConfigSubcommandConstant:
		if hasArgument(command.Details.Arguments, gitConfigGetFlagConstant) {
			return result.ExitCode == missingConfigurationValueExitCode
		}
		if hasArgument(command.Details.Arguments, gitConfigRemoveSectionFlagConstant) {
			return result.ExitCode == repositoryProbeRejectionExitCodeConstant
		}
		return false
	default:
		return false
	}
}

func hasArgument(arguments []string, expectedArgument string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == expectedArgument {
			return true
		}
	}
	return false
}
