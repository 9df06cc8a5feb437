package passport

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/git-passport/internal/execshell"
	"github.com/temirov/git-passport/internal/gitrepo"
	"github.com/temirov/git-passport/internal/utils"
	flagutils "github.com/temirov/git-passport/internal/utils/flags"
	pathutils "github.com/temirov/git-passport/internal/utils/path"
)

const (
	commandUseConstant              = "git-passport"
	commandShortDescriptionConstant = "Manage multiple Git identities"
	commandLongDescriptionConstant  = "git-passport matches the repository remote against configured passports and writes the matching identity into the local Git configuration. Mode flags select, delete, print, or list passports instead of resolving automatically."

	selectFlagNameConstant         = "select"
	selectFlagShorthandConstant    = "s"
	selectFlagUsageConstant        = "select a passport"
	deleteFlagNameConstant         = "delete"
	deleteFlagShorthandConstant    = "d"
	deleteFlagUsageConstant        = "delete the active passport in .git/config"
	activeFlagNameConstant         = "active"
	activeFlagShorthandConstant    = "a"
	activeFlagUsageConstant        = "print the active passport in .git/config"
	passportsFlagNameConstant      = "passports"
	passportsFlagShorthandConstant = "p"
	passportsFlagUsageConstant     = "print all passports in ~/.gitpassport"
	passportFileFlagNameConstant   = "passport-file"
	passportFileFlagUsageConstant  = "Path to the passport configuration file"
	hookFlagNameConstant           = "hook"
	hookFlagUsageConstant          = "Enable automatic passport resolution"

	storeCreationErrorTemplateConstant   = "unable to construct passport store: %w"
	managerCreationErrorTemplateConstant = "unable to construct repository manager: %w"
	applierCreationErrorTemplateConstant = "unable to construct identity applier: %w"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

type commandOptions struct {
	debugLoggingEnabled bool
	passportFilePath    string
	selectRequested     bool
	deleteRequested     bool
	activeRequested     bool
	passportsRequested  bool
	hookOverride        *bool
}

// CommandBuilder assembles the git-passport Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     gitrepo.GitExecutor
	WorkingDirectory             string
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	CommandEventObserverProvider func() execshell.CommandEventObserver
	Prompter                     SelectionPrompter
	Sleeper                      Sleeper
}

// Build constructs the git-passport command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	hookToggleState := false
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
	}
	command.RunE = func(runCommand *cobra.Command, arguments []string) error {
		return builder.run(runCommand, &hookToggleState)
	}

	command.Flags().BoolP(selectFlagNameConstant, selectFlagShorthandConstant, false, selectFlagUsageConstant)
	command.Flags().BoolP(deleteFlagNameConstant, deleteFlagShorthandConstant, false, deleteFlagUsageConstant)
	command.Flags().BoolP(activeFlagNameConstant, activeFlagShorthandConstant, false, activeFlagUsageConstant)
	command.Flags().BoolP(passportsFlagNameConstant, passportsFlagShorthandConstant, false, passportsFlagUsageConstant)
	command.Flags().String(passportFileFlagNameConstant, "", passportFileFlagUsageConstant)
	flagutils.AddToggleFlag(command.Flags(), &hookToggleState, hookFlagNameConstant, "", true, hookFlagUsageConstant)
	command.MarkFlagsMutuallyExclusive(selectFlagNameConstant, deleteFlagNameConstant, activeFlagNameConstant, passportsFlagNameConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, hookToggleState *bool) error {
	options := builder.parseOptions(command, hookToggleState)

	logger := builder.resolveLogger(options.debugLoggingEnabled)

	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return fmt.Errorf(managerCreationErrorTemplateConstant, managerError)
	}

	store, storeError := NewStore(options.passportFilePath, logger)
	if storeError != nil {
		return fmt.Errorf(storeCreationErrorTemplateConstant, storeError)
	}

	applier, applierError := NewGitIdentityApplier(repositoryManager, builder.WorkingDirectory)
	if applierError != nil {
		return fmt.Errorf(applierCreationErrorTemplateConstant, applierError)
	}

	outputWriter := utils.NewFlushingWriter(command.OutOrStdout())

	if options.selectRequested || options.deleteRequested || options.activeRequested || options.passportsRequested {
		controller, controllerError := NewController(ControllerDependencies{
			Logger:           logger,
			Store:            store,
			Gateway:          repositoryManager,
			Applier:          applier,
			Prompter:         builder.resolvePrompter(command, outputWriter),
			OutputWriter:     outputWriter,
			WorkingDirectory: builder.WorkingDirectory,
		})
		if controllerError != nil {
			return controllerError
		}
		switch {
		case options.selectRequested:
			return controller.Select(command.Context())
		case options.deleteRequested:
			return controller.Delete(command.Context())
		case options.activeRequested:
			return controller.ShowActive(command.Context())
		default:
			return controller.ListPassports(command.Context())
		}
	}

	resolver, resolverError := NewResolver(ResolverDependencies{
		Logger:           logger,
		Store:            store,
		Gateway:          repositoryManager,
		Applier:          applier,
		Sleeper:          builder.Sleeper,
		OutputWriter:     outputWriter,
		WorkingDirectory: builder.WorkingDirectory,
	})
	if resolverError != nil {
		return resolverError
	}
	return resolver.Run(command.Context(), ResolveOptions{EnableHookOverride: options.hookOverride})
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, hookToggleState *bool) commandOptions {
	configuration := builder.resolveConfiguration()

	options := commandOptions{passportFilePath: configuration.PassportFilePath}

	if command == nil {
		return options
	}

	contextAccessor := utils.NewCommandContextAccessor()
	if logLevel, available := contextAccessor.LogLevel(command.Context()); available {
		if strings.EqualFold(logLevel, string(utils.LogLevelDebug)) {
			options.debugLoggingEnabled = true
		}
	}

	options.selectRequested, _ = command.Flags().GetBool(selectFlagNameConstant)
	options.deleteRequested, _ = command.Flags().GetBool(deleteFlagNameConstant)
	options.activeRequested, _ = command.Flags().GetBool(activeFlagNameConstant)
	options.passportsRequested, _ = command.Flags().GetBool(passportsFlagNameConstant)

	if command.Flags().Changed(passportFileFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(passportFileFlagNameConstant)
		trimmedValue := strings.TrimSpace(flagValue)
		if len(trimmedValue) > 0 {
			options.passportFilePath = pathutils.NewHomeExpander().Expand(trimmedValue)
		}
	}

	if command.Flags().Changed(hookFlagNameConstant) && hookToggleState != nil {
		overrideValue := *hookToggleState
		options.hookOverride = &overrideValue
	}

	return options
}

func (builder *CommandBuilder) resolveLogger(enableDebug bool) *zap.Logger {
	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if enableDebug {
		logger = logger.WithOptions(zap.IncreaseLevel(zapcore.DebugLevel))
	}
	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (gitrepo.GitExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	var eventObserver execshell.CommandEventObserver
	if builder.CommandEventObserverProvider != nil {
		eventObserver = builder.CommandEventObserverProvider()
	}
	if eventObserver != nil {
		return execshell.NewShellExecutorWithObserver(logger, commandRunner, humanReadableLogging, eventObserver)
	}
	return execshell.NewShellExecutor(logger, commandRunner, humanReadableLogging)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().Sanitize()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolvePrompter(command *cobra.Command, outputWriter io.Writer) SelectionPrompter {
	if builder.Prompter != nil {
		return builder.Prompter
	}
	return NewIOSelectionPrompter(command.InOrStdin(), outputWriter)
}
