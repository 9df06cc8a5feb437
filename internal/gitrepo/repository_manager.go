package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/git-passport/internal/execshell"
)

const (
	gitRevParseSubcommandConstant            = "rev-parse"
	gitConfigSubcommandConstant              = "config"
	insideWorkTreeFlagConstant               = "--is-inside-work-tree"
	configurationGetFlagConstant             = "--get"
	configurationLocalScopeFlagConstant      = "--local"
	configurationRemoveSectionFlagConstant   = "--remove-section"
	configurationScopeFlagTemplateConstant   = "--%s"
	affirmativeWorkTreeOutputConstant        = "true"
	notInsideWorkTreeExitCodeConstant        = 128
	missingConfigurationValueExitCode        = 1
	missingConfigurationSectionExitCode      = 128
	remoteOriginURLConfigurationKeyConstant  = "remote.origin.url"
	gitExecutorNotConfiguredMessageConstant  = "git executor not configured"
	requiredValueMessageConstant             = "value required"
	workTreeCheckFailedTemplateConstant      = "work tree check failed: %w"
	configurationReadFailedTemplateConstant  = "reading %s configuration %s failed: %w"
	configurationWriteFailedTemplateConstant = "setting local configuration %s failed: %w"
	sectionRemovalFailedTemplateConstant     = "removing local section %s failed: %w"
)

// ErrGitExecutorNotConfigured indicates a RepositoryManager was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorNotConfiguredMessageConstant)

// GitExecutor abstracts git invocation for repository operations.
type GitExecutor interface {
	// ExecuteGit runs git with the provided invocation details.
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ConfigurationScope identifies which git configuration layer an operation targets.
type ConfigurationScope string

// Supported configuration scopes.
const (
	ConfigurationScopeLocal  ConfigurationScope = ConfigurationScope("local")
	ConfigurationScopeGlobal ConfigurationScope = ConfigurationScope("global")
)

func (scope ConfigurationScope) flagArgument() string {
	return fmt.Sprintf(configurationScopeFlagTemplateConstant, string(scope))
}

// RepositoryManager performs git operations scoped to a repository path.
type RepositoryManager struct {
	gitExecutor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager backed by the supplied executor.
func NewRepositoryManager(gitExecutor GitExecutor) (*RepositoryManager, error) {
	if gitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{gitExecutor: gitExecutor}, nil
}

// CheckInsideWorkTree reports whether the provided path sits inside a Git work tree.
// Git exits with code 128 outside repositories, which is reported as false without error.
func (manager *RepositoryManager) CheckInsideWorkTree(executionContext context.Context, repositoryPath string) (bool, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, insideWorkTreeFlagConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.gitExecutor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		if commandExitedWith(executionError, notInsideWorkTreeExitCodeConstant) {
			return false, nil
		}
		return false, fmt.Errorf(workTreeCheckFailedTemplateConstant, executionError)
	}

	return strings.EqualFold(strings.TrimSpace(executionResult.StandardOutput), affirmativeWorkTreeOutputConstant), nil
}

// GetConfigurationValue reads a configuration key from the requested scope.
// Missing keys are reported as an empty string without error because git
// exits with code 1 when a requested key is not set.
func (manager *RepositoryManager) GetConfigurationValue(executionContext context.Context, repositoryPath string, scope ConfigurationScope, configurationKey string) (string, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitConfigSubcommandConstant, configurationGetFlagConstant, scope.flagArgument(), configurationKey},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.gitExecutor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		if commandExitedWith(executionError, missingConfigurationValueExitCode) {
			return "", nil
		}
		return "", fmt.Errorf(configurationReadFailedTemplateConstant, scope, configurationKey, executionError)
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// SetLocalConfigurationValue writes a configuration key into the repository's local configuration.
func (manager *RepositoryManager) SetLocalConfigurationValue(executionContext context.Context, repositoryPath string, configurationKey string, configurationValue string) error {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitConfigSubcommandConstant, configurationLocalScopeFlagConstant, configurationKey, configurationValue},
		WorkingDirectory: repositoryPath,
	}

	_, executionError := manager.gitExecutor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return fmt.Errorf(configurationWriteFailedTemplateConstant, configurationKey, executionError)
	}
	return nil
}

// RemoveLocalSection deletes an entire section from the repository's local
// configuration. It reports whether a section was actually removed; git exits
// with code 128 when the section does not exist.
func (manager *RepositoryManager) RemoveLocalSection(executionContext context.Context, repositoryPath string, sectionName string) (bool, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitConfigSubcommandConstant, configurationLocalScopeFlagConstant, configurationRemoveSectionFlagConstant, sectionName},
		WorkingDirectory: repositoryPath,
	}

	_, executionError := manager.gitExecutor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		if commandExitedWith(executionError, missingConfigurationSectionExitCode) {
			return false, nil
		}
		return false, fmt.Errorf(sectionRemovalFailedTemplateConstant, sectionName, executionError)
	}
	return true, nil
}

// GetRemoteURL reads the locally configured URL of the origin remote.
// Repositories without an origin remote yield an empty string.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string) (string, error) {
	return manager.GetConfigurationValue(executionContext, repositoryPath, ConfigurationScopeLocal, remoteOriginURLConfigurationKeyConstant)
}

func commandExitedWith(executionError error, exitCode int) bool {
	var commandFailedError execshell.CommandFailedError
	if errors.As(executionError, &commandFailedError) {
		return commandFailedError.Result.ExitCode == exitCode
	}
	return false
}
