package passport

import (
	"context"
	"time"

	"github.com/temirov/git-passport/internal/gitrepo"
)

// GitConfigurationGateway exposes the repository-level Git operations the
// passport services consume.
type GitConfigurationGateway interface {
	CheckInsideWorkTree(executionContext context.Context, repositoryPath string) (bool, error)
	GetConfigurationValue(executionContext context.Context, repositoryPath string, scope gitrepo.ConfigurationScope, configurationKey string) (string, error)
	SetLocalConfigurationValue(executionContext context.Context, repositoryPath string, configurationKey string, configurationValue string) error
	RemoveLocalSection(executionContext context.Context, repositoryPath string, sectionName string) (bool, error)
	GetRemoteURL(executionContext context.Context, repositoryPath string) (string, error)
}

// ConfigurationStore loads and provisions the passport configuration file.
type ConfigurationStore interface {
	Load() (GeneralSettings, []Passport, error)
	GenerateSample() error
	FilePath() string
}

// IdentityApplier reads and writes the repository-local Git identity.
type IdentityApplier interface {
	CurrentIdentity(executionContext context.Context) (Identity, error)
	Apply(executionContext context.Context, selectedPassport Passport) (bool, error)
	Remove(executionContext context.Context) error
}

// SelectionPrompter asks the user to choose one of the listed passport indices.
type SelectionPrompter interface {
	PromptSelection(validSelections []int) (int, error)
}

// Sleeper pauses execution for the attention delay around identity announcements.
type Sleeper interface {
	Sleep(duration time.Duration)
}

// SystemSleeper implements Sleeper with the standard library timer.
type SystemSleeper struct{}

// Sleep blocks for the provided duration.
func (SystemSleeper) Sleep(duration time.Duration) {
	time.Sleep(duration)
}
