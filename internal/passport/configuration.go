package passport

import (
	"strings"

	pathutils "github.com/temirov/git-passport/internal/utils/path"
)

const (
	passportFileConfigurationKeyConstant = "passport_file"
	defaultPassportFilePathConstant      = "~/.gitpassport"
)

// CommandConfiguration captures the persisted configuration of the passport
// command.
type CommandConfiguration struct {
	PassportFilePath string `mapstructure:"passport_file"`
}

// DefaultCommandConfiguration returns baseline configuration values for the
// passport command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{PassportFilePath: defaultPassportFilePathConstant}
}

// DefaultConfigurationValues produces Viper defaults for the passport command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + passportFileConfigurationKeyConstant: defaults.PassportFilePath,
	}
}

// Sanitize normalizes the configuration: blank paths fall back to the
// default location and the home shortcut is expanded.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	trimmedPath := strings.TrimSpace(configuration.PassportFilePath)
	if len(trimmedPath) == 0 {
		trimmedPath = defaultPassportFilePathConstant
	}
	sanitized.PassportFilePath = pathutils.NewHomeExpander().Expand(trimmedPath)
	return sanitized
}
