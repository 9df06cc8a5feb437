package cli_test

import (
	"bytes"
	"os"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/temirov/git-passport/cmd/cli"
)

const (
	expectedDefaultLogLevelConstant         = "info"
	expectedDefaultLogFormatConstant        = "structured"
	expectedDefaultPassportFilePathConstant = "~/.gitpassport"
	commonSectionKeyConstant                = "common"
	toolsSectionKeyConstant                 = "tools"
	passportSectionKeyConstant              = "passport"
	passportFileOptionKeyConstant           = "passport_file"
	unsupportedLogLevelValueConstant        = "bonkers"
	logLevelEnvironmentVariableConstant     = "GITPASSPORT_COMMON_LOG_LEVEL"
	unsupportedLogLevelErrorConstant        = "unable to create logger: unsupported log level: bonkers"
	unknownFlagErrorConstant                = "unknown flag: --bogus"
)

func TestEmbeddedDefaultConfigurationDecodes(testInstance *testing.T) {
	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()

	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)
	readError := viperInstance.ReadConfig(bytes.NewReader(configurationData))
	require.NoError(testInstance, readError)

	var configuration cli.ApplicationConfiguration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", Result: &configuration})
	require.NoError(testInstance, decoderError)
	require.NoError(testInstance, decoder.Decode(viperInstance.AllSettings()))

	require.Equal(testInstance, expectedDefaultLogLevelConstant, configuration.Common.LogLevel)
	require.Equal(testInstance, expectedDefaultLogFormatConstant, configuration.Common.LogFormat)
	require.Equal(testInstance, expectedDefaultPassportFilePathConstant, configuration.Tools.Passport.PassportFilePath)
}

func TestEmbeddedDefaultConfigurationParsesAsYAML(testInstance *testing.T) {
	configurationData, _ := cli.EmbeddedDefaultConfiguration()

	var parsedConfiguration map[string]any
	require.NoError(testInstance, yaml.Unmarshal(configurationData, &parsedConfiguration))

	commonSection, commonSectionAvailable := parsedConfiguration[commonSectionKeyConstant].(map[string]any)
	require.True(testInstance, commonSectionAvailable)
	require.Equal(testInstance, expectedDefaultLogLevelConstant, commonSection["log_level"])
	require.Equal(testInstance, expectedDefaultLogFormatConstant, commonSection["log_format"])

	toolsSection, toolsSectionAvailable := parsedConfiguration[toolsSectionKeyConstant].(map[string]any)
	require.True(testInstance, toolsSectionAvailable)
	passportSection, passportSectionAvailable := toolsSection[passportSectionKeyConstant].(map[string]any)
	require.True(testInstance, passportSectionAvailable)
	require.Equal(testInstance, expectedDefaultPassportFilePathConstant, passportSection[passportFileOptionKeyConstant])
}

func TestApplicationExecuteRejectsUnsupportedLogLevelFlag(testInstance *testing.T) {
	restoreArguments := replaceProgramArguments(testInstance, []string{"git-passport", "--log-level", unsupportedLogLevelValueConstant})
	defer restoreArguments()

	executionError := cli.NewApplication().Execute()
	require.EqualError(testInstance, executionError, unsupportedLogLevelErrorConstant)
}

func TestApplicationExecuteRejectsUnsupportedLogLevelEnvironment(testInstance *testing.T) {
	testInstance.Setenv(logLevelEnvironmentVariableConstant, unsupportedLogLevelValueConstant)
	restoreArguments := replaceProgramArguments(testInstance, []string{"git-passport"})
	defer restoreArguments()

	executionError := cli.NewApplication().Execute()
	require.EqualError(testInstance, executionError, unsupportedLogLevelErrorConstant)
}

func TestApplicationExecuteRejectsUnknownFlag(testInstance *testing.T) {
	restoreArguments := replaceProgramArguments(testInstance, []string{"git-passport", "--bogus"})
	defer restoreArguments()

	executionError := cli.NewApplication().Execute()
	require.EqualError(testInstance, executionError, unknownFlagErrorConstant)
}

func replaceProgramArguments(testInstance *testing.T, arguments []string) func() {
	testInstance.Helper()

	originalArguments := os.Args
	os.Args = arguments
	return func() {
		os.Args = originalArguments
	}
}
