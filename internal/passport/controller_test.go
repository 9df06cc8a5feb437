package passport_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/git-passport/internal/passport"
)

type scriptedPrompter struct {
	selection      int
	selectionError error
	promptedPools  [][]int
}

func (prompter *scriptedPrompter) PromptSelection(validSelections []int) (int, error) {
	prompter.promptedPools = append(prompter.promptedPools, validSelections)
	return prompter.selection, prompter.selectionError
}

func buildTestController(testInstance *testing.T, store *stubConfigurationStore, gateway *stubRepositoryGateway, prompter passport.SelectionPrompter, outputBuffer *bytes.Buffer) *passport.Controller {
	testInstance.Helper()

	applier, applierError := passport.NewGitIdentityApplier(gateway, testRepositoryPathConstant)
	require.NoError(testInstance, applierError)

	controller, controllerError := passport.NewController(passport.ControllerDependencies{
		Logger:           zap.NewNop(),
		Store:            store,
		Gateway:          gateway,
		Applier:          applier,
		Prompter:         prompter,
		OutputWriter:     outputBuffer,
		WorkingDirectory: testRepositoryPathConstant,
	})
	require.NoError(testInstance, controllerError)
	return controller
}

func TestControllerSelectAppliesChosenPassport(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	store := &stubConfigurationStore{settings: enabledTestSettings(), passports: testPassportFixtures()}
	gateway := &stubRepositoryGateway{insideWorkTree: true}
	prompter := &scriptedPrompter{selection: 1}

	controller := buildTestController(testInstance, store, gateway, prompter, outputBuffer)

	require.NoError(testInstance, controller.Select(context.Background()))

	expectedOutput := "~Passport ID: 0\n" +
		"    . User:    name_0\n" +
		"    . E-Mail:  email_0@example.com\n" +
		"    . Service: github.com\n\n" +
		"~Passport ID: 1\n" +
		"    . User:    name_1\n" +
		"    . E-Mail:  email_1@example.com\n" +
		"    . Service: gitlab.com\n\n"
	require.Equal(testInstance, expectedOutput, outputBuffer.String())
	require.Equal(testInstance, [][]int{{0, 1}}, prompter.promptedPools)
	require.Equal(testInstance, map[string]string{
		"user.name":  "name_1",
		"user.email": "email_1@example.com",
	}, gateway.writtenValues)
}

func TestControllerSelectListsServicelessPassports(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	store := &stubConfigurationStore{
		settings:  enabledTestSettings(),
		passports: []passport.Passport{{Index: 0, Name: "spare", Email: "spare@example.com"}},
	}
	gateway := &stubRepositoryGateway{insideWorkTree: true}
	prompter := &scriptedPrompter{selection: 0}

	controller := buildTestController(testInstance, store, gateway, prompter, outputBuffer)

	require.NoError(testInstance, controller.Select(context.Background()))

	expectedOutput := "~:Passport ID: 0\n" +
		"    . User:   spare\n" +
		"    . E-Mail: spare@example.com\n\n"
	require.Equal(testInstance, expectedOutput, outputBuffer.String())
}

func TestControllerSelectQuitLeavesIdentityUntouched(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	store := &stubConfigurationStore{settings: enabledTestSettings(), passports: testPassportFixtures()}
	gateway := &stubRepositoryGateway{insideWorkTree: true}
	prompter := &scriptedPrompter{selectionError: passport.ErrSelectionAborted}

	controller := buildTestController(testInstance, store, gateway, prompter, outputBuffer)

	require.NoError(testInstance, controller.Select(context.Background()))
	require.Empty(testInstance, gateway.writtenValues)
}

func TestControllerSelectPropagatesClosedInput(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	store := &stubConfigurationStore{settings: enabledTestSettings(), passports: testPassportFixtures()}
	gateway := &stubRepositoryGateway{insideWorkTree: true}
	prompter := &scriptedPrompter{selectionError: passport.ErrSelectionInputClosed}

	controller := buildTestController(testInstance, store, gateway, prompter, outputBuffer)

	selectError := controller.Select(context.Background())
	require.ErrorIs(testInstance, selectError, passport.ErrSelectionInputClosed)
	require.Empty(testInstance, gateway.writtenValues)
}

func TestControllerSelectWithoutPassports(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	store := &stubConfigurationStore{settings: enabledTestSettings(), filePath: "/home/user/.gitpassport"}
	gateway := &stubRepositoryGateway{insideWorkTree: true}
	prompter := &scriptedPrompter{}

	controller := buildTestController(testInstance, store, gateway, prompter, outputBuffer)

	require.NoError(testInstance, controller.Select(context.Background()))
	require.Equal(testInstance, "No passports found in /home/user/.gitpassport.\n", outputBuffer.String())
	require.Empty(testInstance, prompter.promptedPools)
}

func TestControllerSelectOutsideWorkTree(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	store := &stubConfigurationStore{settings: enabledTestSettings(), passports: testPassportFixtures()}
	gateway := &stubRepositoryGateway{insideWorkTree: false}
	prompter := &scriptedPrompter{}

	controller := buildTestController(testInstance, store, gateway, prompter, outputBuffer)

	selectError := controller.Select(context.Background())
	require.ErrorIs(testInstance, selectError, passport.ErrOutsideRepository)
}

func TestControllerSelectProvisionsMissingConfiguration(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	store := &stubConfigurationStore{loadError: passport.ErrConfigurationMissing}
	gateway := &stubRepositoryGateway{insideWorkTree: true}
	prompter := &scriptedPrompter{}

	controller := buildTestController(testInstance, store, gateway, prompter, outputBuffer)

	require.NoError(testInstance, controller.Select(context.Background()))
	require.True(testInstance, store.sampleGenerated)
	require.Equal(testInstance, "No configuration file found ~/.\nGenerating a sample configuration file.\n", outputBuffer.String())
	require.Empty(testInstance, prompter.promptedPools)
	require.Zero(testInstance, gateway.workTreeChecks)
}

func TestControllerDelete(testInstance *testing.T) {
	testCases := []struct {
		name           string
		sectionRemoved bool
		expectedOutput string
	}{
		{
			name:           "removes_configured_identity",
			sectionRemoved: true,
			expectedOutput: "Passport removed.\n",
		},
		{
			name:           "reports_missing_identity",
			sectionRemoved: false,
			expectedOutput: "No passport set.\n",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			store := &stubConfigurationStore{settings: enabledTestSettings(), passports: testPassportFixtures()}
			gateway := &stubRepositoryGateway{insideWorkTree: true, sectionRemoved: testCase.sectionRemoved}

			controller := buildTestController(testInstance, store, gateway, &scriptedPrompter{}, outputBuffer)

			require.NoError(testInstance, controller.Delete(context.Background()))
			require.Equal(testInstance, testCase.expectedOutput, outputBuffer.String())
			require.Equal(testInstance, []string{"user"}, gateway.removedSections)
		})
	}
}

func TestControllerShowActive(testInstance *testing.T) {
	testCases := []struct {
		name                string
		configurationValues map[string]string
		remoteURL           string
		expectedOutput      string
	}{
		{
			name: "prints_complete_identity",
			configurationValues: map[string]string{
				"user.name":  "name_0",
				"user.email": "email_0@example.com",
			},
			remoteURL: "https://github.com/example/project.git",
			expectedOutput: "~Active Passport:\n" +
				"    . User:   name_0\n" +
				"    . E-Mail: email_0@example.com\n" +
				"    . Remote: https://github.com/example/project.git\n",
		},
		{
			name: "reports_missing_remote_as_not_set",
			configurationValues: map[string]string{
				"user.name":  "name_0",
				"user.email": "email_0@example.com",
			},
			expectedOutput: "~Active Passport:\n" +
				"    . User:   name_0\n" +
				"    . E-Mail: email_0@example.com\n" +
				"    . Remote: Not set\n",
		},
		{
			name: "partial_identity_counts_as_unset",
			configurationValues: map[string]string{
				"user.email": "email_0@example.com",
			},
			expectedOutput: "No passport set.\n",
		},
		{
			name:           "absent_identity_reported",
			expectedOutput: "No passport set.\n",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			store := &stubConfigurationStore{settings: enabledTestSettings(), passports: testPassportFixtures()}
			gateway := &stubRepositoryGateway{
				insideWorkTree:      true,
				remoteURL:           testCase.remoteURL,
				configurationValues: testCase.configurationValues,
			}

			controller := buildTestController(testInstance, store, gateway, &scriptedPrompter{}, outputBuffer)

			require.NoError(testInstance, controller.ShowActive(context.Background()))
			require.Equal(testInstance, testCase.expectedOutput, outputBuffer.String())
		})
	}
}

func TestControllerListPassports(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	store := &stubConfigurationStore{settings: enabledTestSettings(), passports: testPassportFixtures()}
	gateway := &stubRepositoryGateway{insideWorkTree: true}

	controller := buildTestController(testInstance, store, gateway, &scriptedPrompter{}, outputBuffer)

	require.NoError(testInstance, controller.ListPassports(context.Background()))

	expectedOutput := "~Passport ID: 0\n" +
		"    . User:    name_0\n" +
		"    . E-Mail:  email_0@example.com\n" +
		"    . Service: github.com\n\n" +
		"~Passport ID: 1\n" +
		"    . User:    name_1\n" +
		"    . E-Mail:  email_1@example.com\n" +
		"    . Service: gitlab.com\n\n"
	require.Equal(testInstance, expectedOutput, outputBuffer.String())
}

func TestControllerListPassportsWithoutEntries(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	store := &stubConfigurationStore{settings: enabledTestSettings(), filePath: "/home/user/.gitpassport"}
	gateway := &stubRepositoryGateway{insideWorkTree: true}

	controller := buildTestController(testInstance, store, gateway, &scriptedPrompter{}, outputBuffer)

	require.NoError(testInstance, controller.ListPassports(context.Background()))
	require.Equal(testInstance, "No passports found in /home/user/.gitpassport.\n", outputBuffer.String())
}

func TestNewControllerValidatesDependencies(testInstance *testing.T) {
	gateway := &stubRepositoryGateway{}
	applier, applierError := passport.NewGitIdentityApplier(gateway, testRepositoryPathConstant)
	require.NoError(testInstance, applierError)

	_, missingPrompterError := passport.NewController(passport.ControllerDependencies{
		Store:   &stubConfigurationStore{},
		Gateway: gateway,
		Applier: applier,
	})
	require.ErrorIs(testInstance, missingPrompterError, passport.ErrSelectionPrompterNotConfigured)
}
