package passport_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/git-passport/internal/passport"
)

const expectedAnnouncementPauseConstant = 750 * time.Millisecond

type stubConfigurationStore struct {
	settings        passport.GeneralSettings
	passports       []passport.Passport
	loadError       error
	filePath        string
	sampleGenerated bool
}

func (store *stubConfigurationStore) Load() (passport.GeneralSettings, []passport.Passport, error) {
	if store.loadError != nil {
		return passport.GeneralSettings{}, nil, store.loadError
	}
	return store.settings, store.passports, nil
}

func (store *stubConfigurationStore) GenerateSample() error {
	store.sampleGenerated = true
	return nil
}

func (store *stubConfigurationStore) FilePath() string {
	return store.filePath
}

type recordingSleeper struct {
	durations []time.Duration
}

func (sleeper *recordingSleeper) Sleep(duration time.Duration) {
	sleeper.durations = append(sleeper.durations, duration)
}

func boolPointer(value bool) *bool {
	return &value
}

func enabledTestSettings() passport.GeneralSettings {
	return passport.GeneralSettings{EnableHook: true, SleepDuration: 0.75}
}

func testPassportFixtures() []passport.Passport {
	return []passport.Passport{
		{Index: 0, Name: "name_0", Email: "email_0@example.com", Service: "github.com"},
		{Index: 1, Name: "name_1", Email: "email_1@example.com", Service: "gitlab.com"},
	}
}

func TestResolverRun(testInstance *testing.T) {
	testCases := []struct {
		name                   string
		store                  *stubConfigurationStore
		gateway                *stubRepositoryGateway
		options                passport.ResolveOptions
		expectedOutput         string
		expectedWrites         map[string]string
		expectedSleeps         int
		expectedWorkTreeChecks int
		expectSampleGenerated  bool
		expectedError          error
		expectedErrorMessage   string
	}{
		{
			name:                  "missing_configuration_generates_sample",
			store:                 &stubConfigurationStore{loadError: passport.ErrConfigurationMissing},
			gateway:               &stubRepositoryGateway{},
			expectedOutput:        "No configuration file found ~/.\nGenerating a sample configuration file.\n",
			expectSampleGenerated: true,
		},
		{
			name:                 "malformed_configuration_propagates",
			store:                &stubConfigurationStore{loadError: passport.MalformedConfigurationError{Reason: "E > Configuration > enable_hook: Expecting True or False."}},
			gateway:              &stubRepositoryGateway{},
			expectedErrorMessage: "E > Configuration > enable_hook: Expecting True or False.",
		},
		{
			name:           "disabled_hook_prints_notice",
			store:          &stubConfigurationStore{settings: passport.GeneralSettings{SleepDuration: 0.75}, passports: testPassportFixtures()},
			gateway:        &stubRepositoryGateway{},
			expectedOutput: "git-passport is currently disabled.\n",
		},
		{
			name:           "override_disables_enabled_hook",
			store:          &stubConfigurationStore{settings: enabledTestSettings(), passports: testPassportFixtures()},
			gateway:        &stubRepositoryGateway{},
			options:        passport.ResolveOptions{EnableHookOverride: boolPointer(false)},
			expectedOutput: "git-passport is currently disabled.\n",
		},
		{
			name:    "override_enables_disabled_hook",
			store:   &stubConfigurationStore{settings: passport.GeneralSettings{SleepDuration: 0.75}, passports: testPassportFixtures()},
			gateway: &stubRepositoryGateway{insideWorkTree: true, remoteURL: "https://github.com/example/project.git"},
			options: passport.ResolveOptions{EnableHookOverride: boolPointer(true)},
			expectedOutput: "~Active Passport:\n" +
				"    . User:   name_0\n" +
				"    . E-Mail: email_0@example.com\n" +
				"    . Remote: https://github.com/example/project.git\n\n",
			expectedWrites:         map[string]string{"user.name": "name_0", "user.email": "email_0@example.com"},
			expectedSleeps:         1,
			expectedWorkTreeChecks: 1,
		},
		{
			name:                   "outside_work_tree_rejected",
			store:                  &stubConfigurationStore{settings: enabledTestSettings(), passports: testPassportFixtures()},
			gateway:                &stubRepositoryGateway{insideWorkTree: false},
			expectedWorkTreeChecks: 1,
			expectedError:          passport.ErrOutsideRepository,
		},
		{
			name:    "matching_passport_announced",
			store:   &stubConfigurationStore{settings: enabledTestSettings(), passports: testPassportFixtures()},
			gateway: &stubRepositoryGateway{insideWorkTree: true, remoteURL: "https://github.com/example/project.git"},
			expectedOutput: "~Active Passport:\n" +
				"    . User:   name_0\n" +
				"    . E-Mail: email_0@example.com\n" +
				"    . Remote: https://github.com/example/project.git\n\n",
			expectedWrites:         map[string]string{"user.name": "name_0", "user.email": "email_0@example.com"},
			expectedSleeps:         1,
			expectedWorkTreeChecks: 1,
		},
		{
			name: "quiet_match_suppresses_announcement",
			store: &stubConfigurationStore{
				settings:  passport.GeneralSettings{EnableHook: true, SleepDuration: 0.75, Quiet: true},
				passports: testPassportFixtures(),
			},
			gateway:                &stubRepositoryGateway{insideWorkTree: true, remoteURL: "git@gitlab.com:example/project.git"},
			expectedWrites:         map[string]string{"user.name": "name_1", "user.email": "email_1@example.com"},
			expectedWorkTreeChecks: 1,
		},
		{
			name:  "already_active_identity_untouched",
			store: &stubConfigurationStore{settings: enabledTestSettings(), passports: testPassportFixtures()},
			gateway: &stubRepositoryGateway{
				insideWorkTree: true,
				remoteURL:      "https://github.com/example/project.git",
				configurationValues: map[string]string{
					"user.name":  "name_0",
					"user.email": "email_0@example.com",
				},
			},
			expectedWorkTreeChecks: 1,
		},
		{
			name:    "unmatched_remote_reports_advisory",
			store:   &stubConfigurationStore{settings: enabledTestSettings(), passports: testPassportFixtures()},
			gateway: &stubRepositoryGateway{insideWorkTree: true, remoteURL: "https://bitbucket.org/team/tool.git"},
			expectedOutput: "Zero suitable passports found - leaving the local identity untouched.\n" +
				"remote.origin.url: https://bitbucket.org/team/tool.git\n" +
				"Add a passport with «service = bitbucket.org» to enable automatic selection.\n\n",
			expectedWorkTreeChecks: 1,
		},
		{
			name:    "unparseable_remote_omits_hint",
			store:   &stubConfigurationStore{settings: enabledTestSettings(), passports: testPassportFixtures()},
			gateway: &stubRepositoryGateway{insideWorkTree: true, remoteURL: "/srv/git/project.git"},
			expectedOutput: "Zero suitable passports found - leaving the local identity untouched.\n" +
				"remote.origin.url: /srv/git/project.git\n\n",
			expectedWorkTreeChecks: 1,
		},
		{
			name:    "absent_remote_applies_last_fallback",
			store:   &stubConfigurationStore{settings: enabledTestSettings(), passports: testPassportFixtures()},
			gateway: &stubRepositoryGateway{insideWorkTree: true},
			expectedOutput: "«remote.origin.url» is not set, applying the fallback passport:\n\n" +
				"~Active Passport:\n" +
				"    . User:   name_1\n" +
				"    . E-Mail: email_1@example.com\n" +
				"    . Remote: Not set\n\n",
			expectedWrites:         map[string]string{"user.name": "name_1", "user.email": "email_1@example.com"},
			expectedSleeps:         1,
			expectedWorkTreeChecks: 1,
		},
		{
			name: "absent_remote_prefers_designated_fallback",
			store: &stubConfigurationStore{
				settings: passport.GeneralSettings{
					EnableHook:                 true,
					SleepDuration:              0.75,
					FallbackPassportIndex:      0,
					FallbackPassportDesignated: true,
				},
				passports: testPassportFixtures(),
			},
			gateway: &stubRepositoryGateway{insideWorkTree: true},
			expectedOutput: "«remote.origin.url» is not set, applying the fallback passport:\n\n" +
				"~Active Passport:\n" +
				"    . User:   name_0\n" +
				"    . E-Mail: email_0@example.com\n" +
				"    . Remote: Not set\n\n",
			expectedWrites:         map[string]string{"user.name": "name_0", "user.email": "email_0@example.com"},
			expectedSleeps:         1,
			expectedWorkTreeChecks: 1,
		},
		{
			name: "absent_remote_reported_despite_quiet",
			store: &stubConfigurationStore{
				settings:  passport.GeneralSettings{EnableHook: true, SleepDuration: 0.75, Quiet: true},
				passports: testPassportFixtures(),
			},
			gateway: &stubRepositoryGateway{insideWorkTree: true},
			expectedOutput: "«remote.origin.url» is not set, applying the fallback passport:\n\n" +
				"~Active Passport:\n" +
				"    . User:   name_1\n" +
				"    . E-Mail: email_1@example.com\n" +
				"    . Remote: Not set\n\n",
			expectedWrites:         map[string]string{"user.name": "name_1", "user.email": "email_1@example.com"},
			expectedSleeps:         1,
			expectedWorkTreeChecks: 1,
		},
		{
			name:    "absent_remote_without_passports",
			store:   &stubConfigurationStore{settings: enabledTestSettings(), filePath: "/home/user/.gitpassport"},
			gateway: &stubRepositoryGateway{insideWorkTree: true},
			expectedOutput: "«remote.origin.url» is not set and no passports are configured.\n" +
				"Add a passport to /home/user/.gitpassport to enable the fallback.\n",
			expectedWorkTreeChecks: 1,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			sleeper := &recordingSleeper{}

			applier, applierError := passport.NewGitIdentityApplier(testCase.gateway, testRepositoryPathConstant)
			require.NoError(testInstance, applierError)

			resolver, resolverError := passport.NewResolver(passport.ResolverDependencies{
				Logger:           zap.NewNop(),
				Store:            testCase.store,
				Gateway:          testCase.gateway,
				Applier:          applier,
				Sleeper:          sleeper,
				OutputWriter:     outputBuffer,
				WorkingDirectory: testRepositoryPathConstant,
			})
			require.NoError(testInstance, resolverError)

			runError := resolver.Run(context.Background(), testCase.options)

			switch {
			case testCase.expectedError != nil:
				require.ErrorIs(testInstance, runError, testCase.expectedError)
			case len(testCase.expectedErrorMessage) > 0:
				require.EqualError(testInstance, runError, testCase.expectedErrorMessage)
			default:
				require.NoError(testInstance, runError)
			}

			require.Equal(testInstance, testCase.expectedOutput, outputBuffer.String())
			require.Equal(testInstance, testCase.expectSampleGenerated, testCase.store.sampleGenerated)
			require.Equal(testInstance, testCase.expectedWorkTreeChecks, testCase.gateway.workTreeChecks)

			if len(testCase.expectedWrites) > 0 {
				require.Equal(testInstance, testCase.expectedWrites, testCase.gateway.writtenValues)
			} else {
				require.Empty(testInstance, testCase.gateway.writtenValues)
			}

			require.Len(testInstance, sleeper.durations, testCase.expectedSleeps)
			if testCase.expectedSleeps > 0 {
				require.Equal(testInstance, expectedAnnouncementPauseConstant, sleeper.durations[0])
			}
		})
	}
}

func TestNewResolverValidatesDependencies(testInstance *testing.T) {
	gateway := &stubRepositoryGateway{}
	applier, applierError := passport.NewGitIdentityApplier(gateway, testRepositoryPathConstant)
	require.NoError(testInstance, applierError)

	_, missingStoreError := passport.NewResolver(passport.ResolverDependencies{Gateway: gateway, Applier: applier})
	require.ErrorIs(testInstance, missingStoreError, passport.ErrConfigurationStoreNotConfigured)

	_, missingGatewayError := passport.NewResolver(passport.ResolverDependencies{Store: &stubConfigurationStore{}, Applier: applier})
	require.ErrorIs(testInstance, missingGatewayError, passport.ErrGitGatewayNotConfigured)

	_, missingApplierError := passport.NewResolver(passport.ResolverDependencies{Store: &stubConfigurationStore{}, Gateway: gateway})
	require.ErrorIs(testInstance, missingApplierError, passport.ErrIdentityApplierNotConfigured)
}
