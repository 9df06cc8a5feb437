package passport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/git-passport/internal/gitrepo"
)

const (
	sampleGeneratedMessageConstant        = "No configuration file found ~/.\nGenerating a sample configuration file.\n"
	hookDisabledMessageConstant           = "git-passport is currently disabled.\n"
	noMatchAdvisoryTemplateConstant       = "Zero suitable passports found - leaving the local identity untouched.\nremote.origin.url: %s\n"
	noMatchHintTemplateConstant           = "Add a passport with «service = %s» to enable automatic selection.\n"
	fallbackAnnouncementConstant          = "«remote.origin.url» is not set, applying the fallback passport:\n\n"
	noPassportsConfiguredTemplateConstant = "«remote.origin.url» is not set and no passports are configured.\nAdd a passport to %s to enable the fallback.\n"
	advisorySeparatorConstant             = "\n"

	identityAppliedLogMessageConstant = "local identity updated"
	passportIndexLogFieldConstant     = "passport_index"
	remoteURLLogFieldConstant         = "remote_url"
)

// Resolver performs automatic hook-mode identity resolution: it matches the
// repository remote against the configured passports and applies the first
// match to the local Git configuration.
type Resolver struct {
	logger           *zap.Logger
	store            ConfigurationStore
	gateway          GitConfigurationGateway
	applier          IdentityApplier
	sleeper          Sleeper
	outputWriter     io.Writer
	workingDirectory string
}

// ResolverDependencies carries the collaborators required by NewResolver.
type ResolverDependencies struct {
	Logger           *zap.Logger
	Store            ConfigurationStore
	Gateway          GitConfigurationGateway
	Applier          IdentityApplier
	Sleeper          Sleeper
	OutputWriter     io.Writer
	WorkingDirectory string
}

// NewResolver validates the dependencies and constructs a Resolver.
func NewResolver(dependencies ResolverDependencies) (*Resolver, error) {
	if dependencies.Store == nil {
		return nil, ErrConfigurationStoreNotConfigured
	}
	if dependencies.Gateway == nil {
		return nil, ErrGitGatewayNotConfigured
	}
	if dependencies.Applier == nil {
		return nil, ErrIdentityApplierNotConfigured
	}
	resolverLogger := dependencies.Logger
	if resolverLogger == nil {
		resolverLogger = zap.NewNop()
	}
	resolverSleeper := dependencies.Sleeper
	if resolverSleeper == nil {
		resolverSleeper = SystemSleeper{}
	}
	resolverOutput := dependencies.OutputWriter
	if resolverOutput == nil {
		resolverOutput = io.Discard
	}
	return &Resolver{
		logger:           resolverLogger,
		store:            dependencies.Store,
		gateway:          dependencies.Gateway,
		applier:          dependencies.Applier,
		sleeper:          resolverSleeper,
		outputWriter:     resolverOutput,
		workingDirectory: dependencies.WorkingDirectory,
	}, nil
}

// ResolveOptions adjusts a single resolution run.
type ResolveOptions struct {
	// EnableHookOverride, when set, replaces the configured enable_hook value.
	EnableHookOverride *bool
}

// Run executes one automatic resolution pass. A missing configuration file
// provisions the sample and returns nil; a disabled hook prints a notice and
// returns nil. Matching failures are advisory and never touch the identity.
func (resolver *Resolver) Run(executionContext context.Context, options ResolveOptions) error {
	settings, passports, provisioned, loadError := loadConfigurationProvisioningSample(resolver.store, resolver.outputWriter)
	if loadError != nil {
		return loadError
	}
	if provisioned {
		return nil
	}

	hookEnabled := settings.EnableHook
	if options.EnableHookOverride != nil {
		hookEnabled = *options.EnableHookOverride
	}
	if !hookEnabled {
		fmt.Fprint(resolver.outputWriter, hookDisabledMessageConstant)
		return nil
	}

	if workTreeError := ensureInsideWorkTree(executionContext, resolver.gateway, resolver.workingDirectory); workTreeError != nil {
		return workTreeError
	}

	remoteURL, remoteError := resolver.gateway.GetRemoteURL(executionContext, resolver.workingDirectory)
	if remoteError != nil {
		return remoteError
	}

	if len(remoteURL) == 0 {
		return resolver.applyFallbackPassport(executionContext, settings, passports)
	}

	matchedPassport, matched := MatchPassport(remoteURL, passports)
	if !matched {
		resolver.reportNoMatch(remoteURL)
		return nil
	}

	identityChanged, applyError := resolver.applier.Apply(executionContext, matchedPassport)
	if applyError != nil {
		return applyError
	}
	if !identityChanged {
		return nil
	}
	resolver.logger.Debug(identityAppliedLogMessageConstant,
		zap.Int(passportIndexLogFieldConstant, matchedPassport.Index),
		zap.String(remoteURLLogFieldConstant, remoteURL))
	if !settings.Quiet {
		fmt.Fprint(resolver.outputWriter, formatActiveIdentity(Identity{Name: matchedPassport.Name, Email: matchedPassport.Email}, remoteURL, false))
		resolver.pause(settings.SleepDuration)
	}
	return nil
}

func (resolver *Resolver) applyFallbackPassport(executionContext context.Context, settings GeneralSettings, passports []Passport) error {
	fallbackPassport, fallbackAvailable := settings.FallbackPassport(passports)
	if !fallbackAvailable {
		fmt.Fprintf(resolver.outputWriter, noPassportsConfiguredTemplateConstant, resolver.store.FilePath())
		return nil
	}
	if _, applyError := resolver.applier.Apply(executionContext, fallbackPassport); applyError != nil {
		return applyError
	}
	resolver.logger.Debug(identityAppliedLogMessageConstant, zap.Int(passportIndexLogFieldConstant, fallbackPassport.Index))
	fmt.Fprint(resolver.outputWriter, fallbackAnnouncementConstant)
	fmt.Fprint(resolver.outputWriter, formatActiveIdentity(Identity{Name: fallbackPassport.Name, Email: fallbackPassport.Email}, "", false))
	resolver.pause(settings.SleepDuration)
	return nil
}

func (resolver *Resolver) reportNoMatch(remoteURL string) {
	fmt.Fprintf(resolver.outputWriter, noMatchAdvisoryTemplateConstant, remoteURL)
	parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError == nil && len(parsedRemote.Host) > 0 {
		fmt.Fprintf(resolver.outputWriter, noMatchHintTemplateConstant, parsedRemote.Host)
	}
	fmt.Fprint(resolver.outputWriter, advisorySeparatorConstant)
}

func (resolver *Resolver) pause(sleepSeconds float64) {
	if sleepSeconds <= 0 {
		return
	}
	resolver.sleeper.Sleep(time.Duration(sleepSeconds * float64(time.Second)))
}

func loadConfigurationProvisioningSample(store ConfigurationStore, outputWriter io.Writer) (GeneralSettings, []Passport, bool, error) {
	settings, passports, loadError := store.Load()
	if loadError == nil {
		return settings, passports, false, nil
	}
	if !errors.Is(loadError, ErrConfigurationMissing) {
		return GeneralSettings{}, nil, false, loadError
	}
	fmt.Fprint(outputWriter, sampleGeneratedMessageConstant)
	if generationError := store.GenerateSample(); generationError != nil && !errors.Is(generationError, fs.ErrExist) {
		return GeneralSettings{}, nil, false, generationError
	}
	return GeneralSettings{}, nil, true, nil
}

func ensureInsideWorkTree(executionContext context.Context, gateway GitConfigurationGateway, workingDirectory string) error {
	insideWorkTree, workTreeCheckError := gateway.CheckInsideWorkTree(executionContext, workingDirectory)
	if workTreeCheckError != nil {
		return workTreeCheckError
	}
	if !insideWorkTree {
		return ErrOutsideRepository
	}
	return nil
}
