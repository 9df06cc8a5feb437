package passport

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

const (
	noPassportsListTemplateConstant = "No passports found in %s.\n"

	passportSelectedLogMessageConstant = "passport selected"
	passportRemovedLogMessageConstant  = "local identity removed"
)

// Controller implements the explicit command-mode passport operations.
type Controller struct {
	logger           *zap.Logger
	store            ConfigurationStore
	gateway          GitConfigurationGateway
	applier          IdentityApplier
	prompter         SelectionPrompter
	outputWriter     io.Writer
	workingDirectory string
}

// ControllerDependencies carries the collaborators required by NewController.
type ControllerDependencies struct {
	Logger           *zap.Logger
	Store            ConfigurationStore
	Gateway          GitConfigurationGateway
	Applier          IdentityApplier
	Prompter         SelectionPrompter
	OutputWriter     io.Writer
	WorkingDirectory string
}

// NewController validates the dependencies and constructs a Controller.
func NewController(dependencies ControllerDependencies) (*Controller, error) {
	if dependencies.Store == nil {
		return nil, ErrConfigurationStoreNotConfigured
	}
	if dependencies.Gateway == nil {
		return nil, ErrGitGatewayNotConfigured
	}
	if dependencies.Applier == nil {
		return nil, ErrIdentityApplierNotConfigured
	}
	if dependencies.Prompter == nil {
		return nil, ErrSelectionPrompterNotConfigured
	}
	controllerLogger := dependencies.Logger
	if controllerLogger == nil {
		controllerLogger = zap.NewNop()
	}
	controllerOutput := dependencies.OutputWriter
	if controllerOutput == nil {
		controllerOutput = io.Discard
	}
	return &Controller{
		logger:           controllerLogger,
		store:            dependencies.Store,
		gateway:          dependencies.Gateway,
		applier:          dependencies.Applier,
		prompter:         dependencies.Prompter,
		outputWriter:     controllerOutput,
		workingDirectory: dependencies.WorkingDirectory,
	}, nil
}

// Select lists every configured passport, prompts for an index, and applies
// the chosen passport to the local configuration. Quitting the dialog leaves
// the identity untouched.
func (controller *Controller) Select(executionContext context.Context) error {
	passports, ready, gateError := controller.prepare(executionContext)
	if gateError != nil || !ready {
		return gateError
	}
	if len(passports) == 0 {
		fmt.Fprintf(controller.outputWriter, noPassportsListTemplateConstant, controller.store.FilePath())
		return nil
	}

	validSelections := make([]int, 0, len(passports))
	for _, record := range passports {
		fmt.Fprint(controller.outputWriter, formatPassportEntry(record))
		validSelections = append(validSelections, record.Index)
	}

	selectedIndex, selectionError := controller.prompter.PromptSelection(validSelections)
	if selectionError != nil {
		if errors.Is(selectionError, ErrSelectionAborted) {
			return nil
		}
		return selectionError
	}

	for _, record := range passports {
		if record.Index != selectedIndex {
			continue
		}
		if _, applyError := controller.applier.Apply(executionContext, record); applyError != nil {
			return applyError
		}
		controller.logger.Debug(passportSelectedLogMessageConstant, zap.Int(passportIndexLogFieldConstant, record.Index))
		return nil
	}
	return nil
}

// Delete removes the local user section and reports the outcome.
func (controller *Controller) Delete(executionContext context.Context) error {
	_, ready, gateError := controller.prepare(executionContext)
	if gateError != nil || !ready {
		return gateError
	}

	removalError := controller.applier.Remove(executionContext)
	if removalError != nil {
		if errors.Is(removalError, ErrNothingToRemove) {
			fmt.Fprintln(controller.outputWriter, noPassportSetMessageConstant)
			return nil
		}
		return removalError
	}
	controller.logger.Debug(passportRemovedLogMessageConstant)
	fmt.Fprintln(controller.outputWriter, passportRemovedMessageConstant)
	return nil
}

// ShowActive prints the identity currently recorded in the local
// configuration together with the remote URL.
func (controller *Controller) ShowActive(executionContext context.Context) error {
	_, ready, gateError := controller.prepare(executionContext)
	if gateError != nil || !ready {
		return gateError
	}

	currentIdentity, identityError := controller.applier.CurrentIdentity(executionContext)
	if identityError != nil {
		return identityError
	}
	if !currentIdentity.IsComplete() {
		fmt.Fprintln(controller.outputWriter, noPassportSetMessageConstant)
		return nil
	}

	remoteURL, remoteError := controller.gateway.GetRemoteURL(executionContext, controller.workingDirectory)
	if remoteError != nil {
		return remoteError
	}
	fmt.Fprint(controller.outputWriter, formatActiveIdentity(currentIdentity, remoteURL, true))
	return nil
}

// ListPassports prints every configured passport.
func (controller *Controller) ListPassports(executionContext context.Context) error {
	passports, ready, gateError := controller.prepare(executionContext)
	if gateError != nil || !ready {
		return gateError
	}
	if len(passports) == 0 {
		fmt.Fprintf(controller.outputWriter, noPassportsListTemplateConstant, controller.store.FilePath())
		return nil
	}
	for _, record := range passports {
		fmt.Fprint(controller.outputWriter, formatPassportEntry(record))
	}
	return nil
}

// prepare loads the configuration, provisioning the sample when absent, and
// verifies the working directory is inside a Git work tree. The ready result
// is false when sample provisioning already answered the invocation.
func (controller *Controller) prepare(executionContext context.Context) ([]Passport, bool, error) {
	_, passports, provisioned, loadError := loadConfigurationProvisioningSample(controller.store, controller.outputWriter)
	if loadError != nil {
		return nil, false, loadError
	}
	if provisioned {
		return nil, false, nil
	}
	if workTreeError := ensureInsideWorkTree(executionContext, controller.gateway, controller.workingDirectory); workTreeError != nil {
		return nil, false, workTreeError
	}
	return passports, true, nil
}
