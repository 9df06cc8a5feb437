package passport

import "errors"

const (
	configurationMissingMessageConstant  = "passport configuration file is missing"
	nothingToRemoveMessageConstant       = "no local identity is set"
	selectionAbortedMessageConstant      = "passport selection aborted"
	selectionInputClosedMessageConstant  = "selection input ended before a passport was chosen"
	outsideRepositoryMessageConstant     = "The current directory does not seem to be a Git repository."
	storeNotConfiguredMessageConstant    = "configuration store is required"
	gatewayNotConfiguredMessageConstant  = "git configuration gateway is required"
	applierNotConfiguredMessageConstant  = "identity applier is required"
	prompterNotConfiguredMessageConstant = "selection prompter is required"
)

var (
	// ErrConfigurationMissing reports an absent passport configuration file.
	ErrConfigurationMissing = errors.New(configurationMissingMessageConstant)
	// ErrNothingToRemove reports a removal attempt when no local identity is set.
	ErrNothingToRemove = errors.New(nothingToRemoveMessageConstant)
	// ErrSelectionAborted reports that the user quit the selection dialog.
	ErrSelectionAborted = errors.New(selectionAbortedMessageConstant)
	// ErrSelectionInputClosed reports exhausted input during the selection dialog.
	ErrSelectionInputClosed = errors.New(selectionInputClosedMessageConstant)
	// ErrOutsideRepository reports an invocation outside a Git work tree.
	ErrOutsideRepository = errors.New(outsideRepositoryMessageConstant)
	// ErrConfigurationStoreNotConfigured reports a missing configuration store dependency.
	ErrConfigurationStoreNotConfigured = errors.New(storeNotConfiguredMessageConstant)
	// ErrGitGatewayNotConfigured reports a missing git gateway dependency.
	ErrGitGatewayNotConfigured = errors.New(gatewayNotConfiguredMessageConstant)
	// ErrIdentityApplierNotConfigured reports a missing identity applier dependency.
	ErrIdentityApplierNotConfigured = errors.New(applierNotConfiguredMessageConstant)
	// ErrSelectionPrompterNotConfigured reports a missing selection prompter dependency.
	ErrSelectionPrompterNotConfigured = errors.New(prompterNotConfiguredMessageConstant)
)

// MalformedConfigurationError reports a passport configuration file that
// failed validation. Reason holds the complete user-facing explanation.
type MalformedConfigurationError struct {
	Reason string
}

// Error returns the validation explanation.
func (validationError MalformedConfigurationError) Error() string {
	return validationError.Reason
}
