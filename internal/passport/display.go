package passport

import (
	"fmt"
	"strings"
)

const (
	passportEntryWithServiceTemplateConstant = "~Passport ID: %d\n    . User:    %s\n    . E-Mail:  %s\n    . Service: %s\n\n"
	passportEntryPlainTemplateConstant       = "~:Passport ID: %d\n    . User:   %s\n    . E-Mail: %s\n\n"
	activePassportTemplateConstant           = "~Active Passport:\n    . User:   %s\n    . E-Mail: %s\n    . Remote: %s"
	remoteNotSetLabelConstant                = "Not set"
	noPassportSetMessageConstant             = "No passport set."
	passportRemovedMessageConstant           = "Passport removed."
)

// formatPassportEntry renders one passport the way listings and the selection
// dialog present it. Entries without a service pattern use the narrower
// colon-prefixed form. The result includes the trailing blank line separating
// consecutive entries.
func formatPassportEntry(record Passport) string {
	if record.HasService() {
		return fmt.Sprintf(passportEntryWithServiceTemplateConstant, record.Index, record.Name, record.Email, record.Service)
	}
	return fmt.Sprintf(passportEntryPlainTemplateConstant, record.Index, record.Name, record.Email)
}

// formatActiveIdentity renders the active-passport block. The compact form
// ends after the remote line; the announcement form adds a separating blank
// line. An empty remote URL renders as "Not set".
func formatActiveIdentity(identity Identity, remoteURL string, compact bool) string {
	displayURL := strings.TrimSpace(remoteURL)
	if len(displayURL) == 0 {
		displayURL = remoteNotSetLabelConstant
	}
	identityBlock := fmt.Sprintf(activePassportTemplateConstant, identity.Name, identity.Email, displayURL)
	if compact {
		return identityBlock + "\n"
	}
	return identityBlock + "\n\n"
}
