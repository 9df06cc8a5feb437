package passport

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/ini.v1"
)

const (
	generalSectionNameConstant          = "general"
	passportSectionNameTemplateConstant = "passport %d"
	passportSectionPatternConstant      = `^passport\s[0-9]+$`
	emailPatternConstant                = `^[^@]+@[^@]+\.[^@]+`
	enableHookKeyConstant               = "enable_hook"
	sleepDurationKeyConstant            = "sleep_duration"
	quietKeyConstant                    = "quiet"
	fallbackPassportKeyConstant         = "fallback_passport"
	emailKeyConstant                    = "email"
	nameKeyConstant                     = "name"
	serviceKeyConstant                  = "service"
	allowedSectionNamesConstant         = "general, passport"
	allowedOptionNamesConstant          = "email, enable_hook, fallback_passport, name, service, sleep_duration, quiet"
	optionListSeparatorConstant         = ", "
	sampleFilePermissionsConstant       = 0o644

	storePathRequiredMessageConstant        = "passport configuration file path is required"
	configurationStatErrorTemplateConstant  = "unable to inspect passport configuration file %s: %w"
	configurationParseErrorTemplateConstant = "E > Configuration > Unable to parse %s: %v"
	configurationSaveErrorTemplateConstant  = "unable to save passport configuration file %s: %w"
	sampleCreationErrorTemplateConstant     = "unable to create sample configuration file %s: %w"
	sampleWriteErrorTemplateConstant        = "unable to write sample configuration file %s: %w"

	invalidSectionsTemplateConstant       = "E > Configuration > Invalid sections:\n>>> %s\n\nAllowed sections (Passport sections scheme: \"passport 0\"):\n>>> %s"
	invalidOptionsTemplateConstant        = "E > Configuration > Invalid options:\n>>> %s\n\nAllowed options:\n>>> %s"
	missingGeneralSectionMessageConstant  = "E > Configuration > Missing section: general."
	missingOptionsTemplateConstant        = "E > Configuration > Missing options:\n>>> %s"
	enableHookValueMessageConstant        = "E > Configuration > enable_hook: Expecting True or False."
	quietValueMessageConstant             = "E > Configuration > quiet: Expecting True or False."
	sleepDurationValueMessageConstant     = "E > Configuration > sleep_duration: Expecting float or number."
	sleepDurationNegativeMessageConstant  = "E > Configuration > sleep_duration: Expecting a non-negative duration."
	fallbackPassportValueMessageConstant  = "E > Configuration > fallback_passport: Expecting a passport ID."
	fallbackPassportRangeTemplateConstant = "E > Configuration > fallback_passport: No passport with ID %d."

	implausibleEmailLogMessageConstant = "passport email looks implausible"
	sectionLogFieldConstant            = "section"
	emailLogFieldConstant              = "email"
)

const sampleConfigurationContentConstant = `# This is a git-passport configuration example.
[general]
enable_hook = true
sleep_duration = 0.75
quiet = false

[passport 0]
email = email_0@example.com
name = name_0
service = github.com

[passport 1]
email = email_1@example.com
name = name_1
service = gitlab.com
`

var (
	// ErrStorePathNotConfigured reports a store constructed without a file path.
	ErrStorePathNotConfigured = errors.New(storePathRequiredMessageConstant)

	passportSectionNamePattern = regexp.MustCompile(passportSectionPatternConstant)
	passportEmailPattern       = regexp.MustCompile(emailPatternConstant)
)

func init() {
	// Emit "key = value" lines without column alignment.
	ini.PrettyFormat = false
	ini.PrettyEqual = true
}

type passportSectionSchema struct {
	Email   string `ini:"email"`
	Name    string `ini:"name"`
	Service string `ini:"service,omitempty"`
}

// Store reads and writes the passport configuration file.
type Store struct {
	configurationFilePath string
	logger                *zap.Logger
}

// NewStore constructs a Store for the provided configuration file path.
func NewStore(configurationFilePath string, logger *zap.Logger) (*Store, error) {
	trimmedPath := strings.TrimSpace(configurationFilePath)
	if len(trimmedPath) == 0 {
		return nil, ErrStorePathNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{configurationFilePath: trimmedPath, logger: logger}, nil
}

// FilePath returns the configuration file path the store operates on.
func (store *Store) FilePath() string {
	return store.configurationFilePath
}

// Load parses and validates the configuration file. An absent file yields
// ErrConfigurationMissing; validation failures yield a
// MalformedConfigurationError describing every offending entry.
func (store *Store) Load() (GeneralSettings, []Passport, error) {
	if _, statError := os.Stat(store.configurationFilePath); statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return GeneralSettings{}, nil, ErrConfigurationMissing
		}
		return GeneralSettings{}, nil, fmt.Errorf(configurationStatErrorTemplateConstant, store.configurationFilePath, statError)
	}

	iniFile, loadError := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, store.configurationFilePath)
	if loadError != nil {
		return GeneralSettings{}, nil, MalformedConfigurationError{Reason: fmt.Sprintf(configurationParseErrorTemplateConstant, store.configurationFilePath, loadError)}
	}

	if sectionError := validateSectionNames(iniFile); sectionError != nil {
		return GeneralSettings{}, nil, sectionError
	}
	if optionError := validateOptionNames(iniFile); optionError != nil {
		return GeneralSettings{}, nil, optionError
	}
	if requiredError := validateRequiredOptions(iniFile); requiredError != nil {
		return GeneralSettings{}, nil, requiredError
	}

	settings, settingsError := parseGeneralSettings(iniFile)
	if settingsError != nil {
		return GeneralSettings{}, nil, settingsError
	}

	passports := store.collectPassports(iniFile)

	if settings.FallbackPassportDesignated {
		if settings.FallbackPassportIndex < 0 || settings.FallbackPassportIndex >= len(passports) {
			return GeneralSettings{}, nil, MalformedConfigurationError{Reason: fmt.Sprintf(fallbackPassportRangeTemplateConstant, settings.FallbackPassportIndex)}
		}
	}

	return settings, passports, nil
}

// Save writes the settings and passports back to the configuration file.
// Passport sections are renumbered to consecutive ordinals.
func (store *Store) Save(settings GeneralSettings, passports []Passport) error {
	iniFile := ini.Empty()

	generalSection, generalSectionError := iniFile.NewSection(generalSectionNameConstant)
	if generalSectionError != nil {
		return fmt.Errorf(configurationSaveErrorTemplateConstant, store.configurationFilePath, generalSectionError)
	}
	generalSection.Key(enableHookKeyConstant).SetValue(strconv.FormatBool(settings.EnableHook))
	generalSection.Key(sleepDurationKeyConstant).SetValue(strconv.FormatFloat(settings.SleepDuration, 'g', -1, 64))
	generalSection.Key(quietKeyConstant).SetValue(strconv.FormatBool(settings.Quiet))
	if settings.FallbackPassportDesignated {
		generalSection.Key(fallbackPassportKeyConstant).SetValue(strconv.Itoa(settings.FallbackPassportIndex))
	}

	for ordinalIndex, record := range passports {
		passportSection, passportSectionError := iniFile.NewSection(fmt.Sprintf(passportSectionNameTemplateConstant, ordinalIndex))
		if passportSectionError != nil {
			return fmt.Errorf(configurationSaveErrorTemplateConstant, store.configurationFilePath, passportSectionError)
		}
		sectionSchema := passportSectionSchema{Email: record.Email, Name: record.Name, Service: record.Service}
		if reflectError := passportSection.ReflectFrom(&sectionSchema); reflectError != nil {
			return fmt.Errorf(configurationSaveErrorTemplateConstant, store.configurationFilePath, reflectError)
		}
	}

	if saveError := iniFile.SaveTo(store.configurationFilePath); saveError != nil {
		return fmt.Errorf(configurationSaveErrorTemplateConstant, store.configurationFilePath, saveError)
	}
	return nil
}

// GenerateSample creates the configuration file from the built-in example.
// The file must not exist yet; an existing file yields an error wrapping
// fs.ErrExist.
func (store *Store) GenerateSample() error {
	sampleFile, openError := os.OpenFile(store.configurationFilePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, sampleFilePermissionsConstant)
	if openError != nil {
		return fmt.Errorf(sampleCreationErrorTemplateConstant, store.configurationFilePath, openError)
	}
	_, writeError := sampleFile.WriteString(sampleConfigurationContentConstant)
	closeError := sampleFile.Close()
	if writeError != nil {
		return fmt.Errorf(sampleWriteErrorTemplateConstant, store.configurationFilePath, writeError)
	}
	if closeError != nil {
		return fmt.Errorf(sampleWriteErrorTemplateConstant, store.configurationFilePath, closeError)
	}
	return nil
}

func validateSectionNames(iniFile *ini.File) error {
	invalidSections := []string{}
	for _, section := range iniFile.Sections() {
		sectionName := section.Name()
		if sectionName == ini.DefaultSection {
			if len(section.Keys()) > 0 {
				invalidSections = append(invalidSections, sectionName)
			}
			continue
		}
		if sectionName == generalSectionNameConstant {
			continue
		}
		if passportSectionNamePattern.MatchString(sectionName) {
			continue
		}
		invalidSections = append(invalidSections, sectionName)
	}
	if len(invalidSections) > 0 {
		return MalformedConfigurationError{Reason: fmt.Sprintf(invalidSectionsTemplateConstant, strings.Join(invalidSections, optionListSeparatorConstant), allowedSectionNamesConstant)}
	}
	return nil
}

func validateOptionNames(iniFile *ini.File) error {
	allowedOptionNames := map[string]struct{}{
		emailKeyConstant:            {},
		enableHookKeyConstant:       {},
		fallbackPassportKeyConstant: {},
		nameKeyConstant:             {},
		serviceKeyConstant:          {},
		sleepDurationKeyConstant:    {},
		quietKeyConstant:            {},
	}
	invalidOptions := []string{}
	seenInvalidOptions := map[string]struct{}{}
	for _, section := range iniFile.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		for _, optionName := range section.KeyStrings() {
			if _, optionAllowed := allowedOptionNames[optionName]; optionAllowed {
				continue
			}
			if _, alreadySeen := seenInvalidOptions[optionName]; alreadySeen {
				continue
			}
			seenInvalidOptions[optionName] = struct{}{}
			invalidOptions = append(invalidOptions, optionName)
		}
	}
	if len(invalidOptions) > 0 {
		return MalformedConfigurationError{Reason: fmt.Sprintf(invalidOptionsTemplateConstant, strings.Join(invalidOptions, optionListSeparatorConstant), allowedOptionNamesConstant)}
	}
	return nil
}

func validateRequiredOptions(iniFile *ini.File) error {
	generalSection, generalSectionError := iniFile.GetSection(generalSectionNameConstant)
	if generalSectionError != nil {
		return MalformedConfigurationError{Reason: missingGeneralSectionMessageConstant}
	}

	missingOptions := []string{}
	for _, requiredOption := range []string{enableHookKeyConstant, sleepDurationKeyConstant} {
		if !generalSection.HasKey(requiredOption) {
			missingOptions = append(missingOptions, generalSectionNameConstant+": "+requiredOption)
		}
	}
	for _, section := range iniFile.Sections() {
		if !passportSectionNamePattern.MatchString(section.Name()) {
			continue
		}
		for _, requiredOption := range []string{nameKeyConstant, emailKeyConstant} {
			if len(strings.TrimSpace(section.Key(requiredOption).String())) == 0 {
				missingOptions = append(missingOptions, section.Name()+": "+requiredOption)
			}
		}
	}
	if len(missingOptions) > 0 {
		return MalformedConfigurationError{Reason: fmt.Sprintf(missingOptionsTemplateConstant, strings.Join(missingOptions, optionListSeparatorConstant))}
	}
	return nil
}

func parseGeneralSettings(iniFile *ini.File) (GeneralSettings, error) {
	generalSection := iniFile.Section(generalSectionNameConstant)
	settings := GeneralSettings{}

	enableHookValue, enableHookError := generalSection.Key(enableHookKeyConstant).Bool()
	if enableHookError != nil {
		return GeneralSettings{}, MalformedConfigurationError{Reason: enableHookValueMessageConstant}
	}
	settings.EnableHook = enableHookValue

	sleepDurationValue, sleepDurationError := generalSection.Key(sleepDurationKeyConstant).Float64()
	if sleepDurationError != nil {
		return GeneralSettings{}, MalformedConfigurationError{Reason: sleepDurationValueMessageConstant}
	}
	if sleepDurationValue < 0 {
		return GeneralSettings{}, MalformedConfigurationError{Reason: sleepDurationNegativeMessageConstant}
	}
	settings.SleepDuration = sleepDurationValue

	if generalSection.HasKey(quietKeyConstant) {
		quietValue, quietError := generalSection.Key(quietKeyConstant).Bool()
		if quietError != nil {
			return GeneralSettings{}, MalformedConfigurationError{Reason: quietValueMessageConstant}
		}
		settings.Quiet = quietValue
	}

	if generalSection.HasKey(fallbackPassportKeyConstant) {
		fallbackIndexValue, fallbackIndexError := generalSection.Key(fallbackPassportKeyConstant).Int()
		if fallbackIndexError != nil {
			return GeneralSettings{}, MalformedConfigurationError{Reason: fallbackPassportValueMessageConstant}
		}
		settings.FallbackPassportIndex = fallbackIndexValue
		settings.FallbackPassportDesignated = true
	}

	return settings, nil
}

func (store *Store) collectPassports(iniFile *ini.File) []Passport {
	passports := []Passport{}
	for _, section := range iniFile.Sections() {
		if !passportSectionNamePattern.MatchString(section.Name()) {
			continue
		}
		sectionSchema := passportSectionSchema{}
		if mapError := section.MapTo(&sectionSchema); mapError != nil {
			continue
		}
		if !passportEmailPattern.MatchString(sectionSchema.Email) {
			store.logger.Warn(implausibleEmailLogMessageConstant,
				zap.String(sectionLogFieldConstant, section.Name()),
				zap.String(emailLogFieldConstant, sectionSchema.Email))
		}
		passports = append(passports, Passport{
			Index:   len(passports),
			Name:    sectionSchema.Name,
			Email:   sectionSchema.Email,
			Service: sectionSchema.Service,
		})
	}
	return passports
}
