// Package passport manages Git identities. It loads passport records from an
// INI configuration file, matches them against the repository remote, and
// applies the selected identity to the repository-local Git configuration.
package passport
