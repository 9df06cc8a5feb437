// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryManager for work-tree detection and git configuration
// reads and writes, along with remote URL parsing used when suggesting
// service patterns for unmatched repositories.
package gitrepo
