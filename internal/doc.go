// Package internal holds small helpers shared by hireauth packages: user id
// generation (ULID) and signing secret generation.
package internal
