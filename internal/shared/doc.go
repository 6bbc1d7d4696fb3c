// Package shared holds helpers used by more than one package. Its testutil
// sub-package is imported from _test.go files only.
package shared
