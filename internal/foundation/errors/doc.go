// Package errors provides the classified error primitives used across checkem.
//
// Every failure that crosses a package boundary is a *ClassifiedError carrying
// a category, a severity, a retry strategy and structured context. Callers
// branch on the category (HasCategory) rather than on message text.
//
// Example usage:
//
//	err := errors.StorageWriteError("failed to save store").
//		WithContext("location", path).
//		WithCause(ioErr).
//		Build()
package errors
