// Package errors provides the classified error primitives used across imgup.
//
// A ClassifiedError carries a category (config, filesystem, upload, ...), a severity
// and a small structured context. The CLI adapter turns categories into exit codes.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryUpload, "upload failed").
//		WithContext("endpoint", endpoint).
//		WithContext("status", resp.StatusCode).
//		Build()
package errors
