package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when the requested record does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when a unique constraint rejects a new record.
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrConcurrencyConflict is returned when an optimistic lock detects a competing write.
	ErrConcurrencyConflict = errors.New("optimistic lock failure: record was updated concurrently")

	// ErrWeakPassword rejects report passwords shorter than MinReportPasswordLength.
	ErrWeakPassword = errors.New("password must be at least 4 characters")

	// ErrPasswordMismatch is returned when the confirmation does not match the password.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrReportDecryption is the single, uniform failure for opening a report.
	// 🛡️ Wrong password, corrupted token and tampered ciphertext all map here.
	ErrReportDecryption = errors.New("password incorrect or data corrupted")

	// ErrCryptoUnavailable wraps failures of the underlying primitives (entropy, cipher setup).
	ErrCryptoUnavailable = errors.New("cryptographic primitive unavailable")

	// ErrInvalidPayload is returned when a report payload cannot be serialized or fails schema validation.
	ErrInvalidPayload = errors.New("invalid report payload")

	// ErrStorageVersion is returned when stored data was written by a newer schema than this build understands.
	ErrStorageVersion = errors.New("unsupported storage version")

	// ErrInvalidCredentials covers every admin login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
