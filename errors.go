// SPDX-License-Identifier: EPL-2.0

package mixengine

import (
	"errors"
	"fmt"
)

// Boundary error taxonomy (spec §6): input errors are caller-recoverable
// and raised synchronously from the API call that caused them; they never
// affect a running system.
var (
	// ErrFileNotFound wraps a failed LoadAudio open (in-memory or streaming).
	ErrFileNotFound = errors.New("mixengine: file not found")
	// ErrUnsupportedFormat wraps a LoadAudio call for an extension with no
	// registered decoder.
	ErrUnsupportedFormat = errors.New("mixengine: unsupported audio format")
	// ErrAudioError wraps device/initialization failures.
	ErrAudioError = errors.New("mixengine: audio error")
)

func fileNotFoundError(path string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrFileNotFound, path, cause)
}

func unsupportedFormatError(ext string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

func audioError(msg string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrAudioError, msg)
	}
	return fmt.Errorf("%w: %s: %v", ErrAudioError, msg, cause)
}
