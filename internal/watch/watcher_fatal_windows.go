// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

const (
	errnoTooManyOpenFiles = syscall.Errno(4) // ERROR_TOO_MANY_OPEN_FILES
	errnoInvalidHandle    = syscall.Errno(6) // ERROR_INVALID_HANDLE
	errnoNotEnoughMemory  = syscall.Errno(8) // ERROR_NOT_ENOUGH_MEMORY
)

// exhaustedResource recognizes fsnotify errors that stop event delivery and
// returns advice for recovering. A lint root that is deleted or unmounted
// invalidates its directory handle.
func exhaustedResource(err error) (advice string, stopped bool) {
	switch {
	case errors.Is(err, errnoInvalidHandle):
		return "The lint root was removed or unmounted; restart once it is back", true
	case errors.Is(err, errnoTooManyOpenFiles), errors.Is(err, errnoNotEnoughMemory):
		return "Add generated folders to the global ignores to watch fewer folders", true
	default:
		return "", false
	}
}
