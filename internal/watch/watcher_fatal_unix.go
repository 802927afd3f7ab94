// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// exhaustedResource recognizes fsnotify errors that stop event delivery and
// returns advice for getting a large tree under watch. inotify needs one
// watch per folder, so big projects reach fs.inotify.max_user_watches
// (ENOSPC) before anything else.
func exhaustedResource(err error) (advice string, stopped bool) {
	switch {
	case errors.Is(err, syscall.ENOSPC):
		return "Raise fs.inotify.max_user_watches, or add generated folders to the global ignores", true
	case errors.Is(err, syscall.EMFILE), errors.Is(err, syscall.ENFILE):
		return "Raise the open file limit (ulimit -n), or add generated folders to the global ignores", true
	default:
		return "", false
	}
}
