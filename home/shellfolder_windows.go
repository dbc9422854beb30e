//go:build windows

package home

import "golang.org/x/sys/windows"

// shellFolder asks the shell for the profile known folder, which does not
// depend on environment variables.
func shellFolder(string) (string, error) {
	return windows.KnownFolderPath(windows.FOLDERID_Profile, 0)
}
