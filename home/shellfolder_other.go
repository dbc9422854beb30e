//go:build !windows

package home

func shellFolder(string) (string, error) {
	return "", errSkipped
}
