// Package pathresolve derives the on-disk location of a settings file from the
// store name, the location of the library doing the persisting, and the
// location of the client code calling it.
//
// The same store name used by two installations of the library, or by two
// different tools, lands in two different files:
//
//	{name}-{hash4(dir(library))}-{hash4(dir(caller))}.cfg
package pathresolve

import (
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"
	"runtime"
)

const (
	// Extension is appended to every resolved settings file name.
	Extension = ".cfg"
	// BackupSuffix is appended to a settings file path to name its backup.
	BackupSuffix = ".bak"
	// UndefinedCaller is used when the caller does not supply its location.
	UndefinedCaller = "undefined"
)

// Resolve returns baseDir joined with the derived file name. It only reads
// its arguments, so the same inputs always produce the same path.
func Resolve(storeName, libraryLocation, callerLocation, baseDir string) string {
	if callerLocation == "" {
		callerLocation = UndefinedCaller
	}
	return filepath.Join(baseDir, FileName(storeName, libraryLocation, callerLocation))
}

// FileName returns the settings file name without any directory component.
func FileName(storeName, libraryLocation, callerLocation string) string {
	if callerLocation == "" {
		callerLocation = UndefinedCaller
	}
	return storeName + "-" + Hash4(dirOf(libraryLocation)) + "-" + Hash4(dirOf(callerLocation)) + Extension
}

// BackupPath names the sibling file used to keep the previous version.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// Hash4 returns the first four hex characters of the SHA-1 digest of value.
func Hash4(value string) string {
	sum := sha1.Sum([]byte(value))
	return hex.EncodeToString(sum[:])[:4]
}

// LibraryLocation reports the source file of this package as recorded by the
// toolchain. Builds using -trimpath yield a module-qualified path, which
// still differs between module versions.
func LibraryLocation() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return UndefinedCaller
	}
	return file
}

// CallerLocation returns the source file skip frames above the function
// calling CallerLocation. CallerLocation(0) names the caller's own file.
func CallerLocation(skip int) string {
	_, file, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return UndefinedCaller
	}
	return file
}

func dirOf(location string) string {
	if filepath.IsAbs(location) {
		return filepath.Dir(filepath.Clean(location))
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return filepath.Dir(location)
	}
	return filepath.Dir(abs)
}
