//go:build windows

package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// writeJSONAtomic writes v to path via a temp file and MoveFileEx, so
// the file is never observed in a partial state. os.Rename fails on
// Windows when the destination exists; MOVEFILE_REPLACE_EXISTING does
// the atomic replace instead.
func writeJSONAtomic(path string, v any) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	// Temp file must live in the same directory for the rename to be atomic
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpName)
		}
	}()

	// Write JSON with indentation
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return err
	}

	// Sync to ensure data is written to disk
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}

	// Close before rename
	if err := tmp.Close(); err != nil {
		return err
	}

	// Convert paths to UTF16 for Windows API
	src, err := windows.UTF16PtrFromString(tmpName)
	if err != nil {
		return err
	}
	dst, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}

	// Atomic rename with replace (Windows-specific)
	// MOVEFILE_REPLACE_EXISTING = 0x1
	if err := windows.MoveFileEx(src, dst, windows.MOVEFILE_REPLACE_EXISTING); err != nil {
		return err
	}

	success = true
	return nil
}
