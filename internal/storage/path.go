package storage

import (
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
)

const (
	dataDirName   = ".curpy"
	cacheFileName = "rates.json"
)

// Lookups used by ResolvePath, replaceable in tests.
var (
	homeDir    = homedir.Dir
	executable = os.Executable
)

// ResolvePath picks the cache file location. The order is:
//
//  1. explicit, with a leading "~" expanded;
//  2. $PROGRAMDATA/.curpy/rates.json;
//  3. <home>/.curpy/rates.json, home taken from $HOME or the OS user database;
//  4. <directory of the executable>/data/rates.json.
func ResolvePath(explicit string) string {
	if explicit != "" {
		if expanded, err := homedir.Expand(explicit); err == nil {
			return expanded
		}
		return explicit
	}
	if dir := os.Getenv("PROGRAMDATA"); dir != "" {
		return filepath.Join(dir, dataDirName, cacheFileName)
	}
	if home, err := homeDir(); err == nil && home != "" {
		return filepath.Join(home, dataDirName, cacheFileName)
	}
	if exe, err := executable(); err == nil {
		return filepath.Join(filepath.Dir(exe), "data", cacheFileName)
	}
	return filepath.Join("data", cacheFileName)
}
