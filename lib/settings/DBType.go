package settings

import (
	"fmt"
	"strings"
)

type IDBType string

const (
	SQLITE   IDBType = "sqlite"
	MEMORY   IDBType = "memory"
	POSTGRES IDBType = "postgres"
)

func ParseDBType(s string) (IDBType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite":
		return SQLITE, nil
	case "memory":
		return MEMORY, nil
	case "postgres":
		return POSTGRES, nil
	default:
		return "", fmt.Errorf("unknown DB type: %q", s)
	}
}

func (dbType IDBType) String() string {
	return string(dbType)
}

// ISourceType selects where revision metadata is looked up.
type ISourceType string

const (
	SourceStore  ISourceType = "store"
	SourceGit    ISourceType = "git"
	SourceRemote ISourceType = "remote"
)

func ParseSourceType(s string) (ISourceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "store", "":
		return SourceStore, nil
	case "git":
		return SourceGit, nil
	case "remote":
		return SourceRemote, nil
	default:
		return "", fmt.Errorf("unknown metadata source: %q", s)
	}
}

func (sourceType ISourceType) String() string {
	return string(sourceType)
}
