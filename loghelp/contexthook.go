package loghelp

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

const repoDir = "prosper-stake"

// ContextHook tags error logs with the file and line inside this repo
// that logged them.
type ContextHook struct{}

func (hook ContextHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.ErrorLevel, logrus.FatalLevel}
}

func (hook ContextHook) Fire(entry *logrus.Entry) error {
	for i := 5; i < 10; i++ {
		_, file, line, ok := runtime.Caller(i)
		if ok && strings.Contains(file, repoDir) && !strings.Contains(file, "sirupsen") {
			entry.Data["source"] = fmt.Sprintf("%s:%v", ShortenRepoFilePath(file, "", 0), line)
			break
		}
	}

	return nil
}

// ShortenRepoFilePath takes a long path into the repo, and shortens it:
//
//	"/home/billy/go/src/github.com/FactomWyomingEntity/prosper-stake/accounting/ledger.go" -> "prosper-stake/accounting/ledger.go"
//
//		!! Only use for error printing !!
func ShortenRepoFilePath(path, acc string, depth int) (trimmed string) {
	if depth > 5 || path == "." || path == "/" {
		// No repo dir within reach, keep what we have
		return filepath.ToSlash(filepath.Join(path, acc))
	}
	dir, base := filepath.Split(path)
	if strings.ToLower(base) == repoDir {
		return filepath.ToSlash(filepath.Join(base, acc))
	}

	return ShortenRepoFilePath(filepath.Clean(dir), filepath.Join(base, acc), depth+1)
}
