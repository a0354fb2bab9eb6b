//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package filesystem

import (
	"io/fs"
	"time"
)

func accessTime(_ string, info fs.FileInfo) time.Time {
	return info.ModTime()
}
