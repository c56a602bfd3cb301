//go:build !linux

package metadata

import (
	"os"
	"time"
)

func birthTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
