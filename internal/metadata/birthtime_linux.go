package metadata

import (
	"os"
	"syscall"
	"time"
)

// birthTime approximates creation time with the inode change time; Linux
// stat does not expose a birth time.
func birthTime(info os.FileInfo) time.Time {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
}
