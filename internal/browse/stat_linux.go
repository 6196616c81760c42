package browse

import (
	"os"
	"syscall"
	"time"
)

// statTimes extracts creation and access times. Linux exposes no true birth
// time through Stat_t, so the inode change time stands in.
func statTimes(fi os.FileInfo) (created, accessed time.Time, ok bool) {
	st, isStat := fi.Sys().(*syscall.Stat_t)
	if !isStat {
		return time.Time{}, time.Time{}, false
	}
	created = time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	accessed = time.Unix(st.Atim.Sec, st.Atim.Nsec)
	return created, accessed, true
}
