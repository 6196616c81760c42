package browse

import (
	"os"
	"syscall"
	"time"
)

func statTimes(fi os.FileInfo) (created, accessed time.Time, ok bool) {
	st, isStat := fi.Sys().(*syscall.Stat_t)
	if !isStat {
		return time.Time{}, time.Time{}, false
	}
	created = time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec)
	accessed = time.Unix(st.Atimespec.Sec, st.Atimespec.Nsec)
	return created, accessed, true
}
