//go:build unix

package listing

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

func statPath(path string) (Metadata, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return Metadata{}, &fs.PathError{Op: "stat", Path: path, Err: err}
	}

	mode := uint32(st.Mode)
	md := Metadata{
		Perm:           fs.FileMode(mode & 0o777),
		UID:            st.Uid,
		GID:            st.Gid,
		HasPermissions: true,
		HasOwnership:   true,
	}
	switch mode & unix.S_IFMT {
	case unix.S_IFDIR:
		md.Kind = KindDirectory
	case unix.S_IFREG:
		md.Kind = KindFile
	}
	return md, nil
}
