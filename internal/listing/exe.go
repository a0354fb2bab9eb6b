package listing

import "os"

// Identity is the user on whose behalf executability is judged.
// A negative UID or GID means the component is unavailable.
type Identity struct {
	UID int
	GID int
}

// CurrentIdentity returns the effective user and primary group of the
// process. On Windows both are -1.
func CurrentIdentity() Identity {
	return Identity{UID: os.Geteuid(), GID: os.Getgid()}
}

func (id Identity) ownsUser(uid uint32) bool {
	return id.UID < 0 || uint32(id.UID) == uid
}

func (id Identity) ownsGroup(gid uint32) bool {
	return id.GID < 0 || uint32(id.GID) == gid
}

// StatsHasExe reports whether id may execute the file described by md.
//
// Without a permission-bit model every file is executable. Otherwise the
// other execute bit suffices; the group and owner bits count when the
// identity matches. Unknown identity or ownership is treated as a match.
func StatsHasExe(md Metadata, id Identity) bool {
	if !md.HasPermissions {
		return true
	}

	if md.Perm&0o001 != 0 {
		return true
	}

	if md.Perm&0o010 != 0 && (!md.HasOwnership || id.ownsGroup(md.GID)) {
		return true
	}

	return md.Perm&0o100 != 0 && (!md.HasOwnership || id.ownsUser(md.UID))
}
