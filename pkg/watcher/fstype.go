package watcher

// FilesystemType is a coarse classification of where the watched file
// lives. Change notifications are unreliable on network and FUSE mounts,
// so those are polled.
type FilesystemType int

const (
	FSTypeUnknown FilesystemType = iota
	FSTypeLocal
	FSTypeNFS
	FSTypeSMB
	FSTypeFUSE
)

func (t FilesystemType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeNFS:
		return "nfs"
	case FSTypeSMB:
		return "smb"
	case FSTypeFUSE:
		return "fuse"
	default:
		return "unknown"
	}
}

// Remote reports whether files on t should be polled.
func (t FilesystemType) Remote() bool {
	return t == FSTypeNFS || t == FSTypeSMB || t == FSTypeFUSE
}

// detectFilesystemTypeFunc is swapped out by tests.
var detectFilesystemTypeFunc = DetectFilesystemType
