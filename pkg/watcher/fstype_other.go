//go:build !linux

package watcher

// DetectFilesystemType returns FSTypeUnknown outside Linux; such paths
// are watched with fsnotify.
func DetectFilesystemType(path string) FilesystemType {
	return FSTypeUnknown
}
