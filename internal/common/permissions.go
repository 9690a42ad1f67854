package common

import "os"

// File and directory permissions used across the hook. The audit log
// and config may carry usernames and client addresses, so nothing is
// world-readable.
const (
	DirPermissionNormal  os.FileMode = 0750
	FilePermissionNormal os.FileMode = 0640
	FilePermissionConfig os.FileMode = 0600
)
