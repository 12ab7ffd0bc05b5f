package utils

// IsValidProfileName checks if a profile name is safe to use as a file name
// inside the configuration directory.
func IsValidProfileName(name string) bool {
	if name == "" || len(name) > 128 {
		return false
	}
	// Leading dots would hide the file or collide with the .CURRENT pointer.
	if name[0] == '.' {
		return false
	}
	for _, r := range name {
		// Allow alphanumeric, hyphen, underscore, and dot
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.') {
			return false
		}
	}
	return true
}
