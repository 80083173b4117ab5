package container

import (
	"os"
	"path/filepath"
)

// SocketRendezvousDir resolves the directory used for per-stream UNIX
// socket endpoints under SEPARATE_STREAMS, consulting TMPDIR/TEMP/TMP
// in that order before falling back to /tmp (§6.4).
func SocketRendezvousDir() string {
	for _, key := range []string{"TMPDIR", "TEMP", "TMP"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "/tmp"
}

// CacheDir resolves the base directory for the on-disk media-info
// cache, consulting XDG_CACHE_HOME then HOME/.cache (§6.4).
func CacheDir() string {
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return filepath.Join(v, "gavl")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".cache", "gavl")
	}
	return filepath.Join(os.TempDir(), "gavl-cache")
}

// ConfigDir resolves the base directory for per-user config,
// consulting XDG_CONFIG_HOME then HOME/.config (§6.4).
func ConfigDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "gavl")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "gavl")
	}
	return filepath.Join(os.TempDir(), "gavl-config")
}
