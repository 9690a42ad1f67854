package session

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hakanisaksson/githook-seclog/internal/audit"
)

// Load captures the session context once at startup from the hook's
// environment. Missing keys stay empty; the formatter substitutes the
// configured placeholder later. An optional dotenv file lets operators
// inject or override fields (useful behind wrappers that scrub the
// environment); a missing or unreadable file is ignored.
func Load(envFile string) audit.SessionContext {
	if envFile != "" {
		_ = godotenv.Overload(envFile)
	}

	host, _ := os.Hostname()
	return audit.SessionContext{
		Time:     time.Now(),
		User:     lookupUser(),
		ClientIP: lookupClientIP(),
		RepoPath: RepoPath(),
		Host:     host,
	}
}

// RepoPath resolves the repository the hook is running for: GIT_DIR if
// set (git sets it for server-side hooks), the working directory
// otherwise, always as an absolute path.
func RepoPath() string {
	dir := os.Getenv("GIT_DIR")
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}

func lookupUser() string {
	for _, key := range []string{"GITHOOK_USER", "USER", "LOGNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// lookupClientIP extracts the originating address from the sshd
// connection variables, first token of `<ip> <port> <ip> <port>`.
func lookupClientIP() string {
	for _, key := range []string{"SSH_CLIENT", "SSH_CONNECTION"} {
		if v := os.Getenv(key); v != "" {
			if fields := strings.Fields(v); len(fields) > 0 {
				return fields[0]
			}
		}
	}
	return ""
}
