package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/spf13/cobra"

	"github.com/hakanisaksson/githook-seclog/internal/common"
	"github.com/hakanisaksson/githook-seclog/internal/ui"
)

var installForce bool

var installCmd = &cobra.Command{
	Use:   "install <repository>",
	Short: "Link the binary as a repository's post-receive hook",
	Args:  cobra.ExactArgs(1),
	RunE:  runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	repoPath, err := common.CleanPath(args[0])
	if err != nil {
		return err
	}

	hooksDir, err := resolveHooksDir(repoPath)
	if err != nil {
		return err
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate own binary: %w", err)
	}

	target := filepath.Join(hooksDir, "post-receive")
	if _, err := os.Lstat(target); err == nil {
		if !installForce {
			return fmt.Errorf("%s already exists, use --force to replace it", target)
		}
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("failed to remove existing hook: %w", err)
		}
	}

	if err := os.Symlink(self, target); err != nil {
		return fmt.Errorf("failed to link hook: %w", err)
	}

	ui.ShowSuccess(fmt.Sprintf("Installed post-receive hook in %s", hooksDir))
	return nil
}

// resolveHooksDir finds the hooks directory of a bare or non-bare
// repository, verifying the path really is a repository first.
func resolveHooksDir(repoPath string) (string, error) {
	if _, err := git.PlainOpen(repoPath); err != nil {
		return "", fmt.Errorf("%s is not a git repository: %w", repoPath, err)
	}

	gitDir := filepath.Join(repoPath, ".git")
	if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
		return filepath.Join(gitDir, "hooks"), nil
	}
	return filepath.Join(repoPath, "hooks"), nil
}

func init() {
	installCmd.Flags().BoolVarP(&installForce, "force", "f", false, "replace an existing post-receive hook")
	rootCmd.AddCommand(installCmd)
}
