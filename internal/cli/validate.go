package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/sdejongh/ftpdeploy/pkg/config"
)

// validateDeploy checks the merged configuration and the local source tree
func validateDeploy(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	localRoot := cfg.LocalRoot()
	info, err := os.Stat(localRoot)
	if os.IsNotExist(err) {
		return fmt.Errorf("source path does not exist: %s", localRoot)
	} else if err != nil {
		return fmt.Errorf("failed to access source path: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("source path is not a directory: %s", localRoot)
	}

	// Exclude patterns are matched against slash paths
	for _, p := range cfg.Exclude {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("empty exclude pattern")
		}
	}

	return nil
}
