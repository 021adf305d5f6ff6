package cli

import (
	"fmt"

	"github.com/sdejongh/ftpdeploy/internal/platform"
	"github.com/sdejongh/ftpdeploy/pkg/hashstore"
	"github.com/sdejongh/ftpdeploy/pkg/scan"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewCacheCommand creates the cache command
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or invalidate the hash cache",
		Long: `The hash cache records the hash of every directory uploaded by the last
successful deploy. Invalidate entries to force directories to be uploaded
again, for example after an interrupted transfer.`,
	}

	cmd.AddCommand(newCacheShowCommand())
	cmd.AddCommand(newCacheInvalidateCommand())
	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List cached directory hashes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCache()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if store.Len() == 0 {
				fmt.Fprintf(w, "Cache %s is empty\n", store.Path())
				return nil
			}
			for _, key := range store.Keys() {
				hash, _ := store.Get(key)
				fmt.Fprintf(w, "%s  %s\n", hash, key)
			}
			return nil
		},
	}
}

func newCacheInvalidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <dir>...",
		Short: "Forget the hashes of directories so they are uploaded again",
		Long: `Directories are given relative to the source root with forward slashes.
Use "/" for the source root itself.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCache()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			removed := 0
			for _, arg := range args {
				key := cacheKey(arg)
				if store.Delete(key) {
					removed++
					fmt.Fprintf(w, "Invalidated %s\n", key)
				} else {
					fmt.Fprintf(w, "Not cached: %s\n", key)
				}
			}

			if removed == 0 {
				return nil
			}
			return store.Close()
		},
	}
}

func newCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the hash cache so the next deploy uploads everything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := hashstore.Remove(afero.NewOsFs(), cfg.CachePath()); err != nil {
				return fmt.Errorf("failed to remove hash cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", cfg.CachePath())
			return nil
		},
	}
}

// openCache loads the hash cache of the current project. A corrupt cache
// is an error here; the caller can clear it.
func openCache() (*hashstore.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return hashstore.Load(afero.NewOsFs(), cfg.CachePath())
}

// cacheKey turns user input into a directory key
func cacheKey(arg string) string {
	key := platform.CleanRemote(arg)
	if key == "/" {
		return scan.RootKey
	}
	return key[1:]
}
