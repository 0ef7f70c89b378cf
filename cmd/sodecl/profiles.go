package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/sodecl/internal/store"
)

var (
	profileDataDir string
	keepLast       int
	olderThanDays  int
	forceClean     bool
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage stored setup profiles",
	Long: `Manage the profiles written by "setup --save": list them, show one, or
clean old ones. A profile can be reused with "setup --profile <id>".`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored profiles",
	RunE:  runListProfiles,
}

var showProfileCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a profile and its setup trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowProfile,
}

var cleanProfilesCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old profiles",
	Long: `Delete profiles based on retention policy.
Keep only the newest N profiles, delete profiles older than N days, or both.`,
	RunE: runCleanProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(listProfilesCmd)
	profilesCmd.AddCommand(showProfileCmd)
	profilesCmd.AddCommand(cleanProfilesCmd)

	profilesCmd.PersistentFlags().StringVar(&profileDataDir, "data-dir", "./data", "Base directory for profile storage")

	cleanProfilesCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the newest N profiles (0 = keep all)")
	cleanProfilesCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete profiles older than N days (0 = no age limit)")
	cleanProfilesCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func runListProfiles(cmd *cobra.Command, args []string) error {
	profileStore, err := openProfileStore(cmd)
	if err != nil {
		return err
	}

	infos, err := profileStore.List()
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No profiles found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIMESTAMP\tPLATFORM\tDEVICE\tTYPE\tSOLVER\tKERNELS\tSIZE")
	fmt.Fprintln(w, "--\t---------\t--------\t------\t----\t------\t-------\t----")
	for _, info := range infos {
		sizeStr := "unknown"
		if size, err := getDirSize(filepath.Join(profileStore.BaseDir(), "profiles", info.ID)); err == nil {
			sizeStr = formatBytes(size)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			shortID(info.ID),
			info.Timestamp.Format("2006-01-02 15:04:05"),
			info.Platform,
			info.Device,
			info.DeviceType,
			info.Solver,
			info.Kernels,
			sizeStr,
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal profiles: %d\n", len(infos))
	return nil
}

func runShowProfile(cmd *cobra.Command, args []string) error {
	profileStore, err := openProfileStore(cmd)
	if err != nil {
		return err
	}
	p, err := profileStore.Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return err
	}

	trace, err := profileStore.Trace(p.ID)
	if err != nil {
		// Profiles copied in by hand may have no trace.
		slog.Debug("No trace for profile", "id", p.ID, "error", err)
		return nil
	}
	fmt.Fprintln(out, "\nSetup trace:")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range trace {
		status := "ok"
		if e.Error != "" {
			status = e.Error
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", e.Step, e.State, e.Duration.Round(time.Microsecond), status)
	}
	w.Flush()
	return nil
}

func runCleanProfiles(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	profileStore, err := openProfileStore(cmd)
	if err != nil {
		return err
	}

	infos, err := profileStore.List()
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No profiles to clean.")
		return nil
	}

	toDelete := selectProfilesForDeletion(infos, keepLast, olderThanDays, time.Now())
	if len(toDelete) == 0 {
		fmt.Fprintln(out, "No profiles match deletion criteria.")
		return nil
	}

	fmt.Fprintf(out, "Found %d profile(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Fprintf(out, "  - %s (%s, %s)\n",
			shortID(info.ID),
			info.Device,
			info.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	if !forceClean {
		fmt.Fprint(out, "\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Fscanln(cmd.InOrStdin(), &response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	deleted, failed := 0, 0
	for _, info := range toDelete {
		if err := profileStore.Delete(info.ID); err != nil {
			slog.Error("Failed to delete profile", "id", info.ID, "error", err)
			failed++
		} else {
			slog.Info("Deleted profile", "id", info.ID)
			deleted++
		}
	}

	fmt.Fprintf(out, "\nDeleted %d profile(s), %d failed.\n", deleted, failed)
	return nil
}

// selectProfilesForDeletion applies the retention policy. A profile is
// selected if it is older than olderThanDays or falls outside the newest
// keepLast; each profile appears at most once, oldest first.
func selectProfilesForDeletion(infos []store.ProfileInfo, keepLast, olderThanDays int, now time.Time) []store.ProfileInfo {
	sorted := append([]store.ProfileInfo(nil), infos...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var cutoff time.Time
	if olderThanDays > 0 {
		cutoff = now.AddDate(0, 0, -olderThanDays)
	}
	excess := 0
	if keepLast > 0 && len(sorted) > keepLast {
		excess = len(sorted) - keepLast
	}

	var toDelete []store.ProfileInfo
	for i, info := range sorted {
		if i < excess || (olderThanDays > 0 && info.Timestamp.Before(cutoff)) {
			toDelete = append(toDelete, info)
		}
	}
	return toDelete
}

// openProfileStore uses --data-dir, falling back to data_dir from --config
// when the flag was not set.
func openProfileStore(cmd *cobra.Command) (*store.FSStore, error) {
	dir := profileDataDir
	if configPath != "" && !cmd.Flags().Changed("data-dir") {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		dir = cfg.DataDir
	}
	s, err := store.NewFSStore(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile store: %w", err)
	}
	return s, nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
