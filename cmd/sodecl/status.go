package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/sodecl/internal/compute"
	"github.com/cwbudde/sodecl/internal/store"
)

var serverURL string

var statusCmd = &cobra.Command{
	Use:   "status [profile-id]",
	Short: "Query a running server",
	Long: `Queries a "sodecl serve" instance.
Without arguments prints the served topology and profile list.
With a profile-id prints that profile.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		var p store.Profile
		if err := getJSON(fmt.Sprintf("%s/api/v1/profiles/%s", serverURL, args[0]), &p); err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	var body struct {
		Platforms []compute.PlatformInfo `json:"platforms"`
	}
	if err := getJSON(serverURL+"/api/v1/platforms", &body); err != nil {
		return err
	}
	printTopology(out, body.Platforms)

	var infos []store.ProfileInfo
	if err := getJSON(serverURL+"/api/v1/profiles", &infos); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nProfiles: %d\n", len(infos))
	for _, info := range infos {
		fmt.Fprintf(out, "  %s  %s / %s  (%s)\n", shortID(info.ID), info.Platform, info.Device, info.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func getJSON(url string, v any) error {
	resp, err := httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return fmt.Errorf("not found: %s", e.Error)
		}
		return fmt.Errorf("not found: %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
