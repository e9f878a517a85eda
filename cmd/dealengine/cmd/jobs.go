package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	domain "github.com/dealscout/deal-engine/pkg/types"
)

func jobsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "Show the latest background job runs",
		RunE:  runJobs,
	}
}

func init() {
	rootCmd.AddCommand(jobsCommand())
}

func runJobs(cmd *cobra.Command, _ []string) error {
	apiURL := viper.GetString("server") + "/api/v1/jobs"

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling jobs API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jobs lookup failed: %s: %s", resp.Status, string(body))
	}

	if jsonOutput() {
		fmt.Println(string(body))
		return nil
	}

	var payload struct {
		Jobs []domain.JobRun `json:"jobs"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if len(payload.Jobs) == 0 {
		fmt.Println("No job runs recorded.")
		return nil
	}

	for _, j := range payload.Jobs {
		rows := "-"
		if j.RowsAffected != nil {
			rows = fmt.Sprintf("%d", *j.RowsAffected)
		}
		fmt.Printf("%-16s %-10s started %s  rows=%s\n",
			j.JobName, j.Status, j.StartedAt.Format("2006-01-02 15:04:05"), rows)
		if j.ErrorText != "" {
			fmt.Printf("  error: %s\n", j.ErrorText)
		}
	}
	return nil
}
