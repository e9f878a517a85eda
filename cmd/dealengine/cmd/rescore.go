package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func rescoreCommand() *cobra.Command {
	var (
		rescoreCategory string
		rescoreLimit    int
	)

	cmd := &cobra.Command{
		Use:   "rescore",
		Short: "Re-score stored listings",
		Long:  "Asks the API server to recompute scores for stored listings using current category configuration.",
		Example: `  dealengine rescore
  dealengine rescore --category watch --limit 200`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRescore(cmd, rescoreCategory, rescoreLimit)
		},
	}
	cmd.Flags().StringVar(&rescoreCategory, "category", "", "restrict to one category")
	cmd.Flags().IntVar(&rescoreLimit, "limit", 0, "maximum listings to rescore (0 = server default)")

	return cmd
}

func init() {
	rootCmd.AddCommand(rescoreCommand())
}

type rescoreResponse struct {
	JobID   string `json:"job_id"`
	Scored  int    `json:"scored"`
	Failed  int    `json:"failed"`
	Skipped int    `json:"skipped"`
}

func runRescore(cmd *cobra.Command, category string, limit int) error {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	apiURL := viper.GetString("server") + "/api/v1/rescore"
	if encoded := q.Encode(); encoded != "" {
		apiURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, apiURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling rescore API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rescore failed: %s: %s", resp.Status, string(body))
	}

	if jsonOutput() {
		fmt.Println(string(body))
		return nil
	}

	var result rescoreResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	fmt.Printf("Job %s: %d scored, %d failed, %d skipped\n",
		result.JobID, result.Scored, result.Failed, result.Skipped)
	return nil
}
