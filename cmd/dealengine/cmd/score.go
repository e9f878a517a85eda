package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	domain "github.com/dealscout/deal-engine/pkg/types"
)

func scoreCommand() *cobra.Command {
	var listingFile string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a listing from a JSON file",
		Long:  "Sends a listing to the API server for scoring. Reads the listing JSON from --file, or stdin when --file is \"-\".",
		Example: `  dealengine score --file listing.json
  cat listing.json | dealengine score --file -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, listingFile)
		},
	}
	cmd.Flags().StringVar(&listingFile, "file", "-", "listing JSON file (\"-\" for stdin)")

	return cmd
}

func init() {
	rootCmd.AddCommand(scoreCommand())
}

func runScore(cmd *cobra.Command, file string) error {
	var payload []byte
	var err error

	if file == "-" {
		payload, err = io.ReadAll(os.Stdin)
	} else {
		payload, err = os.ReadFile(file) //nolint:gosec // path from trusted CLI flag
	}
	if err != nil {
		return fmt.Errorf("reading listing: %w", err)
	}

	apiURL := viper.GetString("server") + "/api/v1/score"

	req, err := http.NewRequestWithContext(
		cmd.Context(),
		http.MethodPost,
		apiURL,
		bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling score API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("score failed: %s: %s", resp.Status, string(body))
	}

	if jsonOutput() {
		fmt.Println(string(body))
		return nil
	}

	var result domain.ScoreResult
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	fmt.Printf("Score: %d/100 (%s)\n", result.Score, result.Grade)
	if result.Profit != nil {
		fmt.Printf("Recommendation: %s (confidence %s)\n",
			result.Profit.Recommendation, result.Profit.Confidence)
		if result.Profit.NetProfit != nil {
			fmt.Printf("Est. net profit: $%.2f (%.1f%%)\n",
				*result.Profit.NetProfit, *result.Profit.ProfitPercent)
		}
	}
	return nil
}
