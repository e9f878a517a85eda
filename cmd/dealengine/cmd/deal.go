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

func dealCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deal <category>",
		Short: "Show the deal of the day for a category",
		Example: `  dealengine deal watch
  dealengine deal sneaker --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeal(cmd, args[0])
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(dealCommand())
}

func runDeal(cmd *cobra.Command, category string) error {
	apiURL := viper.GetString("server") +
		"/api/v1/categories/" + category + "/deal-of-the-day"

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling deal API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		fmt.Printf("No qualifying deal today for %s.\n", category)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deal lookup failed: %s: %s", resp.Status, string(body))
	}

	if jsonOutput() {
		fmt.Println(string(body))
		return nil
	}

	var deal domain.DealOfTheDay
	if err := json.Unmarshal(body, &deal); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	fmt.Printf("Deal of the Day (%s)\n\n", category)
	fmt.Printf("  %s %s — %s\n", deal.Listing.Brand, deal.Listing.Model, deal.Listing.Title)
	fmt.Printf("  Price:  $%.2f (%s)\n", deal.Listing.Price, deal.Listing.Source)
	fmt.Printf("  Score:  %d/100 (%s)\n", deal.Score, deal.Grade)
	if deal.Profit != nil && deal.Profit.NetProfit != nil {
		fmt.Printf("  Est. net profit: $%.2f\n", *deal.Profit.NetProfit)
	}
	fmt.Printf("  Why:    %s\n", deal.Reason)
	return nil
}
