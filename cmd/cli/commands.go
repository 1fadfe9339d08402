package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	playerID   string
	gameID     string
	actionable bool
)

func init() {
	pendingCmd.Flags().StringVar(&playerID, "player", "", "The player to list pending approvals for")
	pendingCmd.Flags().BoolVar(&actionable, "actionable", true, "Only show results the player has not voted on yet")
	pendingCmd.MarkFlagRequired("player")
	statusCmd.Flags().StringVar(&gameID, "game", "", "The game to show the result status for")
	statusCmd.MarkFlagRequired("game")
	voteCmd.Flags().StringVar(&gameID, "game", "", "The game to vote on")
	voteCmd.Flags().StringVar(&playerID, "player", "", "The voting player")
	voteCmd.MarkFlagRequired("game")
	voteCmd.MarkFlagRequired("player")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(voteCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "List the players in the league store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/members")
	},
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List the games in the league store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/games")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the player totals leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard")
	},
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List results waiting on a player's approval",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{"playerID": {playerID}}
		if actionable {
			query.Set("actionable", "true")
		}
		return performGetRequest("/pending-approvals?" + query.Encode())
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the approval status of a game's result",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{"gameID": {gameID}}
		return performGetRequest("/result-status?" + query.Encode())
	},
}

var voteCmd = &cobra.Command{
	Use:   "vote [APPROVED|DISPUTED]",
	Short: "Cast an approval vote on a game's result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := fmt.Sprintf(`{"game_id":%q,"player_id":%q,"vote":%q}`, gameID, playerID, args[0])
		return performPostRequest("/cast-vote", []byte(body))
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the operational counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/stats")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string, body []byte) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
