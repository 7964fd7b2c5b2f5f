package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	teamsCmd.AddCommand(teamsListCmd, teamsAddCmd, teamsDeleteCmd, teamsReorderCmd)
	matchCmd.AddCommand(matchAddCmd, matchRemoveCmd, matchWinnerCmd, matchPredictCmd)
	periodCmd.AddCommand(periodNextCmd, periodPrevCmd, periodSetCmd, periodFinalizeCmd)

	matchPredictCmd.Flags().String("winner", "", "Team id to predict a win for (defaults to the selected winner)")
	periodFinalizeCmd.Flags().String("date", "", "Completion date, YYYY-MM-DD")
	historyCmd.Flags().String("team", "", "Only show matches involving this team id")

	rootCmd.AddCommand(healthCmd, metricsCmd, stateCmd, teamsCmd, gamesPlayedCmd, scheduleCmd,
		matchCmd, periodCmd, leaderboardCmd, historyCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the period currently being viewed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/state", nil)
	},
}

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "Manage registered teams",
}

var teamsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List teams in registration order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/teams", nil)
	},
}

var teamsAddCmd = &cobra.Command{
	Use:   "add NAME POINTS",
	Short: "Register a team with its initial rating",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid points %q: %w", args[1], err)
		}
		return performRequest(http.MethodPost, "/teams", map[string]any{"name": args[0], "points": points})
	},
}

var teamsDeleteCmd = &cobra.Command{
	Use:   "delete TEAM_ID",
	Short: "Delete a team and every matchup it appears in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/teams/"+url.PathEscape(args[0]), nil)
	},
}

var teamsReorderCmd = &cobra.Command{
	Use:   "reorder TEAM_ID...",
	Short: "Rebuild the viewed period's matchups by pairing teams in the given order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/teams/reorder", map[string]any{"team_ids": args})
	},
}

var gamesPlayedCmd = &cobra.Command{
	Use:   "games-played N",
	Short: "Set the global games played counter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid games played %q: %w", args[0], err)
		}
		return performRequest(http.MethodPut, "/games-played", map[string]any{"games_played": n})
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Pair every waiting team in the viewed period",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/schedule/auto", nil)
	},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Manage matchups in the viewed period",
}

var matchAddCmd = &cobra.Command{
	Use:   "add TEAM1_ID TEAM2_ID",
	Short: "Pair two teams manually",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/matches", map[string]any{"team1_id": args[0], "team2_id": args[1]})
	},
}

var matchRemoveCmd = &cobra.Command{
	Use:   "remove MATCH_ID",
	Short: "Remove a matchup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/matches/"+url.PathEscape(args[0]), nil)
	},
}

var matchWinnerCmd = &cobra.Command{
	Use:   "winner MATCH_ID TEAM_ID",
	Short: "Select the winner of a matchup",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/matches/"+url.PathEscape(args[0])+"/winner", map[string]any{"team_id": args[1]})
	},
}

var matchPredictCmd = &cobra.Command{
	Use:   "predict MATCH_ID",
	Short: "Show the rating change a result would cause",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/matches/" + url.PathEscape(args[0]) + "/prediction"
		if winner, _ := cmd.Flags().GetString("winner"); winner != "" {
			endpoint += "?winner=" + url.QueryEscape(winner)
		}
		return performRequest(http.MethodGet, endpoint, nil)
	},
}

var periodCmd = &cobra.Command{
	Use:   "period",
	Short: "Navigate and finalize periods",
}

var periodNextCmd = &cobra.Command{
	Use:   "next",
	Short: "View the next period",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/periods/navigate", map[string]any{"direction": 1})
	},
}

var periodPrevCmd = &cobra.Command{
	Use:   "prev",
	Short: "View the previous period",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/periods/navigate", map[string]any{"direction": -1})
	},
}

var periodSetCmd = &cobra.Command{
	Use:   "set N",
	Short: "Jump to period N",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid period %q: %w", args[0], err)
		}
		return performRequest(http.MethodPut, "/periods/current", map[string]any{"index": n})
	},
}

var periodFinalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Apply the decided matchups and close the current period",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		return performRequest(http.MethodPost, "/periods/finalize", map[string]any{"date": date})
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the team leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/leaderboard", nil)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show applied matches, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/history"
		if team, _ := cmd.Flags().GetString("team"); team != "" {
			endpoint += "?team_id=" + url.QueryEscape(team)
		}
		return performRequest(http.MethodGet, endpoint, nil)
	},
}

func performRequest(method, endpoint string, body any) error {
	target, err := url.Parse(host + endpoint)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if dryRun {
		q := target.Query()
		q.Set("dry_run", "true")
		target.RawQuery = q.Encode()
	}
	fmt.Printf("Making %s request to %s\n", method, target)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
