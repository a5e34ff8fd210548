package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag    string
	userFlag   string
	friendFlag string
	rootCmd    = &cobra.Command{
		Use:   "keepsakectl",
		Short: "CLI client for the friendship-memory engine REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Engine base URL")

	snapCmd := &cobra.Command{
		Use:   "snap",
		Short: "Ingest a snap event",
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, _ := cmd.Flags().GetString("sender")
			recipient, _ := cmd.Flags().GetString("recipient")
			caption, _ := cmd.Flags().GetString("caption")
			mood, _ := cmd.Flags().GetString("mood")
			location, _ := cmd.Flags().GetString("location")
			if sender == "" || recipient == "" {
				return fmt.Errorf("--sender and --recipient required")
			}
			return runSnap(apiFlag, sender, recipient, caption, mood, location, os.Stdout)
		},
	}
	snapCmd.Flags().StringP("sender", "s", "", "Sender user ID (required)")
	snapCmd.Flags().StringP("recipient", "r", "", "Recipient user ID (required)")
	snapCmd.Flags().StringP("caption", "c", "", "Caption text")
	snapCmd.Flags().StringP("mood", "m", "", "Mood tag")
	snapCmd.Flags().StringP("location", "l", "", "Location label")
	rootCmd.AddCommand(snapCmd)

	timelineCmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show the timeline for a friendship",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" || friendFlag == "" {
				return fmt.Errorf("--user and --friend required")
			}
			return runTimeline(apiFlag, userFlag, friendFlag, os.Stdout)
		},
	}
	timelineCmd.Flags().StringVarP(&userFlag, "user", "u", "", "User ID (required)")
	timelineCmd.Flags().StringVarP(&friendFlag, "friend", "f", "", "Friend ID (required)")
	rootCmd.AddCommand(timelineCmd)

	friendshipsCmd := &cobra.Command{
		Use:   "friendships",
		Short: "List a user's friendships by activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			if user == "" {
				return fmt.Errorf("--user required")
			}
			return runFriendships(apiFlag, user, os.Stdout)
		},
	}
	friendshipsCmd.Flags().StringP("user", "u", "", "User ID (required)")
	rootCmd.AddCommand(friendshipsCmd)

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search shared moments by free text",
		RunE: func(cmd *cobra.Command, args []string) error {
			query, _ := cmd.Flags().GetString("query")
			user, _ := cmd.Flags().GetString("user")
			friend, _ := cmd.Flags().GetString("friend")
			if user == "" {
				return fmt.Errorf("--user required")
			}
			return runSearch(apiFlag, user, friend, query, os.Stdout)
		},
	}
	searchCmd.Flags().StringP("user", "u", "", "User ID (required)")
	searchCmd.Flags().StringP("friend", "f", "", "Friend ID (optional scope)")
	searchCmd.Flags().StringP("query", "q", "", "Search query text (required)")
	_ = searchCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(searchCmd)

	patternsCmd := &cobra.Command{
		Use:   "patterns",
		Short: "Show trending activity patterns for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			if user == "" {
				return fmt.Errorf("--user required")
			}
			return runPatterns(apiFlag, user, os.Stdout)
		},
	}
	patternsCmd.Flags().StringP("user", "u", "", "User ID (required)")
	rootCmd.AddCommand(patternsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
