package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/parley"
	pjson "github.com/fwojciec/parley/json"
	"github.com/spf13/cobra"
)

var (
	userPromptStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	assistantPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
)

func newHistoryCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the stored conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			msgs, err := a.client().FetchHistory(cmd.Context())
			if err != nil {
				return fmt.Errorf("history: %w", hint(err))
			}
			out := cmd.OutOrStdout()
			if asJSON {
				data, err := pjson.MarshalHistory(msgs)
				if err != nil {
					return fmt.Errorf("history: %w", err)
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}
			if len(msgs) == 0 {
				fmt.Fprintln(out, "No messages yet.")
				return nil
			}
			for _, m := range msgs {
				prompt := assistantPromptStyle.Render("assistant> ")
				if m.Role == parley.RoleUser {
					prompt = userPromptStyle.Render("you> ")
				}
				fmt.Fprintf(out, "%s%s\n", prompt, m.Content)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the conversation as JSON")
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client().ClearHistory(cmd.Context(), a.userID()); err != nil {
				return fmt.Errorf("clear: %w", hint(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}
}
