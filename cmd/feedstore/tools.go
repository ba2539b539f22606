package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/britishfeed/feedstore/config"
	"github.com/britishfeed/feedstore/internal/recommend"
	"github.com/britishfeed/feedstore/internal/webserver"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

func newRecommendCmd() *cobra.Command {
	var (
		animalType string
		activity   string
		concerns   []string
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print feed recommendations for a horse profile as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := recommend.ParseProfile(animalType, activity, concerns)
			enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"profile":         profile,
				"recommendations": recommend.Recommend(profile),
				"matched":         recommend.MatchedRules(profile),
			})
		},
	}
	cmd.Flags().StringVarP(&animalType, "type", "t", "", "horse type, e.g. senior or competition")
	cmd.Flags().StringVarP(&activity, "activity", "a", "", "light, moderate or heavy")
	cmd.Flags().StringSliceVar(&concerns, "concern", nil, "health concern, repeatable")
	return cmd
}

func newPromptCmd(loadConfig func() *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Print the assistant system prompt built from the stored settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openApplication(loadConfig())
			if err != nil {
				return err
			}
			defer application.Release()
			_, err = fmt.Fprintln(cmd.OutOrStdout(), application.Advisor().SystemPrompt(commandContext(cmd)))
			return err
		},
	}
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for admin.password_hash",
		Long:  "Hashes the argument, or the first line of stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 1024))
				if err != nil {
					return err
				}
				password = strings.TrimRight(strings.SplitN(string(data), "\n", 2)[0], "\r")
			}
			if password == "" {
				return fmt.Errorf("password is empty")
			}
			hash, err := webserver.HashPassword(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
