// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aumos-ai/keri-agent/identity"
)

func newResolveCmd() *cobra.Command {
	var (
		baseURL string
		name    string
		aid     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Fetch and replay another agent's key event log",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			res := identity.NewResolver(identity.ResolverOptions{})
			state, err := res.Resolve(ctx, baseURL, name, aid)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "http://127.0.0.1:9999", "base URL of the remote agent")
	cmd.Flags().StringVar(&name, "name", "", "identifier name on the remote agent")
	cmd.Flags().StringVar(&aid, "aid", "", "expected AID prefix (optional)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
