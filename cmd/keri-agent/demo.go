// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aumos-ai/keri-agent/event"
	"github.com/aumos-ai/keri-agent/identity"
	"github.com/aumos-ai/keri-agent/keys"
)

func newDemoCmd(g *globals) *cobra.Command {
	var (
		name      string
		rotations int
		seed      string
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Incept, sign, rotate and audit an identifier in memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			opts := identity.Options{DigestCode: cfg.Digest(), Logger: log}
			if seed != "" {
				opts.Generator = keys.NewSeedGenerator([]byte(seed))
			}
			reg, err := identity.NewRegistry(opts)
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close() }()
			return runDemo(cmd.Context(), cmd.OutOrStdout(), reg, name, rotations)
		},
	}
	cmd.Flags().StringVar(&name, "name", "demo-agent", "identifier name")
	cmd.Flags().IntVar(&rotations, "rotations", 2, "number of rotations to perform")
	cmd.Flags().StringVar(&seed, "seed", "", "derive keys deterministically from this seed")
	return cmd
}

// runDemo walks one identifier through its lifecycle and checks that an old
// key stops verifying once it has been rotated out.
func runDemo(ctx context.Context, w io.Writer, reg *identity.Registry, name string, rotations int) error {
	inc, err := reg.Incept(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "incepted %s\n  aid: %s\n  key: %s\n", name, inc.AID, inc.PublicKey)

	msg := []byte("keri-agent demo payload")
	first, err := reg.Sign(ctx, name, msg)
	if err != nil {
		return err
	}
	if err := expectVerify(msg, first, true); err != nil {
		return err
	}
	fmt.Fprintln(w, "signature with inception key verified")

	last := first
	for i := 0; i < rotations; i++ {
		rot, err := reg.Rotate(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "rotated %s (%d)\n  key: %s\n", name, i+1, rot.NewPublicKey)
		if last, err = reg.Sign(ctx, name, msg); err != nil {
			return err
		}
	}
	if rotations > 0 {
		stale := &identity.SignResult{Signature: last.Signature, PublicKey: first.PublicKey}
		if err := expectVerify(msg, stale, false); err != nil {
			return err
		}
		fmt.Fprintln(w, "rotated-out key no longer verifies new signatures")
	}

	kel, err := reg.ExportKEL(ctx, name)
	if err != nil {
		return err
	}
	entries, err := event.UnmarshalLog(kel)
	if err != nil {
		return err
	}
	state, err := event.ValidateLog(entries)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "key event log: %d events, sequence %d, last said %s\n", state.EventCount, state.Sequence, state.LastSAID)
	fmt.Fprintln(w, kel)
	return nil
}

func expectVerify(msg []byte, sig *identity.SignResult, want bool) error {
	ok, err := keys.VerifyEncoded(msg, sig.Signature, sig.PublicKey)
	if err != nil {
		return err
	}
	if ok != want {
		return fmt.Errorf("verify: got %t, want %t", ok, want)
	}
	return nil
}

func newVerifyCmd() *cobra.Command {
	var data, signature, publicKey string
	var raw bool
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a detached Ed25519 signature",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := []byte(data)
			if !raw {
				decoded, err := base64.StdEncoding.DecodeString(data)
				if err != nil {
					return fmt.Errorf("--data is not standard base64 (use --raw for plain text): %w", err)
				}
				payload = decoded
			}
			ok, err := keys.VerifyEncoded(payload, signature, publicKey)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid: %t\n", ok)
			if !ok {
				return fmt.Errorf("signature does not verify")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "signed payload, standard base64")
	cmd.Flags().BoolVar(&raw, "raw", false, "treat --data as plain text")
	cmd.Flags().StringVar(&signature, "signature", "", "signature, standard base64 or qb64")
	cmd.Flags().StringVar(&publicKey, "public-key", "", "public key, standard base64 or qb64")
	_ = cmd.MarkFlagRequired("signature")
	_ = cmd.MarkFlagRequired("public-key")
	return cmd
}
