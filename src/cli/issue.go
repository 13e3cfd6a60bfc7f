// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"errors"
	"fmt"

	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/hierarchy"
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/authority"
	x509keys "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/keys"
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/logger"
	"github.com/spf13/cobra"
)

func newKeygenCmd(opts *options, log logger.Logger) *cobra.Command {
	var (
		bits     int
		exponent int
	)

	cmd := &cobra.Command{
		Use:   "keygen NAME",
		Short: "Generate an RSA key pair and store it as NAME.key",
		Args:  cobra.ExactArgs(1),
		RunE: runE(opts, log, func(e *env, args []string) error {
			if bits == 0 {
				bits = e.cfg.Leaf.KeyBits
			}
			if exponent == 0 {
				exponent = e.cfg.Leaf.Exponent
			}

			if err := hierarchy.CheckName(args[0]); err != nil {
				return err
			}

			kp, err := x509keys.Generate(bits, exponent)
			if err != nil {
				return err
			}
			if err := e.store.SaveKey(args[0], kp, e.cfg.KeyPassword()); err != nil {
				return err
			}
			e.log.Printf("Generated %d-bit RSA key (e=%d): %s", kp.Bits(), kp.Public.E, e.store.KeyPath(args[0]))
			return nil
		}),
	}

	cmd.Flags().IntVarP(&bits, "bits", "b", 0, "modulus size (default: profile leaf keyBits)")
	cmd.Flags().IntVarP(&exponent, "exponent", "e", 0, "public exponent (default: profile leaf exponent)")
	return cmd
}

func newInitCmd(opts *options, log logger.Logger) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the root and intermediate authorities",
		Args:  cobra.NoArgs,
		RunE: runE(opts, log, func(e *env, _ []string) error {
			_, err := e.svc.Init(e.ctx, force)
			if errors.Is(err, hierarchy.ErrExists) {
				return fmt.Errorf("%w, use --force to replace it", err)
			}
			return err
		}),
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing hierarchy")
	return cmd
}

func newIssueCmd(opts *options, log logger.Logger) *cobra.Command {
	var (
		name     string
		dnsNames []string
		ips      []string
	)

	cmd := &cobra.Command{
		Use:   "issue DOMAIN [DOMAIN...]",
		Short: "Issue server certificates and full-chain bundles signed by the intermediate",
		Args:  cobra.MinimumNArgs(1),
		RunE: runE(opts, log, func(e *env, domains []string) error {
			if name != "" && len(domains) > 1 {
				return errors.New("cli: --name needs exactly one domain")
			}

			reqs := make([]hierarchy.Request, 0, len(domains))
			for _, domain := range domains {
				reqs = append(reqs, hierarchy.Request{
					Domain:      domain,
					Name:        name,
					DNSNames:    dnsNames,
					IPAddresses: ips,
				})
			}

			_, err := e.svc.Issue(e.ctx, reqs...)
			if errors.Is(err, hierarchy.ErrMissing) {
				return fmt.Errorf("%w, run init first", err)
			}
			return err
		}),
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "store name for a single leaf (default: the domain)")
	cmd.Flags().StringSliceVar(&dnsNames, "dns", nil, "additional DNS subject alternative names")
	cmd.Flags().StringSliceVar(&ips, "ip", nil, fmt.Sprintf("IP subject alternative names (default: %s)", authority.DefaultLeafIP))
	return cmd
}
