// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/hierarchy"
	x509certs "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/logger"
	"github.com/spf13/cobra"
)

// checkOptions are the flags shared by validate and inspect.
type checkOptions struct {
	anchorFile string
	at         string
}

func (o *checkOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.anchorFile, "anchor", "a", "", "trust anchor file (default: trailing root of the bundle, then the stored root)")
	cmd.Flags().StringVar(&o.at, "at", "", "reference time, RFC 3339 or YYYY-MM-DD (default: now)")
}

func newValidateCmd(opts *options, log logger.Logger) *cobra.Command {
	check := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a leaf-first certificate chain against a trust anchor",
		Args:  cobra.ExactArgs(1),
		RunE: runE(opts, log, func(e *env, args []string) error {
			below, anchor, at, err := check.load(e, args[0])
			if err != nil {
				return err
			}

			result, err := x509chain.Validate(below, anchor, at)
			if err != nil {
				return err
			}
			e.log.Printf("Chain valid: %d certificate(s) up to %q at %s",
				result.Length, anchor.Subject().CommonName(), result.ReferenceTime.UTC().Format(time.RFC3339))
			return nil
		}),
	}

	check.register(cmd)
	return cmd
}

func newInspectCmd(opts *options, log logger.Logger) *cobra.Command {
	var (
		check  = &checkOptions{}
		tree   bool
		table  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Render a certificate chain as a tree, table or JSON with validation status",
		Args:  cobra.ExactArgs(1),
		RunE: runE(opts, log, func(e *env, args []string) error {
			below, anchor, at, err := check.load(e, args[0])
			if err != nil && !errors.Is(err, ErrNoAnchor) {
				return err
			}

			// Render even when the chain fails, marking where it broke.
			verr := err
			ch := x509chain.New(below...)
			if anchor != nil {
				_, verr = x509chain.Validate(below, anchor, at)
				ch = x509chain.New(append(slices.Clone(below), anchor)...)
			}
			status := ch.Statuses(verr)

			switch {
			case asJSON:
				data, err := ch.ToVisualizationJSON(status)
				if err != nil {
					return err
				}
				e.log.Println(string(data))
			case table:
				e.log.Println(ch.RenderTable(status))
			default:
				e.log.Println(ch.RenderASCIITree(status))
			}

			if verr != nil {
				e.log.Errorf("%v", verr)
			}
			return nil
		}),
	}

	check.register(cmd)
	cmd.Flags().BoolVarP(&tree, "tree", "t", false, "render an ASCII tree (default)")
	cmd.Flags().BoolVar(&table, "table", false, "render a markdown table")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "render JSON")
	cmd.MarkFlagsMutuallyExclusive("tree", "table", "json")
	return cmd
}

// load reads the chain file, resolves the anchor and parses the reference time.
// The returned certificates exclude the anchor. A missing anchor is [ErrNoAnchor].
func (o *checkOptions) load(e *env, path string) ([]*x509certs.Certificate, *x509certs.Certificate, time.Time, error) {
	at, err := parseTime(o.at)
	if err != nil {
		return nil, nil, time.Time{}, err
	}

	certs, err := e.store.LoadFile(path)
	if err != nil {
		return nil, nil, time.Time{}, err
	}

	var anchor *x509certs.Certificate
	if o.anchorFile != "" {
		anchors, err := e.store.LoadFile(o.anchorFile)
		if err != nil {
			return nil, nil, time.Time{}, err
		}
		anchor = anchors[0]
	}

	below, anchor, err := e.svc.ResolveAnchor(certs, anchor)
	if errors.Is(err, ErrNoAnchor) {
		return below, nil, at, fmt.Errorf("%w, pass --anchor or run init", err)
	}
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	return below, anchor, at, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := hierarchy.ParseTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("cli: invalid --at: %w", err)
	}
	return t, nil
}
