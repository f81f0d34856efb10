// go-ant
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-ant.
//
// go-ant is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-ant is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-ant; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/ZaparooProject/go-ant/detection"
	// Register detectors
	_ "github.com/ZaparooProject/go-ant/detection/spi"
	_ "github.com/ZaparooProject/go-ant/detection/uart"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type detectFlags struct {
	mode   string
	format string
	ignore []string
}

func newDetectCmd() *cobra.Command {
	flags := &detectFlags{}

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "List ANT radios attached to this machine",
		Example: `  antmon detect
  antmon detect --mode safe --format yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := detection.DefaultOptions()
			mode, err := parseMode(flags.mode)
			if err != nil {
				return err
			}
			opts.Mode = mode
			opts.IgnorePaths = flags.ignore

			devices, err := detection.DetectAllContext(cmd.Context(), &opts)
			if errors.Is(err, detection.ErrNoDevicesFound) {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "No ANT devices found")
				return err
			}
			if err != nil {
				return err
			}
			return writeDevices(cmd.OutOrStdout(), devices, flags.format)
		},
	}

	cmd.Flags().StringVar(&flags.mode, "mode", "passive", "Detection mode: passive, safe or full")
	cmd.Flags().StringVar(&flags.format, "format", "table", "Output format: table or yaml")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "Device paths to skip")
	return cmd
}

func parseMode(name string) (detection.Mode, error) {
	for _, m := range []detection.Mode{detection.Passive, detection.Safe, detection.Full} {
		if strings.EqualFold(name, m.String()) {
			return m, nil
		}
	}
	return detection.Passive, fmt.Errorf("unknown detection mode %q", name)
}

func writeDevices(w io.Writer, devices []detection.DeviceInfo, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(devices); err != nil {
			return fmt.Errorf("encode devices: %w", err)
		}
		return enc.Close()
	case "table":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "TRANSPORT\tPATH\tNAME\tCONFIDENCE\tDETAILS")
		for _, d := range devices {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Transport, d.Path, d.Name, d.Confidence, details(d.Metadata))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func details(metadata map[string]string) string {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+metadata[k])
	}
	return strings.Join(parts, " ")
}

// firstDevice picks the best radio for monitoring
func firstDevice(ctx context.Context) (detection.DeviceInfo, error) {
	opts := detection.DefaultOptions()
	opts.Mode = detection.Safe
	devices, err := detection.DetectAllContext(ctx, &opts)
	if err != nil {
		return detection.DeviceInfo{}, err
	}
	for _, d := range devices {
		if d.Transport == "uart" && d.Confidence >= detection.Medium {
			return d, nil
		}
	}
	return detection.DeviceInfo{}, detection.ErrNoDevicesFound
}
