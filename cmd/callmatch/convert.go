package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toejough/callmatch/internal/patternfile"
	"github.com/toejough/callmatch/match"
)

func newConvertCmd(opts *options) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "convert <input> [output]",
		Short: "Re-encode a call log document as YAML, JSON or msgpack",
		Long: `Convert reads a call log document and writes it in another format. The output
format comes from --to, or else from the output file's extension. Without an output
file the document is written to stdout.`,
		Example: `  callmatch convert calls.yaml calls.msgpack
  callmatch convert calls.msgpack --to json`,
		Args: cobra.RangeArgs(1, 2), //nolint:mnd // input and optional output
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.settings()
			if err != nil {
				return err
			}

			inFormat, err := patternfile.ParseFormat(cfg.Input.Format)
			if err != nil {
				return err
			}

			outFormat, err := patternfile.ParseFormat(to)
			if err != nil {
				return err
			}

			calls, err := patternfile.ReadCalls(args[0], inFormat)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				if outFormat == patternfile.FormatAuto {
					outFormat = patternfile.FormatYAML
				}

				return patternfile.WriteCalls(cmd.OutOrStdout(), calls, outFormat)
			}

			var buf bytes.Buffer
			if err := patternfile.WriteCalls(&buf, calls, outFormat.ForPath(args[1])); err != nil {
				return err
			}

			if err := os.WriteFile(args[1], buf.Bytes(), 0o600); err != nil { //nolint:mnd // file mode
				return fmt.Errorf("writing %s: %w", args[1], err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", "", "output format (yaml|json|msgpack)")

	return cmd
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the kinds accepted by {$any: kind}",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, kind := range match.Kinds() {
				writeLine(cmd.OutOrStdout(), "%s", kind)
			}
		},
	}
}
