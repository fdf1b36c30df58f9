package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/supdrewin/cratri-unpac/pkg/extract"
)

// NewExtractCmd creates the extract cobra command
func NewExtractCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [archives or directories]",
		Short: "Decode PAC archives into PNG and raw files",
		Long:  "Extracts every entry of the given archives, or of all .pac files in the given directories, into the output directory, one folder per archive. Without arguments the current directory is scanned.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			manifest, _ := cmd.Flags().GetBool("manifest")

			paths := args
			if len(paths) == 0 {
				paths = []string{"."}
			}
			ex := &extract.Extractor{OutDir: out, Manifest: manifest}
			var reports []*extract.Report
			for _, p := range paths {
				fi, err := os.Stat(p)
				if err != nil {
					return err
				}
				if fi.IsDir() {
					rs, err := ex.ExtractDir(ctx, p)
					if err != nil {
						return err
					}
					reports = append(reports, rs...)
					continue
				}
				r, err := ex.ExtractArchive(ctx, p)
				if err != nil {
					return err
				}
				reports = append(reports, r)
			}
			if failed := extract.Failures(reports); failed > 0 {
				return fmt.Errorf("%d entries failed across %d archives", failed, len(reports))
			}
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("out", "o", "assets", "output directory")
	pf.Bool("manifest", true, "write a manifest.json into each archive's output folder")
	return cmd
}
