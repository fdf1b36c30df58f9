package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/supdrewin/cratri-unpac/pkg/pac"
	"github.com/supdrewin/cratri-unpac/pkg/pgd"
)

// NewInfoCmd creates the info cobra command
func NewInfoCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Inspect PAC archive structure",
		Long:  "Parses and displays the entry table of a PAC archive plus header details for every image entry, without extracting anything.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath, _ := cmd.Flags().GetString("file")

			if filePath == "" && len(args) > 0 {
				filePath = args[0]
			}

			if filePath == "" {
				return fmt.Errorf("archive path is required. Use --file flag or provide as argument")
			}

			return runInfo(filePath)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "PAC archive to inspect")

	return cmd
}

// runInfo prints the archive directory and per-image header summaries
func runInfo(path string) error {
	rc, err := pac.OpenReader(path)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	defer rc.Close()

	fmt.Printf("Total entries: %d\n\n", len(rc.Entries))

	for _, en := range rc.Entries {
		fmt.Printf("%-32s %10d bytes @ %#x\n", en.Name, en.Size, en.Offset)
		if !strings.HasSuffix(en.Name, "pgd") {
			continue
		}

		var magic [4]byte
		if _, err := io.ReadFull(en.Open(), magic[:]); err != nil {
			fmt.Printf("  unreadable: %v\n", err)
			continue
		}
		kind, err := pgd.DetectKind(magic[:])
		if err != nil {
			fmt.Printf("  not an image: %v\n", err)
			continue
		}

		switch kind {
		case pgd.KindMain:
			h, err := pgd.ReadMainHeader(en.Open())
			if err != nil {
				fmt.Printf("  bad main header: %v\n", err)
				continue
			}
			fmt.Printf("  main %dx%d filter=%s unpacked=%d packed=%d\n",
				h.Width, h.Height, h.Filter, h.UnpackedSize, h.PackedSize)
		case pgd.KindSub:
			h, err := pgd.ReadSubHeader(en.Open())
			if err != nil {
				fmt.Printf("  bad sub header: %v\n", err)
				continue
			}
			fmt.Printf("  sub %dx%d at (%d,%d) over %q unpacked=%d packed=%d\n",
				h.Width, h.Height, h.X, h.Y, h.BaseName, h.UnpackedSize, h.PackedSize)
		}
	}
	return nil
}
