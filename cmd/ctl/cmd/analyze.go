package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpfielding/pngs/pkg/png"
	"github.com/jpfielding/pngs/pkg/util"
)

// NewAnalyzeCmd creates the analyze cobra command
func NewAnalyzeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze PNG container structure",
		Long:  "Parses and displays detailed information about a PNG file: header metadata, chunk inventory and decoded pixel buffer identity.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath, _ := cmd.Flags().GetString("file")
			doDecode, _ := cmd.Flags().GetBool("decode")

			if filePath == "" && len(args) > 0 {
				filePath = args[0]
			}
			if filePath == "" {
				return fmt.Errorf("file path is required. Use --file flag or provide as argument")
			}
			return runAnalyze(filePath, doDecode)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "PNG file path to analyze")
	pf.Bool("decode", true, "Also decode pixel data and report its content UUID")

	return cmd
}

func runAnalyze(filePath string, doDecode bool) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filePath, err)
	}

	info, err := png.Inspect(data)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	h := info.Header
	fmt.Println("=== Header ===")
	fmt.Printf("Width: %d\n", h.Width)
	fmt.Printf("Height: %d\n", h.Height)
	fmt.Printf("BitDepth: %d\n", h.BitDepth)
	fmt.Printf("ColorMode: %s (%d bytes/pixel)\n", h.Mode, h.Mode.BytesPerPixel())
	fmt.Printf("Interlace: %s\n", h.Interlace)
	fmt.Println()

	fmt.Println("=== Chunks ===")
	for i, ch := range info.Chunks {
		fmt.Printf("%3d  %s  %d bytes\n", i, ch.Tag, ch.Length)
	}
	fmt.Printf("\nCompressed image data: %d bytes across %d chunk(s)\n", info.CompressedSize, countData(info.Chunks))

	if !doDecode {
		return nil
	}

	img, err := png.Decode(data)
	if err != nil {
		return fmt.Errorf("decode error: %w", err)
	}
	fmt.Println("\n=== Pixels ===")
	fmt.Printf("Buffer: %d bytes\n", len(img.Pix))
	fmt.Printf("ContentUUID: %s\n", util.ContentUUID(img.Pix))
	return nil
}

func countData(chunks []png.ChunkInfo) int {
	n := 0
	for _, ch := range chunks {
		if ch.Tag == "IDAT" {
			n++
		}
	}
	return n
}
