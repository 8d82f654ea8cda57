package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpfielding/pngs/pkg/png"
	"github.com/jpfielding/pngs/pkg/util"
)

// NewDecodeCmd creates the decode cobra command
func NewDecodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a PNG file to a portable pixmap or raw pixel dump",
		Long:  "Decodes an 8-bit PNG and writes the pixel buffer as PPM (rgb/rgba), PGM (grayscale) or raw bytes for other modes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath, _ := cmd.Flags().GetString("file")
			outPath, _ := cmd.Flags().GetString("out")

			if filePath == "" && len(args) > 0 {
				filePath = args[0]
			}
			if filePath == "" {
				return fmt.Errorf("file path is required. Use --file flag or provide as argument")
			}
			return runDecode(ctx, filePath, outPath)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "PNG file path to decode")
	pf.StringP("out", "o", "", "Output path (default: input path with .ppm/.pgm/.bin extension)")

	return cmd
}

func runDecode(ctx context.Context, filePath, outPath string) error {
	img, err := png.DecodeFile(filePath)
	if err != nil {
		return fmt.Errorf("decode error: %w", err)
	}

	var out []byte
	ext := ".bin"
	switch img.Mode {
	case png.ModeRGB:
		out = ppm(img.Width, img.Height, img.Pix)
		ext = ".ppm"
	case png.ModeRGBA:
		// PPM has no alpha channel; drop it
		out = ppm(img.Width, img.Height, stripAlpha(img.Pix, 4))
		ext = ".ppm"
	case png.ModeGrayscale:
		out = pgm(img.Width, img.Height, img.Pix)
		ext = ".pgm"
	case png.ModeGrayscaleAlpha:
		out = pgm(img.Width, img.Height, stripAlpha(img.Pix, 2))
		ext = ".pgm"
	default:
		// indexed: raw palette indices, caller does the lookup
		out = img.Pix
	}

	if outPath == "" {
		outPath = strings.TrimSuffix(filePath, ".png") + ext
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	slog.InfoContext(ctx, "decoded",
		"file", filePath,
		"out", outPath,
		"width", img.Width,
		"height", img.Height,
		"mode", img.Mode.String(),
		"uuid", util.ContentUUID(img.Pix),
	)
	return nil
}

// ppm builds a binary P6 pixmap from packed RGB bytes.
func ppm(width, height uint32, rgb []byte) []byte {
	header := fmt.Sprintf("P6\n%d %d\n255\n", width, height)
	return append([]byte(header), rgb...)
}

// pgm builds a binary P5 graymap from grayscale bytes.
func pgm(width, height uint32, gray []byte) []byte {
	header := fmt.Sprintf("P5\n%d %d\n255\n", width, height)
	return append([]byte(header), gray...)
}

// stripAlpha drops the trailing alpha byte of each bpp-wide pixel.
func stripAlpha(pix []byte, bpp int) []byte {
	out := make([]byte, 0, len(pix)/bpp*(bpp-1))
	for i := 0; i < len(pix); i += bpp {
		out = append(out, pix[i:i+bpp-1]...)
	}
	return out
}
