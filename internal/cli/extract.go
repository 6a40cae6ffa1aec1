package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/config"
	"github.com/jmylchreest/swatch/internal/image"
)

const previewWidth = 8

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract the dominant colours of an image",
		Long: `Extract the dominant colours of an image with k-means clustering.

The image may be a file, a directory (a random image inside it is used) or an
HTTP(S) URL. Settings can also come from SWATCH_COLOURS, SWATCH_SEED,
SWATCH_MAX_ITERATIONS, SWATCH_WORKERS and SWATCH_FORMAT; flags take
precedence.

Supported image formats: JPEG, PNG, GIF, WebP, BMP, TIFF

Examples:
  # Extract 5 colours (default) from an image
  swatch extract wallpaper.jpg

  # Extract 8 colours as CSS rgb() strings
  swatch extract -c 8 -f css wallpaper.png

  # Reproducible palette as JSON, written to a file
  swatch extract --seed 42 -f json -o palette.json wallpaper.jpg

  # Spread pixel assignment over 4 goroutines for a large image
  swatch extract --workers 4 photo.tiff`,
		Args: cobra.ExactArgs(1),
		RunE: runExtract,
	}

	config.BindFlags(cmd.Flags())
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().Bool("preview", false, "show colour swatches (default: on when stdout is a terminal)")

	return cmd
}

// runExtract executes the extract command.
func runExtract(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	cfg, err := config.NewBuilder().WithEnvConfig().WithFlags(cmd.Flags()).Build()
	if err != nil {
		return err
	}

	if err := image.ValidateImagePath(args[0]); err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}
	imagePath, err := image.ResolveImagePath(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve image path: %w", err)
	}

	logger.Debug("loading image", "path", imagePath)
	var loader image.Loader = image.NewSmartLoader()
	decoded, err := loader.Load(cmd.Context(), imagePath)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	bounds := decoded.Image.Bounds()
	logger.Debug("image loaded", "format", decoded.Format, "width", bounds.Dx(), "height", bounds.Dy())

	extractor, err := colour.NewExtractor(cfg.ExtractorConfig(logger))
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	start := time.Now()
	palette, err := extractor.Extract(cmd.Context(), decoded.Image, cfg.Colours)
	switch {
	case errors.Is(err, colour.ErrNotConverged):
		logger.Warn("palette may be unstable", "error", err)
	case err != nil:
		return fmt.Errorf("failed to extract colours: %w", err)
	}
	logger.Debug("extracted palette", "colours", palette.Len(), "elapsed", time.Since(start))

	outputPath, _ := cmd.Flags().GetString("output")
	preview, _ := cmd.Flags().GetBool("preview")
	if !cmd.Flags().Changed("preview") {
		preview = outputPath == "" && isTerminal(cmd.OutOrStdout())
	}

	output, err := formatPalette(palette, cfg.Format, preview)
	if err != nil {
		return err
	}

	if outputPath == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), output)
		return err
	}

	logger.Debug("writing output", "path", outputPath)
	if err := os.WriteFile(outputPath, []byte(output), 0o644); err != nil { // #nosec G306 - palette files are not sensitive
		return fmt.Errorf("failed to write output file: %w", err)
	}
	logger.Info("wrote palette", "path", outputPath, "colours", palette.Len())
	return nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 - file descriptors fit in int
}
