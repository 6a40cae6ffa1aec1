package cli

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/config"
)

// formatPalette formats the palette according to the specified format.
func formatPalette(palette *colour.Palette, format string, showPreview bool) (string, error) {
	switch format {
	case config.FormatHex:
		return formatLines(palette, showPreview, palette.ToHex()), nil
	case config.FormatRGB:
		lines := make([]string, palette.Len())
		for i, c := range palette.All() {
			lines[i] = c.String()
		}
		return formatLines(palette, showPreview, lines), nil
	case config.FormatCSS:
		return formatLines(palette, showPreview, palette.ToCSS()), nil
	case config.FormatJSON:
		jsonBytes, err := palette.ToJSON()
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(jsonBytes) + "\n", nil
	case config.FormatTable:
		return paletteTable(palette).Render(), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(config.Formats(), ", "))
	}
}

// formatLines writes lines[i] for each colour, optionally prefixed by a swatch.
func formatLines(palette *colour.Palette, showPreview bool, lines []string) string {
	var b strings.Builder
	for i, c := range palette.All() {
		if showPreview {
			b.WriteString(swatch(palette, i, c))
			b.WriteString("  ")
		}
		b.WriteString(lines[i])
		b.WriteByte('\n')
	}
	return b.String()
}

// swatch renders a colour block, labelled with the colour's share of the
// image when weights are known.
func swatch(palette *colour.Palette, i int, c colour.RGB) string {
	if i >= len(palette.Weights) {
		return colour.ColourPreview(c, previewWidth)
	}
	return colour.ColourPreviewWithText(c, fmt.Sprintf("%.0f%%", palette.Weights[i]*100), previewWidth)
}
