// swatch - dominant colour extraction
//
// swatch reduces an image to a handful of representative colours using
// k-means clustering over its pixels.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/jmylchreest/swatch/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
