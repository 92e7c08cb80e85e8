// TechSketch01 draws one ellipse through an offscreen gg context.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"sketches/internal/app"
	"sketches/internal/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: app.LogLevel()}))
	cfg, err := config.Load("techsketch01")
	if err != nil {
		fmt.Fprintf(os.Stderr, "TechSketch01 failed: %v\n", err)
		os.Exit(1)
	}
	application, err := app.New(cfg, app.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "TechSketch01 failed: %v\n", err)
		os.Exit(1)
	}
	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TechSketch01 failed: %v\n", err)
		os.Exit(1)
	}
}
