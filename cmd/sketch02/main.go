// Sketch02 draws the circle scene centered on a full-screen back buffer.
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
	cfg, err := config.Load("sketch02")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sketch02 failed: %v\n", err)
		os.Exit(1)
	}
	if len(os.Args) > 1 {
		cfg.SceneFile = os.Args[1]
	}
	application, err := app.New(cfg,
		app.WithLogger(logger),
		app.WithScenePassword(os.Getenv("SKETCH_SCENE_PASSWORD")),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sketch02 failed: %v\n", err)
		os.Exit(1)
	}
	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Sketch02 failed: %v\n", err)
		os.Exit(1)
	}
}
