package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
)

func printBanner() {
	figure1 := figure.NewFigure("Hoppers", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	fmt.Println()
}

func main() {
	// The .env file is optional, settings can come from the environment or hoppers.yaml.
	if err := godotenv.Load(".env"); err != nil {
		_ = godotenv.Load("../.env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		bannercolor.Red("\nError: %s", err.Error())
		stop()
		os.Exit(1)
	}
}
