package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/matheus3301/chats/internal/app"
	"github.com/matheus3301/chats/internal/session"
	"github.com/matheus3301/chats/internal/tui"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	flag.Parse()

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var d tui.Deps
	d.Session = sessionName
	fxApp := fx.New(
		// The TUI owns the terminal; everything else goes to the log file.
		app.Module(app.Params{SessionName: sessionName, Quiet: true}),
		fx.WithLogger(app.FxLogger),
		fx.Populate(&d.Chats, &d.Identity, &d.Bus, &d.Logger),
	)
	if err := fxApp.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	runErr := run(d)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelStop()
	_ = fxApp.Stop(stopCtx)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		os.Exit(1)
	}
}

func run(d tui.Deps) error {
	d.Logger.Info("tui starting", zap.String("user", d.Identity.Current()))
	ui := tui.NewApp(d)
	defer ui.Stop()
	return ui.Run()
}
