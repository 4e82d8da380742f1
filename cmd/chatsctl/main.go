package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/matheus3301/chats/internal/app"
	"github.com/matheus3301/chats/internal/session"
	"go.uber.org/fx"
)

func main() {
	_ = godotenv.Load()

	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	verboseFlag := flag.Bool("v", false, "log to stderr")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	c := &cli{out: os.Stdout, json: *jsonFlag}
	fxApp := fx.New(
		app.Module(app.Params{SessionName: sessionName, Quiet: !*verboseFlag}),
		fx.WithLogger(app.FxLogger),
		fx.Populate(&c.chats, &c.identity, &c.db),
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

	ctx, cancelRun := context.WithTimeout(context.Background(), 30*time.Second)
	runErr := c.run(ctx, args)
	cancelRun()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelStop()
	_ = fxApp.Stop(stopCtx)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		if errors.Is(runErr, errUsage) {
			printUsage()
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: chatsctl [--session <name>] [--json] [-v] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  login <user>                 Log in and load chats")
	fmt.Fprintln(os.Stderr, "  logout                       Log out")
	fmt.Fprintln(os.Stderr, "  whoami [--qr]                Show the logged-in user")
	fmt.Fprintln(os.Stderr, "  chats                        List chats")
	fmt.Fprintln(os.Stderr, "  show <chat>                  Show a chat's messages")
	fmt.Fprintln(os.Stderr, "  create <user>...             Create a chat with users")
	fmt.Fprintln(os.Stderr, "  send [--image uri] [--preview uri] <chat> <text>...")
	fmt.Fprintln(os.Stderr, "                               Send a message")
	fmt.Fprintln(os.Stderr, "  read <message>               Mark a message read")
	fmt.Fprintln(os.Stderr, "  read-chat <chat>             Mark a whole chat read")
	fmt.Fprintln(os.Stderr, "  search <query>...            Search messages")
	fmt.Fprintln(os.Stderr, "  stats                        Show database counts")
}
