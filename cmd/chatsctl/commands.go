package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/matheus3301/chats/internal/auth"
	"github.com/matheus3301/chats/internal/chatstore"
	"github.com/matheus3301/chats/internal/store"
	"github.com/matheus3301/chats/internal/tui/ui"
	"github.com/matheus3301/chats/internal/tui/views"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

var errUsage = errors.New("bad usage")

// cli runs one command against an opened session.
type cli struct {
	chats    *chatstore.ChatStore
	identity *auth.Identity
	db       *store.DB
	out      io.Writer
	json     bool
	now      func() time.Time
}

func (c *cli) run(ctx context.Context, args []string) error {
	if c.now == nil {
		c.now = time.Now
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return c.login(ctx, rest)
	case "logout":
		return c.logout(ctx)
	case "whoami":
		return c.whoami(rest)
	case "stats":
		return c.stats(ctx)
	}

	me, err := c.identity.Require()
	if err != nil {
		return fmt.Errorf("%w (run: chatsctl login <user>)", err)
	}
	switch cmd {
	case "chats":
		return c.listChats(me)
	case "show":
		return c.show(me, rest)
	case "create":
		return c.create(ctx, me, rest)
	case "send":
		return c.send(ctx, me, rest)
	case "read":
		return c.read(ctx, me, rest)
	case "read-chat":
		return c.readChat(ctx, me, rest)
	case "search":
		return c.search(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (c *cli) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: login <user>", errUsage)
	}
	if err := c.identity.Login(ctx, args[0]); err != nil {
		return err
	}
	if c.json {
		return c.outputJSON(map[string]any{"user": args[0], "chats": len(c.chats.Chats())})
	}
	fmt.Fprintf(c.out, "Logged in as %s (%d chats)\n", args[0], len(c.chats.Chats()))
	return nil
}

func (c *cli) logout(ctx context.Context) error {
	if err := c.identity.Logout(ctx); err != nil {
		return err
	}
	if !c.json {
		fmt.Fprintln(c.out, "Logged out")
	}
	return nil
}

func (c *cli) whoami(args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	qr := fs.Bool("qr", false, "print the user id as a QR code")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	me, err := c.identity.Require()
	if err != nil {
		return err
	}
	if c.json {
		return c.outputJSON(map[string]string{"user": me, "state": string(c.chats.State())})
	}
	fmt.Fprintf(c.out, "%s (%s)\n", me, c.chats.State())
	if *qr {
		code, err := ui.RenderQR(me, "  ")
		if err != nil {
			return fmt.Errorf("render QR: %w", err)
		}
		fmt.Fprint(c.out, code)
	}
	return nil
}

func (c *cli) listChats(me string) error {
	chats := views.SortByActivity(c.chats.Chats())
	if c.json {
		return c.outputJSON(chats)
	}
	if len(chats) == 0 {
		fmt.Fprintln(c.out, "No chats yet.")
		return nil
	}

	table := c.newTable("ID", "With", "Messages", "Unread", "Last message", "When")
	for _, ch := range chats {
		when := ""
		if ch.LastMessage != nil {
			when = humanize.RelTime(time.UnixMilli(ch.LastMessage.Timestamp), c.now(), "ago", "from now")
		}
		table.Append([]string{
			ch.ID,
			views.ChatTitle(ch, me),
			humanize.Comma(int64(len(ch.Messages))),
			fmt.Sprint(views.UnreadCount(ch, me)),
			truncate(views.Preview(ch.LastMessage), 40),
			when,
		})
	}
	table.Render()
	return nil
}

func (c *cli) show(me string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: show <chat>", errUsage)
	}
	ch, ok := c.chats.Chat(args[0])
	if !ok {
		return fmt.Errorf("chat %q not found", args[0])
	}
	if c.json {
		return c.outputJSON(ch)
	}

	fmt.Fprintf(c.out, "Chat %s with %s\n", ch.ID, views.ChatTitle(ch, me))
	table := c.newTable("ID", "When", "From", "Message", "Status", "Read by")
	for _, m := range ch.Messages {
		text := views.Preview(&m)
		if m.Type == chatstore.TypeImage {
			text = strings.TrimSpace(text + " " + m.ImageURI)
		}
		readers := lo.Map(m.ReadBy, func(r chatstore.ReadEntry, _ int) string { return r.UserID })
		table.Append([]string{
			m.ID,
			time.UnixMilli(m.Timestamp).Format("2006-01-02 15:04"),
			m.SenderID,
			truncate(text, 60),
			string(m.Status),
			strings.Join(readers, ", "),
		})
	}
	table.Render()
	return nil
}

func (c *cli) create(ctx context.Context, me string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: create <user>...", errUsage)
	}
	ch, err := c.chats.CreateChat(ctx, append([]string{me}, args...))
	if err != nil {
		return err
	}
	if c.json {
		return c.outputJSON(ch)
	}
	fmt.Fprintf(c.out, "Created chat %s with %s\n", ch.ID, views.ChatTitle(ch, me))
	return nil
}

func (c *cli) send(ctx context.Context, me string, args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	image := fs.String("image", "", "image URI")
	preview := fs.String("preview", "", "image preview URI")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: send [--image uri] [--preview uri] <chat> <text>...", errUsage)
	}

	var img *chatstore.Image
	if *image != "" {
		img = &chatstore.Image{URI: *image, PreviewURI: *preview}
	}
	msg, err := c.chats.SendMessage(ctx, fs.Arg(0), strings.Join(fs.Args()[1:], " "), me, img)
	if err != nil {
		return err
	}
	if c.json {
		return c.outputJSON(msg)
	}
	fmt.Fprintf(c.out, "Sent %s\n", msg.ID)
	return nil
}

func (c *cli) read(ctx context.Context, me string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: read <message>", errUsage)
	}
	entry, err := c.chats.MarkMessageAsRead(ctx, args[0], me)
	if err != nil {
		return err
	}
	if c.json {
		return c.outputJSON(entry)
	}
	fmt.Fprintf(c.out, "Marked %s read\n", args[0])
	return nil
}

func (c *cli) readChat(ctx context.Context, me string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: read-chat <chat>", errUsage)
	}
	n, err := c.chats.MarkChatAsRead(ctx, args[0], me)
	if err != nil {
		return err
	}
	if c.json {
		return c.outputJSON(map[string]int{"marked": n})
	}
	fmt.Fprintf(c.out, "Marked %d messages read\n", n)
	return nil
}

func (c *cli) search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: search <query>...", errUsage)
	}
	results, err := c.chats.SearchMessages(ctx, strings.Join(args, " "), 50)
	if err != nil {
		return err
	}
	if c.json {
		return c.outputJSON(results)
	}
	if len(results) == 0 {
		fmt.Fprintln(c.out, "No matches.")
		return nil
	}
	table := c.newTable("Chat", "Message ID", "From", "Message", "When")
	for _, m := range results {
		table.Append([]string{
			m.ChatID,
			m.ID,
			m.SenderID,
			truncate(views.Preview(&m), 60),
			humanize.Time(time.UnixMilli(m.Timestamp)),
		})
	}
	table.Render()
	return nil
}

func (c *cli) stats(ctx context.Context) error {
	s, err := c.db.Stats(ctx)
	if err != nil {
		return err
	}
	if c.json {
		return c.outputJSON(map[string]any{
			"chats":    s.Chats,
			"messages": s.Messages,
			"receipts": s.Receipts,
			"user":     c.identity.Current(),
			"state":    c.chats.State(),
		})
	}
	table := c.newTable("Chats", "Messages", "Receipts", "User", "State")
	table.Append([]string{
		humanize.Comma(s.Chats),
		humanize.Comma(s.Messages),
		humanize.Comma(s.Receipts),
		c.identity.Current(),
		string(c.chats.State()),
	})
	table.Render()
	return nil
}

func (c *cli) newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(c.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

func (c *cli) outputJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
