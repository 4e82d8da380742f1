// Package tui is the terminal front end. It renders the chat store's
// projection and re-renders whenever the store publishes a change.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/chats/internal/auth"
	"github.com/matheus3301/chats/internal/bus"
	"github.com/matheus3301/chats/internal/chatstore"
	"github.com/matheus3301/chats/internal/tui/keys"
	"github.com/matheus3301/chats/internal/tui/ui"
	"github.com/matheus3301/chats/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

const (
	pageLogin   = "login"
	pageChats   = "chats"
	pageChat    = "chat"
	pageSearch  = "search"
	pageNewChat = "new"
	pageProfile = "profile"
)

// imagePrefix turns a composer line into an image message: "/image <uri> [caption]".
const imagePrefix = "/image "

const flashFor = 5 * time.Second

// Deps are the session components the TUI drives.
type Deps struct {
	Session  string
	Chats    *chatstore.ChatStore
	Identity *auth.Identity
	Bus      *bus.Bus
	Logger   *zap.Logger
}

// App is the main TUI application shell.
type App struct {
	deps      Deps
	app       *tview.Application
	pages     *tview.Pages
	registry  *keys.Registry
	statusBar *views.StatusBar
	login     *views.LoginView
	chatList  *views.ChatList
	thread    *views.MessageThread
	search    *views.SearchView
	prompt    *views.ParticipantsPrompt
	profile   *views.ProfileView
	flashGen  int
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(d Deps) *App {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	theme := ui.DefaultTheme()
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		deps:      d,
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		registry:  keys.NewRegistry(),
		statusBar: views.NewStatusBar(d.Session),
		login:     views.NewLoginView(theme),
		chatList:  views.NewChatList(theme),
		thread:    views.NewMessageThread(theme),
		search:    views.NewSearchView(theme),
		prompt:    views.NewParticipantsPrompt(theme),
		profile:   views.NewProfileView(theme),
		ctx:       ctx,
		cancel:    cancel,
	}

	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()
	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'q',
		Description: "q:quit", Visible: true,
		Handler: a.Stop,
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 's',
		Description: "s:search", Visible: true,
		Handler: func() { a.show(pageSearch) },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'p',
		Description: "p:profile", Visible: true,
		Handler: func() { a.show(pageProfile) },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'L',
		Description: "L:logout", Visible: true,
		Handler: a.logout,
	})
	a.registry.AddPage(pageChats, &keys.Action{
		Key: tcell.KeyRune, Rune: 'n',
		Description: "n:new chat", Visible: true,
		Handler: func() { a.show(pageNewChat) },
	})
	a.registry.AddPage(pageChats, &keys.Action{
		Key: tcell.KeyRune, Rune: 'R',
		Description: "R:reload", Visible: true,
		Handler: a.reload,
	})
	a.registry.AddPage(pageChat, &keys.Action{
		Key: tcell.KeyRune, Rune: 'i',
		Description: "i:compose", Visible: true,
		Handler: func() { a.app.SetFocus(a.thread.Composer()) },
	})
	a.registry.AddPage(pageChat, &keys.Action{
		Key: tcell.KeyRune, Rune: 'r',
		Description: "r:mark read", Visible: true,
		Handler: a.markThreadRead,
	})
}

func (a *App) setupCallbacks() {
	a.login.SetOnLogin(a.doLogin)

	a.chatList.SetSelectedFunc(func(int, int) {
		if id := a.chatList.SelectedChat(); id != "" {
			a.openChat(id)
		}
	})

	a.thread.SetOnSend(a.send)

	a.prompt.SetOnSubmit(a.createChat)

	a.search.SetOnQuery(func(query string) {
		go func() {
			results, err := a.deps.Chats.SearchMessages(a.ctx, query, 100)
			a.app.QueueUpdateDraw(func() {
				if err != nil {
					a.flash("Search failed: "+err.Error(), true)
					return
				}
				a.search.Update(results, time.Now())
				a.app.SetFocus(a.search.Results())
			})
		}()
	})
	a.search.Results().SetSelectedFunc(func(int, int) {
		if id := a.search.SelectedChat(); id != "" {
			a.openChat(id)
		}
	})
}

func (a *App) setupLayout() {
	a.pages.AddPage(pageLogin, a.login, true, false)
	a.pages.AddPage(pageChats, a.chatList, true, false)
	a.pages.AddPage(pageChat, a.thread, true, false)
	a.pages.AddPage(pageSearch, a.search, true, false)
	a.pages.AddPage(pageProfile, a.profile, true, false)
	a.pages.AddPage(pageNewChat, tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(a.prompt, 3, 0, true).
		AddItem(nil, 0, 1, false), true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)
	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		page, _ := a.pages.GetFrontPage()

		if event.Key() == tcell.KeyEscape && page != pageLogin && page != pageChats {
			a.show(pageChats)
			return nil
		}

		// Let text input widgets handle all keys normally.
		if _, ok := a.app.GetFocus().(*tview.InputField); ok {
			return event
		}
		if page == pageLogin {
			return event
		}
		if a.registry.HandleEvent(page, event) {
			return nil
		}
		return event
	})
}

// show switches to page, or to the login page when nobody is logged in.
func (a *App) show(page string) {
	if _, err := a.deps.Identity.Require(); err != nil {
		page = pageLogin
	}
	switch page {
	case pageLogin:
		a.login.Reset()
		a.pages.SwitchToPage(pageLogin)
		a.app.SetFocus(a.login.Input())
	case pageChats:
		a.pages.SwitchToPage(pageChats)
		a.app.SetFocus(a.chatList)
	case pageChat:
		a.pages.SwitchToPage(pageChat)
		a.app.SetFocus(a.thread.Messages())
	case pageSearch:
		a.pages.SwitchToPage(pageSearch)
		a.app.SetFocus(a.search.Input())
	case pageNewChat:
		a.pages.SwitchToPage(pageNewChat)
		a.app.SetFocus(a.prompt.InputField)
	case pageProfile:
		a.profile.Show(a.deps.Identity.Current())
		a.pages.SwitchToPage(pageProfile)
		a.app.SetFocus(a.profile)
	}
	a.statusBar.SetHints(a.registry.Hints(page))
}

// refresh redraws everything from the chat store. It runs on the UI
// goroutine.
func (a *App) refresh() {
	me := a.deps.Identity.Current()
	now := time.Now()

	a.statusBar.SetUser(me)
	a.statusBar.SetState(string(a.deps.Chats.State()))
	a.chatList.Update(a.deps.Chats.Chats(), me, now)

	page, _ := a.pages.GetFrontPage()
	if me == "" && page != pageLogin {
		a.show(pageLogin)
		return
	}
	if page == pageChat {
		if c, ok := a.deps.Chats.Chat(a.thread.ChatID()); ok {
			a.thread.Update(c, me, now)
		}
	}
}

// watch re-renders on every chat store event until the app stops.
func (a *App) watch() {
	events, unsubscribe := a.deps.Bus.Subscribe(64, "chat.", "chats.", "message.", "store.")
	defer unsubscribe()
	for {
		select {
		case <-events:
			// Coalesce bursts into one redraw.
			for drained := false; !drained; {
				select {
				case <-events:
				default:
					drained = true
				}
			}
			a.app.QueueUpdateDraw(a.refresh)
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) doLogin(userID string) {
	go func() {
		err := a.deps.Identity.Login(a.ctx, userID)
		a.app.QueueUpdateDraw(func() {
			switch {
			case errors.Is(err, auth.ErrInvalidUserID):
				a.login.ShowError(err)
				return
			case err != nil:
				a.flash("Loading chats failed: "+err.Error(), true)
			}
			a.refresh()
			a.show(pageChats)
		})
	}()
}

func (a *App) logout() {
	go func() {
		if err := a.deps.Identity.Logout(a.ctx); err != nil {
			a.app.QueueUpdateDraw(func() { a.flash("Logout failed: "+err.Error(), true) })
			return
		}
		a.app.QueueUpdateDraw(func() { a.show(pageLogin) })
	}()
}

func (a *App) reload() {
	go func() {
		if err := a.deps.Chats.Reload(a.ctx); err != nil && !errors.Is(err, chatstore.ErrSuperseded) {
			a.app.QueueUpdateDraw(func() { a.flash("Reload failed: "+err.Error(), true) })
		}
	}()
}

func (a *App) openChat(id string) {
	c, ok := a.deps.Chats.Chat(id)
	if !ok {
		a.flash("Chat is not loaded", true)
		return
	}
	a.thread.Update(c, a.deps.Identity.Current(), time.Now())
	a.show(pageChat)
}

func (a *App) send(text string) {
	chatID := a.thread.ChatID()
	me := a.deps.Identity.Current()
	var img *chatstore.Image
	if uri, caption, ok := parseImageCommand(text); ok {
		img = &chatstore.Image{URI: uri}
		text = caption
	}
	go func() {
		if _, err := a.deps.Chats.SendMessage(a.ctx, chatID, text, me, img); err != nil {
			a.app.QueueUpdateDraw(func() { a.flash("Send failed: "+err.Error(), true) })
		}
	}()
}

func (a *App) createChat(others []string) {
	me := a.deps.Identity.Current()
	go func() {
		c, err := a.deps.Chats.CreateChat(a.ctx, append([]string{me}, others...))
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.flash("Create chat failed: "+err.Error(), true)
				return
			}
			a.openChat(c.ID)
		})
	}()
}

func (a *App) markThreadRead() {
	chatID := a.thread.ChatID()
	me := a.deps.Identity.Current()
	go func() {
		n, err := a.deps.Chats.MarkChatAsRead(a.ctx, chatID, me)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.flash("Mark as read failed: "+err.Error(), true)
				return
			}
			if n > 0 {
				a.flash("Marked "+pluralMessages(n)+" read", false)
			}
		})
	}()
}

// flash shows msg in the status bar for a few seconds. Must run on the UI
// goroutine.
func (a *App) flash(msg string, isError bool) {
	if isError {
		a.deps.Logger.Warn(msg)
	}
	a.flashGen++
	gen := a.flashGen
	a.statusBar.SetFlash(msg, isError)
	time.AfterFunc(flashFor, func() {
		a.app.QueueUpdateDraw(func() {
			if a.flashGen == gen {
				a.statusBar.SetFlash("", false)
			}
		})
	})
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	a.refresh()
	a.show(pageChats)
	go a.watch()
	return a.app.Run()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// parseImageCommand splits "/image <uri> [caption]".
func parseImageCommand(line string) (uri, caption string, ok bool) {
	rest, found := strings.CutPrefix(line, imagePrefix)
	if !found {
		return "", "", false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", "", false
	}
	uri, caption, _ = strings.Cut(rest, " ")
	return uri, strings.TrimSpace(caption), true
}

func pluralMessages(n int) string {
	if n == 1 {
		return "1 message"
	}
	return fmt.Sprintf("%d messages", n)
}
