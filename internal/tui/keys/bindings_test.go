package keys

import (
	"reflect"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func runeEvent(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestHandleEventPrefersPageBindings(t *testing.T) {
	var got []string
	r := NewRegistry()
	r.AddGlobal(&Action{Key: tcell.KeyRune, Rune: 'r', Handler: func() { got = append(got, "global") }})
	r.AddPage("chat", &Action{Key: tcell.KeyRune, Rune: 'r', Handler: func() { got = append(got, "chat") }})

	if !r.HandleEvent("chat", runeEvent('r')) {
		t.Fatal("HandleEvent(chat, r) = false")
	}
	if !r.HandleEvent("chats", runeEvent('r')) {
		t.Fatal("HandleEvent(chats, r) = false")
	}
	if r.HandleEvent("chat", runeEvent('x')) {
		t.Error("HandleEvent(chat, x) = true, want false")
	}
	if want := []string{"chat", "global"}; !reflect.DeepEqual(got, want) {
		t.Errorf("handlers run = %v, want %v", got, want)
	}
}

func TestMatchesSpecialKeys(t *testing.T) {
	a := &Action{Key: tcell.KeyEnter}
	if !a.Matches(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)) {
		t.Error("Enter not matched")
	}
	if a.Matches(runeEvent('e')) {
		t.Error("plain e matched Enter binding")
	}
}

func TestHintsOrder(t *testing.T) {
	r := NewRegistry()
	r.AddGlobal(&Action{Description: "q:quit", Visible: true})
	r.AddGlobal(&Action{Description: "hidden"})
	r.AddPage("chats", &Action{Description: "n:new", Visible: true})
	r.AddPage("chats", &Action{Description: "enter:open", Visible: true})

	want := []string{"n:new", "enter:open", "q:quit"}
	if got := r.Hints("chats"); !reflect.DeepEqual(got, want) {
		t.Errorf("Hints(chats) = %v, want %v", got, want)
	}
	if got := r.Hints("login"); !reflect.DeepEqual(got, []string{"q:quit"}) {
		t.Errorf("Hints(login) = %v", got)
	}
}
