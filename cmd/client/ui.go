package main

import (
	"fmt"
	"strings"

	"github.com/jroimartin/gocui"

	"github.com/andy6609/niochat/internal/client"
)

const helpText = `Commands:
/nick <name>        - Join or change your display name
/msg <name> <text>  - Send a private message
/quit               - Leave chat

Keybindings:
Ctrl-C              - Quit
F1                  - Toggle help
Enter               - Send`

// helpKey toggles the help pane. Ctrl-H is Backspace on many terminals.
const helpKey = gocui.KeyF1

type ChatUI struct {
	gui        *gocui.Gui
	client     *client.Client
	addr       string
	msgView    string
	inputView  string
	statusView string
	helpView   string
	showHelp   bool
}

func NewChatUI(c *client.Client, addr string) (*ChatUI, error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, err
	}
	g.Cursor = true

	ui := &ChatUI{
		gui:        g,
		client:     c,
		addr:       addr,
		msgView:    "messages",
		inputView:  "input",
		statusView: "status",
		helpView:   "help",
	}
	g.SetManagerFunc(ui.layout)
	return ui, nil
}

func (ui *ChatUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	msgHeight := maxY - 6

	if v, err := g.SetView(ui.msgView, 0, 0, maxX-1, msgHeight); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Messages"
		v.Wrap = true
		v.Autoscroll = true
	}

	if v, err := g.SetView(ui.statusView, 0, msgHeight+1, maxX-1, msgHeight+3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Status"
		fmt.Fprintf(v, "Connected to %s | F1: Help", ui.addr)
	}

	if v, err := g.SetView(ui.inputView, 0, msgHeight+3, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Input"
		v.Editable = true
		if _, err := g.SetCurrentView(ui.inputView); err != nil {
			return err
		}
	}

	if ui.showHelp {
		if v, err := g.SetView(ui.helpView, maxX/6, maxY/6, maxX*5/6, maxY*5/6); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
			v.Title = "Help"
			fmt.Fprintln(v, helpText)
		}
	} else if err := g.DeleteView(ui.helpView); err != nil && err != gocui.ErrUnknownView {
		return err
	}

	return nil
}

func (ui *ChatUI) keybindings() error {
	if err := ui.gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone,
		func(*gocui.Gui, *gocui.View) error {
			return gocui.ErrQuit
		}); err != nil {
		return err
	}

	if err := ui.gui.SetKeybinding("", helpKey, gocui.ModNone,
		func(*gocui.Gui, *gocui.View) error {
			ui.showHelp = !ui.showHelp
			return nil
		}); err != nil {
		return err
	}

	return ui.gui.SetKeybinding(ui.inputView, gocui.KeyEnter, gocui.ModNone, ui.handleInput)
}

func (ui *ChatUI) handleInput(_ *gocui.Gui, v *gocui.View) error {
	input := strings.TrimSpace(v.Buffer())
	v.Clear()
	_ = v.SetCursor(0, 0)
	if input == "" {
		return nil
	}

	cmd, err := client.ParseCommand(input)
	if err != nil {
		ui.setStatus(err.Error())
		return nil
	}
	if cmd.Kind == client.CommandQuit {
		return gocui.ErrQuit
	}
	if err := ui.client.Apply(cmd); err != nil {
		ui.setStatus("send failed: " + err.Error())
	}
	return nil
}

func (ui *ChatUI) setStatus(status string) {
	ui.gui.Update(func(g *gocui.Gui) error {
		v, err := g.View(ui.statusView)
		if err != nil {
			return err
		}
		v.Clear()
		fmt.Fprint(v, status)
		return nil
	})
}

// pump copies server lines into the message pane until the connection ends.
func (ui *ChatUI) pump() {
	for line := range ui.client.Lines() {
		ui.gui.Update(func(g *gocui.Gui) error {
			v, err := g.View(ui.msgView)
			if err != nil {
				return err
			}
			fmt.Fprintln(v, line)
			return nil
		})
	}
	ui.setStatus("disconnected from " + ui.addr)
}

func (ui *ChatUI) Run() error {
	if err := ui.keybindings(); err != nil {
		return err
	}
	go ui.pump()

	if err := ui.gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

func (ui *ChatUI) Close() {
	ui.gui.Close()
}
