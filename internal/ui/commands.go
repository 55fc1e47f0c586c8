package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"mcpchat/internal"
	"mcpchat/internal/bridge"
)

type CommandFunc func(m *Model, args []string) tea.Cmd

type Command struct {
	Name        string
	Description string
	Handler     CommandFunc
}

var commandRegistry = make(map[string]Command)

func RegisterCommand(name string, description string, handler CommandFunc) {
	commandRegistry[name] = Command{
		Name:        name,
		Description: description,
		Handler:     handler,
	}
}

func GetCommand(name string) (Command, bool) {
	cmd, exists := commandRegistry[name]
	return cmd, exists
}

func init() {
	RegisterCommand("help", "List commands and key bindings", helpCmd)
	RegisterCommand("tools", "Ask the assistant which tools it can use (Ctrl+T)", toolsCmd)
	RegisterCommand("clear", "Clear the chat view, keeping the conversation (Ctrl+L)", clearCmd)
	RegisterCommand("reset", "Forget the conversation so far (Ctrl+R)", resetCmd)
	RegisterCommand("status", "Show models, connection and history size", statusCmd)
	RegisterCommand("quit", "Exit (Ctrl+C)", quitCmd)
}

// handleCommand runs a slash command line such as "/help".
func (m *Model) handleCommand(line string) tea.Cmd {
	parts := strings.Fields(strings.TrimPrefix(line, "/"))
	if len(parts) == 0 {
		return nil
	}

	cmd, exists := GetCommand(strings.ToLower(parts[0]))
	if !exists {
		m.state.system(fmt.Sprintf("Unknown command /%s. Type /help for a list.", parts[0]))
		return nil
	}
	return cmd.Handler(m, parts[1:])
}

func helpCmd(m *Model, args []string) tea.Cmd {
	var names []string
	for name := range commandRegistry {
		names = append(names, name)
	}
	sort.Strings(names)

	m.state.system("Available commands:")
	for _, name := range names {
		m.state.system(fmt.Sprintf("  /%s - %s", name, commandRegistry[name].Description))
	}
	m.state.system("  image:<path|base64|data URL> - Describe an image; image: alone captures the screen (Ctrl+O)")
	return nil
}

func toolsCmd(m *Model, args []string) tea.Cmd {
	m.submitQuery(internal.TOOLS_HELP_QUERY)
	return nil
}

func clearCmd(m *Model, args []string) tea.Cmd {
	m.clearView()
	return nil
}

func resetCmd(m *Model, args []string) tea.Cmd {
	m.submitReset()
	return nil
}

// statusCmd asks the engine for its status on the work loop and prints it
// when the answer comes back.
func statusCmd(m *Model, args []string) tea.Cmd {
	st, br, conv, baseURL := m.state, m.bridge, m.conv, m.opts.BaseURL

	_, err := bridge.Submit(br, func(ctx context.Context) map[string]interface{} {
		return conv.Status()
	}, func(status map[string]interface{}) {
		if status == nil {
			st.system(taskFailed)
			return
		}
		connection := "not connected"
		if connected, _ := status["connected"].(bool); connected {
			connection = fmt.Sprintf("connected to %v", status["target"])
		}
		st.system(fmt.Sprintf("Engine: %s, history %v message(s), %d other task(s) pending",
			connection, status["historyLen"], br.Pending()))
		st.system(fmt.Sprintf("Models: primary %v, wrap-up %v", status["primaryModel"], status["wrapUpModel"]))
		if baseURL != "" {
			st.system("Backend: " + baseURL)
		}
	})
	if err != nil {
		m.scheduleFailed(err)
	}
	return nil
}

func quitCmd(m *Model, args []string) tea.Cmd {
	return tea.Quit
}
