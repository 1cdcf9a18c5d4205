package client

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleView prints room changes as lines of text.
type ConsoleView struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleView(out io.Writer) *ConsoleView {
	return &ConsoleView{out: out}
}

func (v *ConsoleView) printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fmt.Fprintf(v.out, format+"\n", args...)
}

func (v *ConsoleView) SetRoom(roomId string) {
	v.printf("room: %s", roomId)
}

func (v *ConsoleView) SetStatus(status Status) {
	v.printf("status: %s", status)
}

func (v *ConsoleView) AddChat(name, text string) {
	v.printf("%s: %s", name, text)
}
