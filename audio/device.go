package audio

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// SelectDevice presents an interactive device picker on the terminal and
// returns the chosen device. With a single device it returns that device
// without prompting.
func SelectDevice(ctx Context) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	switch len(devices) {
	case 0:
		return nil, ErrNoDevice
	case 1:
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	p := picker{names: make([]string, len(devices))}
	for i, d := range devices {
		p.names[i] = d.Name
	}
	p.render(false)

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		switch p.key(buf[:n]) {
		case pickerDone:
			fmt.Print("\r\n")
			return &devices[p.cursor], nil
		case pickerCancel:
			fmt.Print("\r\n")
			return nil, fmt.Errorf("device selection cancelled")
		}
		p.render(true)
	}
}

type pickerResult int

const (
	pickerContinue pickerResult = iota
	pickerDone
	pickerCancel
)

type picker struct {
	names  []string
	cursor int
}

func (p *picker) key(b []byte) pickerResult {
	switch {
	case len(b) == 1 && b[0] == '\r':
		return pickerDone
	case len(b) == 1 && (b[0] == 3 || b[0] == 'q'): // ctrl+c
		return pickerCancel
	case len(b) == 1 && b[0] == 'j', len(b) == 3 && b[0] == 0x1b && b[2] == 'B':
		if p.cursor < len(p.names)-1 {
			p.cursor++
		}
	case len(b) == 1 && b[0] == 'k', len(b) == 3 && b[0] == 0x1b && b[2] == 'A':
		if p.cursor > 0 {
			p.cursor--
		}
	}
	return pickerContinue
}

func (p *picker) render(redraw bool) {
	if redraw {
		fmt.Printf("\x1b[%dA", len(p.names)+2)
	}
	fmt.Print("\r\x1b[J")
	fmt.Print("Select microphone (↑/↓, Enter to confirm):\r\n\r\n")
	for i, name := range p.names {
		if i == p.cursor {
			fmt.Printf("  \x1b[1;36m▶ %s\x1b[0m\r\n", name)
		} else {
			fmt.Printf("    %s\r\n", name)
		}
	}
}
