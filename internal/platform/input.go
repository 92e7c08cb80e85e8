package platform

type Status int

const (
	Continue Status = iota
	Quit
)

func (s Status) String() string {
	if s == Quit {
		return "quit"
	}
	return "continue"
}

type State int

const (
	Running State = iota
	Quitting
)

// Input turns window events into loop decisions. Closing the window or
// pressing Escape moves it to Quitting, which is terminal.
type Input struct {
	state State

	// OnKey sees every key-down that does not quit.
	OnKey func(key string)
	// OnResize sees surface size changes.
	OnResize func(w, h int)
}

func NewInput() *Input {
	return &Input{}
}

func (in *Input) State() State { return in.state }

func (in *Input) Poll(events []Event) Status {
	if in.state == Quitting {
		return Quit
	}
	for _, ev := range events {
		switch ev.Type {
		case EventClose:
			in.state = Quitting
		case EventKeyDown:
			if ev.Key == KeyEscape {
				in.state = Quitting
			} else if in.OnKey != nil {
				in.OnKey(ev.Key)
			}
		case EventResize:
			if in.OnResize != nil {
				in.OnResize(ev.Width, ev.Height)
			}
		}
		if in.state == Quitting {
			return Quit
		}
	}
	return Continue
}
