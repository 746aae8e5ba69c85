package install

// State is a step of the install pipeline. States only move forward;
// Failed and Done are terminal.
type State int

const (
	Idle State = iota
	Downloading
	Extracting
	Unpacking
	Installing
	Done
	Failed
)

var stateNames = [...]string{
	Idle:        "idle",
	Downloading: "downloading",
	Extracting:  "extracting",
	Unpacking:   "unpacking",
	Installing:  "installing",
	Done:        "done",
	Failed:      "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == Done || s == Failed
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
