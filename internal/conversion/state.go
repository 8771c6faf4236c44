package conversion

type State int

const (
	StateIdle State = iota
	StateValidating
	StateBuilding
	StateGenerating
	StateExtracting
	StateContextUpdating
	StateDone
	StateError
)

var stateNames = [...]string{
	StateIdle:            "idle",
	StateValidating:      "validating",
	StateBuilding:        "building",
	StateGenerating:      "generating",
	StateExtracting:      "extracting",
	StateContextUpdating: "context_updating",
	StateDone:            "done",
	StateError:           "error",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
