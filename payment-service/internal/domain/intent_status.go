package domain

type IntentStatus string

const (
	IntentStatusCreated   IntentStatus = "created"
	IntentStatusCompleted IntentStatus = "completed"
)

var validNext = map[IntentStatus]map[IntentStatus]bool{
	IntentStatusCreated:   {IntentStatusCompleted: true},
	IntentStatusCompleted: {},
}

func CanTransition(from, to IntentStatus) bool {
	return validNext[from][to]
}

func (s IntentStatus) IsTerminal() bool {
	return len(validNext[s]) == 0
}

func (s IntentStatus) String() string {
	return string(s)
}
