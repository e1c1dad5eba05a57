package models

// ShareRange selects how far back a progress export reaches.
type ShareRange string

const (
	ShareToday      ShareRange = "today"
	ShareLast7Days  ShareRange = "last7"
	ShareLast30Days ShareRange = "last30"
	ShareFull75Days ShareRange = "full75"
)

// Days returns the inclusive span of the range in days.
func (r ShareRange) Days() int {
	switch r {
	case ShareToday:
		return 1
	case ShareLast7Days:
		return 7
	case ShareLast30Days:
		return 30
	case ShareFull75Days:
		return 75
	default:
		return 1
	}
}

// Label returns the display name of the range.
func (r ShareRange) Label() string {
	switch r {
	case ShareToday:
		return "Today"
	case ShareLast7Days:
		return "Last 7 Days"
	case ShareLast30Days:
		return "Last 30 Days"
	case ShareFull75Days:
		return "Full 75 Days"
	default:
		return string(r)
	}
}
