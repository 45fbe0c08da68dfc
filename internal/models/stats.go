package models

// DashboardStats summarises reports for the admin dashboard.
type DashboardStats struct {
	Total      int            `json:"total"`
	NewToday   int            `json:"new_today"`
	Submitted  int            `json:"submitted"`
	InProgress int            `json:"in_progress"`
	Resolved   int            `json:"resolved"`
	ByTag      map[string]int `json:"by_tag"`
	ByZone     []ZoneCount    `json:"by_zone"`
}

// ZoneCount is the number of reports sharing one location label.
type ZoneCount struct {
	Zone  string `db:"zone" json:"zone"`
	Count int    `db:"count" json:"count"`
}

// CountRow is a grouped count used to assemble the dashboard.
type CountRow struct {
	Key   string `db:"key"`
	Count int    `db:"count"`
}
