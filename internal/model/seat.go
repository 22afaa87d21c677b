package model

// SeatAssignment 좌석 추첨 결과
type SeatAssignment struct {
	Name        string `json:"name"`
	GroupNumber int    `json:"groupNumber"`
	Cell        string `json:"cell"`
}

// Seat 좌석 셀 하나
type Seat struct {
	Cell        string `json:"cell"`
	GroupNumber int    `json:"groupNumber"`
	Occupant    string `json:"occupant,omitempty"`
}

// SeatMap 좌석표 스냅샷
type SeatMap struct {
	TotalMembers    int    `json:"totalMembers"`
	MembersPerGroup int    `json:"membersPerGroup"`
	Range           string `json:"range"`
	Seats           []Seat `json:"seats"`
	Filled          int    `json:"filled"`
}
