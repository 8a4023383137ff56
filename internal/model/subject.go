package model

// SubjectOverview describes a canonical subject for the study menu.
type SubjectOverview struct {
	Name      string  `json:"name"`
	Weight    float64 `json:"weight"`
	Quota     int     `json:"quota"`
	Available int     `json:"available"`
}

// SubjectStat is the accuracy of a user on one subject.
type SubjectStat struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}
