package types

// PathwayItem is a chosen job or major.
type PathwayItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PathwaySelection holds at most one chosen job and one chosen major.
type PathwaySelection struct {
	Job   *PathwayItem `json:"job,omitempty"`
	Major *PathwayItem `json:"major,omitempty"`
}
