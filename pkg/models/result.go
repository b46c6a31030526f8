package models

// ReputationResult is the itemised outcome of scoring one IP address.
//
// The library does not decide whether an IP is "good" or "bad". It returns
// the score and the matches that produced it so the integrating application
// can apply its own thresholds.
type ReputationResult struct {
	IP string `json:"ip"`

	// Score is the sum of all matched rule points. Zero for blacklisted IPs.
	Score int `json:"score"`

	// Blacklisted is set when the IP short-circuited on the blacklist; no
	// geolocation lookup happened in that case.
	Blacklisted bool `json:"blacklisted"`

	// Matches lists every table entry that contributed to Score.
	Matches []Match `json:"matches"`
}

// Match is a single rule table entry that fired during scoring.
type Match struct {
	Attribute string `json:"attribute"`

	// Value is the matched table key; AnyValue for wildcard entries.
	Value string `json:"value"`

	Points int `json:"points"`
}
