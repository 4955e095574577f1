package projection

// Summary holds the headline stats attached to roster players.
type Summary struct {
	HR          *float64 `json:"hr,omitempty"`
	RBI         *float64 `json:"rbi,omitempty"`
	SB          *float64 `json:"sb,omitempty"`
	AVG         *float64 `json:"avg,omitempty"`
	R           *float64 `json:"r,omitempty"`
	ERA         *float64 `json:"era,omitempty"`
	WHIP        *float64 `json:"whip,omitempty"`
	W           *float64 `json:"w,omitempty"`
	SV          *float64 `json:"sv,omitempty"`
	DollarValue *float64 `json:"dollar_value,omitempty"`
}

// Summarize reads the provider's "$STAT$" columns, falling back to bare
// stat names. The overall dollar value lives under "$".
func Summarize(r Record) Summary {
	return Summary{
		HR:          stat(r, "HR"),
		RBI:         stat(r, "RBI"),
		SB:          stat(r, "SB"),
		AVG:         stat(r, "AVG"),
		R:           stat(r, "R"),
		ERA:         stat(r, "ERA"),
		WHIP:        stat(r, "WHIP"),
		W:           stat(r, "W"),
		SV:          stat(r, "SV"),
		DollarValue: value(r, "$"),
	}
}

func stat(r Record, name string) *float64 {
	if v := value(r, "$"+name+"$"); v != nil {
		return v
	}
	return value(r, name)
}

func value(r Record, key string) *float64 {
	v, ok := r.Float(key)
	if !ok {
		return nil
	}
	return &v
}
