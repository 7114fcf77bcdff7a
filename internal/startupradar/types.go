package startupradar

// Remote payload shapes, decoded at the client boundary so the sync layer
// never handles raw JSON maps. Zero values mean the field was absent upstream.

type Startup struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Website     string  `json:"website"`
	Sector      string  `json:"sector"`
	Description string  `json:"description"`
	Strategy    string  `json:"strategy"`
	Amount      float64 `json:"amount"`
	Series      string  `json:"series"`
	Status      string  `json:"status"`
}

type Investor struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Website            string  `json:"website"`
	StartupsCount      int     `json:"startups_count"`
	TotalFundingAmount float64 `json:"total_funding_amount"`
}

type Contact struct {
	ID              int64  `json:"id"`
	StartupID       *int64 `json:"startup_id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	EmailStatus     string `json:"email_status"`
	Title           string `json:"title"`
	LinkedinURL     string `json:"linkedin_url"`
	IsDecisionMaker *bool  `json:"is_decision_maker"`
}

type Analysis struct {
	Positioning      string   `json:"positioning"`
	ValueProposition string   `json:"value_proposition"`
	MessagingScore   float64  `json:"messaging_score"`
	Differentiators  []string `json:"differentiators"`
	TargetAudience   string   `json:"target_audience"`
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	Recommendations  []string `json:"recommendations"`
}

type DetailedAudit struct {
	Status string       `json:"status"`
	Result *AuditResult `json:"result"`
}

type AuditResult struct {
	ExecutiveSummary ExecutiveSummary       `json:"executive_summary"`
	Scoring          map[string]interface{} `json:"scoring"`
}

type ExecutiveSummary struct {
	TotalScore           float64  `json:"total_score"`
	ScoreInterpretation  string   `json:"score_interpretation"`
	KeyFindings          []string `json:"key_findings"`
	TopPriority          string   `json:"top_priority"`
	GapsCount            int      `json:"gaps_count"`
	RecommendationsCount int      `json:"recommendations_count"`
}
