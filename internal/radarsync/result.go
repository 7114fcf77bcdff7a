package radarsync

// Result aggregates the outcome of one sync run. Counters reflect only
// durably committed changes: they are zeroed when the final commit fails.
type Result struct {
	CompaniesCreated int      `json:"companies_created"`
	CompaniesUpdated int      `json:"companies_updated"`
	ContactsCreated  int      `json:"contacts_created"`
	ContactsUpdated  int      `json:"contacts_updated"`
	InvestorsCreated int      `json:"investors_created"`
	InvestorsUpdated int      `json:"investors_updated"`
	AuditsCreated    int      `json:"audits_created"`
	Errors           []string `json:"errors"`
}

// Merge folds a per-phase partial result into the aggregate.
func (r *Result) Merge(partial *Result) {
	r.CompaniesCreated += partial.CompaniesCreated
	r.CompaniesUpdated += partial.CompaniesUpdated
	r.ContactsCreated += partial.ContactsCreated
	r.ContactsUpdated += partial.ContactsUpdated
	r.InvestorsCreated += partial.InvestorsCreated
	r.InvestorsUpdated += partial.InvestorsUpdated
	r.AuditsCreated += partial.AuditsCreated
	r.Errors = append(r.Errors, partial.Errors...)
}

func (r *Result) zeroCounters() {
	r.CompaniesCreated = 0
	r.CompaniesUpdated = 0
	r.ContactsCreated = 0
	r.ContactsUpdated = 0
	r.InvestorsCreated = 0
	r.InvestorsUpdated = 0
	r.AuditsCreated = 0
}
