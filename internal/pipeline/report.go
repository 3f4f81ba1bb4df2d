package pipeline

import "github.com/spigell/resume-matcher/internal/profile"

// Result is the outcome of one resume: a candidate or an error.
type Result struct {
	Source    string
	Candidate *profile.CandidateProfile
	Err       error
}

func (r Result) OK() bool { return r.Err == nil && r.Candidate != nil }

// Report collects the results of a batch in input order.
type Report struct {
	Results []Result
}

// Candidates returns the successfully built profiles in input order.
func (r *Report) Candidates() []*profile.CandidateProfile {
	if r == nil {
		return nil
	}
	out := make([]*profile.CandidateProfile, 0, len(r.Results))
	for _, res := range r.Results {
		if res.OK() {
			out = append(out, res.Candidate)
		}
	}
	return out
}

// Failures returns the failed results in input order.
func (r *Report) Failures() []Result {
	if r == nil {
		return nil
	}
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Candidate returns the profile with the given id.
func (r *Report) Candidate(id string) (*profile.CandidateProfile, bool) {
	for _, c := range r.Candidates() {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}
