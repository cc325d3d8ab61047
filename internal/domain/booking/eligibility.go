package booking

import (
	"strings"

	"github.com/interpretek/booking-core/internal/domain/model"
)

// Eligible reports whether the translator satisfies all of the job's
// requirements: a matching language pair, a covering certification level,
// and, for on-site jobs, the right town and willingness to travel.
// Phone jobs only require the translator to take phone work.
func Eligible(tr *model.Translator, job *model.Job) bool {
	if tr == nil || job == nil {
		return false
	}

	if !pairMatch(tr.Pairs, job.FromLanguage, job.ToLanguage) {
		return false
	}

	if !tr.Certification.Covers(job.Certification) {
		return false
	}

	if job.OnSite {
		return tr.AcceptsOnSite && strings.EqualFold(tr.Town, job.Town)
	}
	return tr.AcceptsPhone
}

// EligibleTranslators filters the given translators down to those eligible
// for the job, preserving input order.
func EligibleTranslators(trs []*model.Translator, job *model.Job) []*model.Translator {
	var out []*model.Translator
	for _, tr := range trs {
		if Eligible(tr, job) {
			out = append(out, tr)
		}
	}
	return out
}

// PotentialJobs filters pending jobs down to those the translator may claim,
// preserving input order. Callers pass jobs already sorted by scheduled time.
func PotentialJobs(tr *model.Translator, jobs []*model.Job) []*model.Job {
	var out []*model.Job
	for _, job := range jobs {
		if job.Status != model.JobStatusPending {
			continue
		}
		if Eligible(tr, job) {
			out = append(out, job)
		}
	}
	return out
}

func pairMatch(pairs []model.LanguagePair, from, to string) bool {
	for _, p := range pairs {
		if p.Matches(from, to) {
			return true
		}
	}
	return false
}
