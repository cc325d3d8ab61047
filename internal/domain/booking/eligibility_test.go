package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/interpretek/booking-core/internal/domain/model"
)

func phoneJob() *model.Job {
	return &model.Job{
		ID:            "job-1",
		Status:        model.JobStatusPending,
		FromLanguage:  "swedish",
		ToLanguage:    "arabic",
		Certification: model.CertificationCertified,
		ScheduledAt:   time.Now().Add(24 * time.Hour),
	}
}

func onSiteJob(town string) *model.Job {
	j := phoneJob()
	j.OnSite = true
	j.Town = town
	return j
}

func phoneTranslator() *model.Translator {
	return &model.Translator{
		ID:            "tr-1",
		Pairs:         []model.LanguagePair{{From: "swedish", To: "arabic"}},
		Certification: model.CertificationHealth,
		AcceptsPhone:  true,
	}
}

func TestEligible(t *testing.T) {
	t.Run("matching phone translator", func(t *testing.T) {
		assert.True(t, Eligible(phoneTranslator(), phoneJob()))
	})

	t.Run("reversed pair still matches", func(t *testing.T) {
		tr := phoneTranslator()
		tr.Pairs = []model.LanguagePair{{From: "arabic", To: "swedish"}}
		assert.True(t, Eligible(tr, phoneJob()))
	})

	t.Run("wrong language pair", func(t *testing.T) {
		tr := phoneTranslator()
		tr.Pairs = []model.LanguagePair{{From: "swedish", To: "somali"}}
		assert.False(t, Eligible(tr, phoneJob()))
	})

	t.Run("insufficient certification", func(t *testing.T) {
		tr := phoneTranslator()
		tr.Certification = model.CertificationNone
		assert.False(t, Eligible(tr, phoneJob()))
	})

	t.Run("law covers health requirement", func(t *testing.T) {
		tr := phoneTranslator()
		tr.Certification = model.CertificationLaw
		job := phoneJob()
		job.Certification = model.CertificationHealth
		assert.True(t, Eligible(tr, job))
	})

	t.Run("phone job needs phone acceptance", func(t *testing.T) {
		tr := phoneTranslator()
		tr.AcceptsPhone = false
		assert.False(t, Eligible(tr, phoneJob()))
	})

	t.Run("on-site job requires same town", func(t *testing.T) {
		tr := phoneTranslator()
		tr.AcceptsOnSite = true
		tr.Town = "Stockholm"
		assert.True(t, Eligible(tr, onSiteJob("stockholm")))
		assert.False(t, Eligible(tr, onSiteJob("Malmo")))
	})

	t.Run("on-site job requires travel acceptance", func(t *testing.T) {
		tr := phoneTranslator()
		tr.Town = "Stockholm"
		tr.AcceptsOnSite = false
		assert.False(t, Eligible(tr, onSiteJob("Stockholm")))
	})

	t.Run("nil inputs", func(t *testing.T) {
		assert.False(t, Eligible(nil, phoneJob()))
		assert.False(t, Eligible(phoneTranslator(), nil))
	})
}

func TestPotentialJobs(t *testing.T) {
	tr := phoneTranslator()

	claimed := phoneJob()
	claimed.ID = "job-2"
	claimed.Status = model.JobStatusAssigned

	wrongPair := phoneJob()
	wrongPair.ID = "job-3"
	wrongPair.ToLanguage = "somali"

	open := phoneJob()

	got := PotentialJobs(tr, []*model.Job{claimed, wrongPair, open})
	assert.Len(t, got, 1)
	assert.Equal(t, open.ID, got[0].ID)
}

func TestEligibleTranslators(t *testing.T) {
	job := phoneJob()

	eligible := phoneTranslator()
	ineligible := phoneTranslator()
	ineligible.ID = "tr-2"
	ineligible.AcceptsPhone = false

	got := EligibleTranslators([]*model.Translator{eligible, ineligible}, job)
	assert.Len(t, got, 1)
	assert.Equal(t, "tr-1", got[0].ID)
}
