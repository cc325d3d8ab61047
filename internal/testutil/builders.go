// Package testutil provides testing utilities and helpers for the booking system.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/interpretek/booking-core/internal/domain/model"
)

// JobRequestBuilder provides a fluent interface for building CreateJobRequest objects for testing.
type JobRequestBuilder struct {
	req *model.CreateJobRequest
}

// NewJobRequest creates a new JobRequestBuilder with sensible defaults.
func NewJobRequest() *JobRequestBuilder {
	return &JobRequestBuilder{
		req: &model.CreateJobRequest{
			CustomerID:      uuid.NewString(),
			FromLanguage:    "swedish",
			ToLanguage:      "arabic",
			Certification:   model.CertificationNone,
			DurationMinutes: 60,
			ScheduledAt:     TestTime().Add(24 * time.Hour),
		},
	}
}

// WithCustomer sets the customer id.
func (b *JobRequestBuilder) WithCustomer(customerID string) *JobRequestBuilder {
	b.req.CustomerID = customerID
	return b
}

// WithLanguages sets the language pair.
func (b *JobRequestBuilder) WithLanguages(from, to string) *JobRequestBuilder {
	b.req.FromLanguage = from
	b.req.ToLanguage = to
	return b
}

// WithCertification sets the required certification level.
func (b *JobRequestBuilder) WithCertification(level model.CertificationLevel) *JobRequestBuilder {
	b.req.Certification = level
	return b
}

// WithOnSite marks the job as on-site in the given town.
func (b *JobRequestBuilder) WithOnSite(town string) *JobRequestBuilder {
	b.req.OnSite = true
	b.req.Town = town
	return b
}

// WithDuration sets the booked duration in minutes.
func (b *JobRequestBuilder) WithDuration(minutes int) *JobRequestBuilder {
	b.req.DurationMinutes = minutes
	return b
}

// WithScheduledAt sets the scheduled time.
func (b *JobRequestBuilder) WithScheduledAt(scheduledAt time.Time) *JobRequestBuilder {
	b.req.ScheduledAt = scheduledAt
	return b
}

// WithReference sets the customer booking reference.
func (b *JobRequestBuilder) WithReference(ref string) *JobRequestBuilder {
	b.req.Reference = &ref
	return b
}

// Build returns the constructed CreateJobRequest.
func (b *JobRequestBuilder) Build() *model.CreateJobRequest {
	return b.req
}

// JobBuilder provides a fluent interface for building Job objects for
// service-level tests that stub the repository.
type JobBuilder struct {
	job *model.Job
}

// NewJob creates a new JobBuilder for a pending phone job with sensible defaults.
func NewJob() *JobBuilder {
	now := TestTime()
	return &JobBuilder{
		job: &model.Job{
			ID:              uuid.NewString(),
			Status:          model.JobStatusPending,
			CustomerID:      uuid.NewString(),
			FromLanguage:    "swedish",
			ToLanguage:      "arabic",
			Certification:   model.CertificationNone,
			DurationMinutes: 60,
			ScheduledAt:     now.Add(24 * time.Hour),
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}
}

// WithID sets the job id.
func (b *JobBuilder) WithID(id string) *JobBuilder {
	b.job.ID = id
	return b
}

// WithStatus sets the lifecycle status.
func (b *JobBuilder) WithStatus(status model.JobStatus) *JobBuilder {
	b.job.Status = status
	return b
}

// WithCustomer sets the customer id.
func (b *JobBuilder) WithCustomer(customerID string) *JobBuilder {
	b.job.CustomerID = customerID
	return b
}

// WithTranslator assigns a translator to the job.
func (b *JobBuilder) WithTranslator(translatorID string) *JobBuilder {
	b.job.TranslatorID = &translatorID
	return b
}

// WithLanguages sets the language pair.
func (b *JobBuilder) WithLanguages(from, to string) *JobBuilder {
	b.job.FromLanguage = from
	b.job.ToLanguage = to
	return b
}

// WithCertification sets the required certification level.
func (b *JobBuilder) WithCertification(level model.CertificationLevel) *JobBuilder {
	b.job.Certification = level
	return b
}

// WithOnSite marks the job as on-site in the given town.
func (b *JobBuilder) WithOnSite(town string) *JobBuilder {
	b.job.OnSite = true
	b.job.Town = town
	return b
}

// WithScheduledAt sets the scheduled time.
func (b *JobBuilder) WithScheduledAt(scheduledAt time.Time) *JobBuilder {
	b.job.ScheduledAt = scheduledAt
	return b
}

// Assigned moves the job to assigned with the given translator.
func (b *JobBuilder) Assigned(translatorID string) *JobBuilder {
	b.job.Status = model.JobStatusAssigned
	b.job.TranslatorID = &translatorID
	return b
}

// InProgress moves the job to in_progress with the given translator.
func (b *JobBuilder) InProgress(translatorID string) *JobBuilder {
	b.job.Status = model.JobStatusInProgress
	b.job.TranslatorID = &translatorID
	return b
}

// Completed moves the job to completed with the given translator and session time.
func (b *JobBuilder) Completed(translatorID string, sessionMinutes int) *JobBuilder {
	b.job.Status = model.JobStatusCompleted
	b.job.TranslatorID = &translatorID
	b.job.SessionTime = &sessionMinutes
	return b
}

// Cancelled moves the job to cancelled and clears the assignment.
func (b *JobBuilder) Cancelled() *JobBuilder {
	b.job.Status = model.JobStatusCancelled
	b.job.TranslatorID = nil
	return b
}

// Build returns the constructed Job.
func (b *JobBuilder) Build() *model.Job {
	return b.job
}

// TranslatorBuilder provides a fluent interface for building Translator profiles.
type TranslatorBuilder struct {
	tr *model.Translator
}

// NewTranslator creates a new TranslatorBuilder with a phone-only profile
// that is eligible for the NewJob defaults.
func NewTranslator() *TranslatorBuilder {
	return &TranslatorBuilder{
		tr: &model.Translator{
			ID:            uuid.NewString(),
			Name:          "Test Translator",
			Pairs:         []model.LanguagePair{{From: "swedish", To: "arabic"}},
			Certification: model.CertificationNone,
			AcceptsPhone:  true,
		},
	}
}

// WithID sets the translator id.
func (b *TranslatorBuilder) WithID(id string) *TranslatorBuilder {
	b.tr.ID = id
	return b
}

// WithName sets the translator name.
func (b *TranslatorBuilder) WithName(name string) *TranslatorBuilder {
	b.tr.Name = name
	return b
}

// WithPairs replaces the language pairs.
func (b *TranslatorBuilder) WithPairs(pairs ...model.LanguagePair) *TranslatorBuilder {
	b.tr.Pairs = pairs
	return b
}

// WithCertification sets the held certification level.
func (b *TranslatorBuilder) WithCertification(level model.CertificationLevel) *TranslatorBuilder {
	b.tr.Certification = level
	return b
}

// WithTown sets the home town and enables on-site work there.
func (b *TranslatorBuilder) WithTown(town string) *TranslatorBuilder {
	b.tr.Town = town
	b.tr.AcceptsOnSite = true
	return b
}

// WithPushToken sets the push notification token.
func (b *TranslatorBuilder) WithPushToken(token string) *TranslatorBuilder {
	b.tr.PushToken = &token
	return b
}

// WithPhoneNumber sets the SMS phone number.
func (b *TranslatorBuilder) WithPhoneNumber(phone string) *TranslatorBuilder {
	b.tr.PhoneNumber = &phone
	return b
}

// Build returns the constructed Translator.
func (b *TranslatorBuilder) Build() *model.Translator {
	return b.tr
}

// CustomerBuilder provides a fluent interface for building Customer identities.
type CustomerBuilder struct {
	c *model.Customer
}

// NewCustomer creates a new CustomerBuilder with defaults.
func NewCustomer() *CustomerBuilder {
	return &CustomerBuilder{
		c: &model.Customer{
			ID:    uuid.NewString(),
			Name:  "Test Customer",
			Email: "customer@example.com",
		},
	}
}

// WithID sets the customer id.
func (b *CustomerBuilder) WithID(id string) *CustomerBuilder {
	b.c.ID = id
	return b
}

// WithPushToken sets the push notification token.
func (b *CustomerBuilder) WithPushToken(token string) *CustomerBuilder {
	b.c.PushToken = &token
	return b
}

// WithPhoneNumber sets the SMS phone number.
func (b *CustomerBuilder) WithPhoneNumber(phone string) *CustomerBuilder {
	b.c.PhoneNumber = &phone
	return b
}

// Build returns the constructed Customer.
func (b *CustomerBuilder) Build() *model.Customer {
	return b.c
}
