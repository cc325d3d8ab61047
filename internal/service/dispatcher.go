package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/interpretek/booking-core/internal/core"
	"github.com/interpretek/booking-core/internal/domain/booking"
	"github.com/interpretek/booking-core/internal/domain/model"
	"github.com/interpretek/booking-core/internal/notify"
	"github.com/interpretek/booking-core/internal/observability/metrics"
	"github.com/interpretek/booking-core/internal/observability/statsd"
)

// AvailabilityChannel is the pub/sub channel new pending jobs are announced on.
const AvailabilityChannel = "booking.jobs.pending"

const (
	defaultMaxInFlight    = 8
	defaultAttemptTimeout = 5 * time.Second
	defaultSMSThrottleTTL = 10 * time.Minute
)

// NotificationDispatcherOptions groups dependencies for NotificationDispatcher.
type NotificationDispatcherOptions struct {
	Events    core.NotificationEventRepository // Required: delivery audit trail
	Directory core.UserDirectory               // Required: recipient resolution
	Push      notify.PushSender                // Optional: push channel
	SMS       notify.SMSSender                 // Optional: sms channel
	Cache     core.CacheRepository             // Optional: throttling and availability publish
	Logger    *slog.Logger                     // Optional: structured logger
	Metrics   statsd.Sink                      // Optional: delivery metrics
	// MaxInFlight bounds concurrent deliveries during fan-out.
	MaxInFlight int
	// AttemptTimeout bounds a single delivery attempt.
	AttemptTimeout time.Duration
	// SMSThrottleTTL is the minimum interval between SMS resends per job.
	SMSThrottleTTL time.Duration
}

// NotificationDispatcher fans booking events out to the configured channels.
//
// Delivery is best effort: a failed channel is recorded and logged but never
// propagates into the booking operation that triggered it, and a failure on
// one channel does not stop delivery on the others.
type NotificationDispatcher struct {
	events         core.NotificationEventRepository
	directory      core.UserDirectory
	push           notify.PushSender
	sms            notify.SMSSender
	cache          core.CacheRepository
	logger         *slog.Logger
	metrics        statsd.Sink
	maxInFlight    int
	attemptTimeout time.Duration
	smsThrottleTTL time.Duration
}

// NewNotificationDispatcher constructs a new NotificationDispatcher.
func NewNotificationDispatcher(opts NotificationDispatcherOptions) (*NotificationDispatcher, error) {
	if opts.Events == nil {
		return nil, errors.New("NotificationEventRepository is required")
	}
	if opts.Directory == nil {
		return nil, errors.New("UserDirectory is required")
	}

	maxInFlight := opts.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	attemptTimeout := opts.AttemptTimeout
	if attemptTimeout <= 0 {
		attemptTimeout = defaultAttemptTimeout
	}
	throttleTTL := opts.SMSThrottleTTL
	if throttleTTL <= 0 {
		throttleTTL = defaultSMSThrottleTTL
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "notification_dispatcher")
	}

	return &NotificationDispatcher{
		events:         opts.Events,
		directory:      opts.Directory,
		push:           opts.Push,
		sms:            opts.SMS,
		cache:          opts.Cache,
		logger:         logger,
		metrics:        opts.Metrics,
		maxInFlight:    maxInFlight,
		attemptTimeout: attemptTimeout,
		smsThrottleTTL: throttleTTL,
	}, nil
}

// MustNewNotificationDispatcher constructs a new NotificationDispatcher and panics on error.
func MustNewNotificationDispatcher(opts NotificationDispatcherOptions) *NotificationDispatcher {
	d, err := NewNotificationDispatcher(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create NotificationDispatcher: %v", err))
	}
	return d
}

// AnnouncePending broadcasts a newly pending job: a pub/sub publication for
// listeners plus a push fan-out to every eligible translator.
func (d *NotificationDispatcher) AnnouncePending(ctx context.Context, job *model.Job) {
	if job == nil {
		return
	}

	d.publishAvailability(ctx, job)

	if d.push == nil {
		return
	}

	translators, err := d.directory.ListTranslators(ctx)
	if err != nil {
		d.logError(ctx, "list translators for announcement", err, "job_id", job.ID)
		return
	}
	eligible := booking.EligibleTranslators(translators, job)
	if len(eligible) == 0 {
		if d.logger != nil {
			d.logger.DebugContext(ctx, "no eligible translators for job", "job_id", job.ID)
		}
		return
	}

	payload := d.payloadFor(job, notify.EventJobCreated, "")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.maxInFlight)
	for _, tr := range eligible {
		if tr.PushToken == nil || strings.TrimSpace(*tr.PushToken) == "" {
			continue
		}
		token := *tr.PushToken
		recipient := tr.ID
		g.Go(func() error {
			d.deliverPush(gctx, job.ID, recipient, token, payload)
			return nil
		})
	}
	// Delivery errors are recorded per recipient, never returned.
	_ = g.Wait()
}

// NotifyCustomer delivers a lifecycle event to the job's customer on every
// channel the customer profile supports.
func (d *NotificationDispatcher) NotifyCustomer(ctx context.Context, job *model.Job, event, message string) {
	if job == nil {
		return
	}
	customer, err := d.directory.GetCustomer(ctx, job.CustomerID)
	if err != nil {
		d.logError(ctx, "resolve customer for notification", err, "job_id", job.ID, "event", event)
		return
	}

	payload := d.payloadFor(job, event, message)

	var wg sync.WaitGroup
	if d.push != nil && customer.PushToken != nil && strings.TrimSpace(*customer.PushToken) != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.deliverPush(ctx, job.ID, customer.ID, *customer.PushToken, payload)
		}()
	}
	if d.sms != nil && customer.PhoneNumber != nil && strings.TrimSpace(*customer.PhoneNumber) != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.deliverSMS(ctx, job.ID, customer.ID, *customer.PhoneNumber, payload)
		}()
	}
	wg.Wait()
}

// NotifyTranslator delivers a lifecycle event to a translator on every channel
// their profile supports.
func (d *NotificationDispatcher) NotifyTranslator(ctx context.Context, job *model.Job, translatorID, event, message string) {
	if job == nil || translatorID == "" {
		return
	}
	tr, err := d.directory.GetTranslator(ctx, translatorID)
	if err != nil {
		d.logError(ctx, "resolve translator for notification", err, "job_id", job.ID, "event", event)
		return
	}

	payload := d.payloadFor(job, event, message)

	var wg sync.WaitGroup
	if d.push != nil && tr.PushToken != nil && strings.TrimSpace(*tr.PushToken) != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.deliverPush(ctx, job.ID, tr.ID, *tr.PushToken, payload)
		}()
	}
	if d.sms != nil && tr.PhoneNumber != nil && strings.TrimSpace(*tr.PhoneNumber) != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.deliverSMS(ctx, job.ID, tr.ID, *tr.PhoneNumber, payload)
		}()
	}
	wg.Wait()
}

// ResendPush re-announces a still-pending job to every eligible translator.
// It returns how many pushes were attempted.
func (d *NotificationDispatcher) ResendPush(ctx context.Context, job *model.Job) (int, error) {
	if job == nil {
		return 0, errors.New("job is required")
	}
	if d.push == nil {
		return 0, errors.New("push channel is not configured")
	}

	translators, err := d.directory.ListTranslators(ctx)
	if err != nil {
		return 0, fmt.Errorf("list translators: %w", err)
	}
	eligible := booking.EligibleTranslators(translators, job)

	payload := d.payloadFor(job, notify.EventJobCreated, "")

	attempted := 0
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.maxInFlight)
	for _, tr := range eligible {
		if tr.PushToken == nil || strings.TrimSpace(*tr.PushToken) == "" {
			continue
		}
		attempted++
		token := *tr.PushToken
		recipient := tr.ID
		g.Go(func() error {
			d.deliverPush(gctx, job.ID, recipient, token, payload)
			return nil
		})
	}
	_ = g.Wait()
	return attempted, nil
}

// ResendSMS re-sends the booking SMS for a job, throttled per job so repeated
// requests cannot hammer the gateway. The result reports delivery without an
// error so callers can relay the reason to the requester.
func (d *NotificationDispatcher) ResendSMS(ctx context.Context, job *model.Job, message string) (notify.SMSResult, error) {
	if job == nil {
		return notify.SMSResult{}, errors.New("job is required")
	}
	if d.sms == nil {
		return notify.SMSResult{}, errors.New("sms channel is not configured")
	}

	recipientID, phone, err := d.smsRecipient(ctx, job)
	if err != nil {
		return notify.SMSResult{}, err
	}
	if phone == "" {
		return notify.SMSResult{Delivered: false, Reason: "recipient has no phone number"}, nil
	}

	if d.cache != nil {
		key := "booking:sms:" + job.ID
		set, err := d.cache.SetIfNotExists(ctx, key, []byte("1"), d.smsThrottleTTL)
		if err != nil {
			d.logError(ctx, "sms throttle check", err, "job_id", job.ID)
		} else if !set {
			return notify.SMSResult{Delivered: false, Reason: "sms recently sent, try again later"}, nil
		}
	}

	payload := d.payloadFor(job, notify.EventJobAssigned, message)
	if sendErr := d.deliverSMS(ctx, job.ID, recipientID, phone, payload); sendErr != nil {
		return notify.SMSResult{Delivered: false, Reason: sendErr.Error()}, nil
	}
	return notify.SMSResult{Delivered: true}, nil
}

// smsRecipient picks the assigned translator when one exists, the customer otherwise.
func (d *NotificationDispatcher) smsRecipient(ctx context.Context, job *model.Job) (id, phone string, err error) {
	if job.TranslatorID != nil && *job.TranslatorID != "" {
		tr, err := d.directory.GetTranslator(ctx, *job.TranslatorID)
		if err != nil {
			return "", "", fmt.Errorf("resolve translator: %w", err)
		}
		if tr.PhoneNumber != nil {
			return tr.ID, strings.TrimSpace(*tr.PhoneNumber), nil
		}
		return tr.ID, "", nil
	}

	customer, err := d.directory.GetCustomer(ctx, job.CustomerID)
	if err != nil {
		return "", "", fmt.Errorf("resolve customer: %w", err)
	}
	if customer.PhoneNumber != nil {
		return customer.ID, strings.TrimSpace(*customer.PhoneNumber), nil
	}
	return customer.ID, "", nil
}

func (d *NotificationDispatcher) deliverPush(ctx context.Context, jobID, recipient, token string, payload notify.JobEventPayload) {
	start := time.Now()
	attemptCtx, cancel := context.WithTimeout(ctx, d.attemptTimeout)
	defer cancel()

	err := d.push.SendPush(attemptCtx, token, payload)
	d.recordDelivery(ctx, jobID, model.ChannelPush, recipient, payload.Event, err, time.Since(start))
}

func (d *NotificationDispatcher) deliverSMS(ctx context.Context, jobID, recipient, phone string, payload notify.JobEventPayload) error {
	start := time.Now()
	attemptCtx, cancel := context.WithTimeout(ctx, d.attemptTimeout)
	defer cancel()

	err := d.sms.SendSMS(attemptCtx, phone, payload)
	d.recordDelivery(ctx, jobID, model.ChannelSMS, recipient, payload.Event, err, time.Since(start))
	return err
}

// recordDelivery writes the audit record and metric for one attempt.
func (d *NotificationDispatcher) recordDelivery(
	ctx context.Context,
	jobID string,
	channel model.NotificationChannel,
	recipient, event string,
	deliveryErr error,
	elapsed time.Duration,
) {
	outcome := model.OutcomeDelivered
	result := metrics.ResultSuccess
	var detail *string
	if deliveryErr != nil {
		outcome = model.OutcomeFailed
		result = metrics.ResultError
		msg := deliveryErr.Error()
		detail = &msg
		d.logError(ctx, "notification delivery failed", deliveryErr,
			"job_id", jobID, "channel", channel, "recipient", recipient, "event", event)
	}

	metrics.EmitDelivery(d.metrics, metrics.DeliveryMetric{
		Channel:  string(channel),
		Event:    event,
		Result:   result,
		Duration: elapsed,
	})

	record := &model.NotificationEvent{
		JobID:     jobID,
		Channel:   channel,
		Recipient: recipient,
		Event:     event,
		Outcome:   outcome,
		Detail:    detail,
	}
	if err := d.events.Record(ctx, record); err != nil {
		d.logError(ctx, "record notification event", err, "job_id", jobID, "channel", channel)
	}
}

func (d *NotificationDispatcher) publishAvailability(ctx context.Context, job *model.Job) {
	if d.cache == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"job_id":        job.ID,
		"from_language": job.FromLanguage,
		"to_language":   job.ToLanguage,
		"scheduled_at":  job.ScheduledAt,
		"on_site":       job.OnSite,
	})
	if err != nil {
		d.logError(ctx, "encode availability payload", err, "job_id", job.ID)
		return
	}
	if err := d.cache.Publish(ctx, AvailabilityChannel, payload); err != nil {
		d.logError(ctx, "publish job availability", err, "job_id", job.ID)
	}
}

func (d *NotificationDispatcher) payloadFor(job *model.Job, event, message string) notify.JobEventPayload {
	payload := notify.JobEventPayload{
		Event:         event,
		JobID:         job.ID,
		CustomerID:    job.CustomerID,
		FromLanguage:  job.FromLanguage,
		ToLanguage:    job.ToLanguage,
		Town:          job.Town,
		OnSite:        job.OnSite,
		Certification: string(job.Certification),
		ScheduledAt:   job.ScheduledAt,
		Message:       message,
		OccurredAt:    time.Now().UTC(),
	}
	if job.TranslatorID != nil {
		payload.TranslatorID = *job.TranslatorID
	}
	if job.Reference != nil {
		payload.Metadata = map[string]string{"reference": *job.Reference}
	}
	return payload
}

func (d *NotificationDispatcher) logError(ctx context.Context, msg string, err error, args ...any) {
	if d.logger == nil {
		return
	}
	d.logger.ErrorContext(ctx, msg, append(args, "error", err)...)
}
