package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/interpretek/booking-core/internal/core"
	"github.com/interpretek/booking-core/internal/domain/model"
	"github.com/interpretek/booking-core/internal/mocks"
	"github.com/interpretek/booking-core/internal/notify"
	"github.com/interpretek/booking-core/internal/testutil"
)

// memoryCache is an in-memory CacheRepository for dispatcher tests.
type memoryCache struct {
	mu        sync.Mutex
	values    map[string][]byte
	published []publication
}

type publication struct {
	channel string
	payload []byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key], nil
}

func (c *memoryCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	delete(c.values, key)
	return ok, nil
}

func (c *memoryCache) SetIfNotExists(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; ok {
		return false, nil
	}
	c.values[key] = value
	return true, nil
}

func (c *memoryCache) Publish(_ context.Context, channel string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, publication{channel: channel, payload: payload})
	return nil
}

func (c *memoryCache) Health(_ context.Context) error { return nil }

func (c *memoryCache) publications() []publication {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]publication(nil), c.published...)
}

var _ core.CacheRepository = (*memoryCache)(nil)

// recordingEvents captures notification event records; Record runs from
// delivery goroutines, so access is mutex guarded.
type recordingEvents struct {
	core.NotificationEventRepository

	mu      sync.Mutex
	records []*model.NotificationEvent
}

func (r *recordingEvents) Record(_ context.Context, event *model.NotificationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, event)
	return nil
}

func (r *recordingEvents) byChannel(channel model.NotificationChannel) []*model.NotificationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.NotificationEvent
	for _, rec := range r.records {
		if rec.Channel == channel {
			out = append(out, rec)
		}
	}
	return out
}

func TestNewNotificationDispatcher(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	events := mocks.NewMockNotificationEventRepository(ctrl)
	directory := mocks.NewMockUserDirectory(ctrl)

	t.Run("success with defaults", func(t *testing.T) {
		d, err := NewNotificationDispatcher(NotificationDispatcherOptions{
			Events:    events,
			Directory: directory,
		})
		require.NoError(t, err)
		assert.Equal(t, defaultMaxInFlight, d.maxInFlight)
		assert.Equal(t, defaultAttemptTimeout, d.attemptTimeout)
		assert.Equal(t, defaultSMSThrottleTTL, d.smsThrottleTTL)
	})

	t.Run("missing events repo", func(t *testing.T) {
		_, err := NewNotificationDispatcher(NotificationDispatcherOptions{Directory: directory})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NotificationEventRepository is required")
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := NewNotificationDispatcher(NotificationDispatcherOptions{Events: events})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "UserDirectory is required")
	})
}

func TestNotificationDispatcher_NotifyCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers on every configured channel", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		directory := mocks.NewMockUserDirectory(ctrl)
		events := &recordingEvents{}

		var pushes, texts atomic.Int32
		d := MustNewNotificationDispatcher(NotificationDispatcherOptions{
			Events:    events,
			Directory: directory,
			Push: notify.PushSenderFunc(func(_ context.Context, token string, payload notify.JobEventPayload) error {
				assert.Equal(t, "tok-1", token)
				assert.Equal(t, notify.EventJobAssigned, payload.Event)
				pushes.Add(1)
				return nil
			}),
			SMS: notify.SMSSenderFunc(func(_ context.Context, phone string, _ notify.JobEventPayload) error {
				assert.Equal(t, "+46700000001", phone)
				texts.Add(1)
				return nil
			}),
		})

		job := testutil.NewJob().Assigned("tr1").Build()
		customer := testutil.NewCustomer().
			WithID(job.CustomerID).
			WithPushToken("tok-1").
			WithPhoneNumber("+46700000001").
			Build()
		directory.EXPECT().GetCustomer(ctx, job.CustomerID).Return(customer, nil)

		d.NotifyCustomer(ctx, job, notify.EventJobAssigned, "")

		assert.Equal(t, int32(1), pushes.Load())
		assert.Equal(t, int32(1), texts.Load())
		assert.Len(t, events.byChannel(model.ChannelPush), 1)
		assert.Len(t, events.byChannel(model.ChannelSMS), 1)
	})

	t.Run("failed channel does not stop the other", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		directory := mocks.NewMockUserDirectory(ctrl)
		events := &recordingEvents{}

		var texts atomic.Int32
		d := MustNewNotificationDispatcher(NotificationDispatcherOptions{
			Events:    events,
			Directory: directory,
			Push: notify.PushSenderFunc(func(_ context.Context, _ string, _ notify.JobEventPayload) error {
				return errors.New("push gateway down")
			}),
			SMS: notify.SMSSenderFunc(func(_ context.Context, _ string, _ notify.JobEventPayload) error {
				texts.Add(1)
				return nil
			}),
		})

		job := testutil.NewJob().Build()
		customer := testutil.NewCustomer().
			WithID(job.CustomerID).
			WithPushToken("tok-1").
			WithPhoneNumber("+46700000001").
			Build()
		directory.EXPECT().GetCustomer(ctx, job.CustomerID).Return(customer, nil)

		d.NotifyCustomer(ctx, job, notify.EventJobCancelled, "")

		assert.Equal(t, int32(1), texts.Load())

		pushRecords := events.byChannel(model.ChannelPush)
		require.Len(t, pushRecords, 1)
		assert.Equal(t, model.OutcomeFailed, pushRecords[0].Outcome)
		require.NotNil(t, pushRecords[0].Detail)
		assert.Contains(t, *pushRecords[0].Detail, "push gateway down")

		smsRecords := events.byChannel(model.ChannelSMS)
		require.Len(t, smsRecords, 1)
		assert.Equal(t, model.OutcomeDelivered, smsRecords[0].Outcome)
	})

	t.Run("skips channels the profile does not support", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		directory := mocks.NewMockUserDirectory(ctrl)
		events := &recordingEvents{}

		var pushes atomic.Int32
		d := MustNewNotificationDispatcher(NotificationDispatcherOptions{
			Events:    events,
			Directory: directory,
			Push: notify.PushSenderFunc(func(_ context.Context, _ string, _ notify.JobEventPayload) error {
				pushes.Add(1)
				return nil
			}),
		})

		job := testutil.NewJob().Build()
		// No push token, no phone number.
		customer := testutil.NewCustomer().WithID(job.CustomerID).Build()
		directory.EXPECT().GetCustomer(ctx, job.CustomerID).Return(customer, nil)

		d.NotifyCustomer(ctx, job, notify.EventJobCreated, "")

		assert.Zero(t, pushes.Load())
		assert.Empty(t, events.byChannel(model.ChannelPush))
	})
}

func TestNotificationDispatcher_AnnouncePending(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes availability and fans out to eligible translators", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		directory := mocks.NewMockUserDirectory(ctrl)
		events := &recordingEvents{}
		cache := newMemoryCache()

		var (
			mu     sync.Mutex
			tokens []string
		)
		d := MustNewNotificationDispatcher(NotificationDispatcherOptions{
			Events:    events,
			Directory: directory,
			Cache:     cache,
			Push: notify.PushSenderFunc(func(_ context.Context, token string, _ notify.JobEventPayload) error {
				mu.Lock()
				defer mu.Unlock()
				tokens = append(tokens, token)
				return nil
			}),
		})

		job := testutil.NewJob().Build()
		eligible := testutil.NewTranslator().WithPushToken("tok-eligible").Build()
		wrongPair := testutil.NewTranslator().
			WithPairs(model.LanguagePair{From: "finnish", To: "arabic"}).
			WithPushToken("tok-wrong-pair").
			Build()
		noToken := testutil.NewTranslator().Build()
		directory.EXPECT().ListTranslators(ctx).
			Return([]*model.Translator{eligible, wrongPair, noToken}, nil)

		d.AnnouncePending(ctx, job)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{"tok-eligible"}, tokens)

		pubs := cache.publications()
		require.Len(t, pubs, 1)
		assert.Equal(t, AvailabilityChannel, pubs[0].channel)
		assert.Contains(t, string(pubs[0].payload), job.ID)
	})

	t.Run("publishes even without a push channel", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		directory := mocks.NewMockUserDirectory(ctrl)
		cache := newMemoryCache()

		d := MustNewNotificationDispatcher(NotificationDispatcherOptions{
			Events:    &recordingEvents{},
			Directory: directory,
			Cache:     cache,
		})

		d.AnnouncePending(ctx, testutil.NewJob().Build())

		assert.Len(t, cache.publications(), 1)
	})
}

func TestNotificationDispatcher_ResendSMS(t *testing.T) {
	ctx := context.Background()

	t.Run("targets the assigned translator", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		directory := mocks.NewMockUserDirectory(ctrl)
		events := &recordingEvents{}

		var sentTo string
		d := MustNewNotificationDispatcher(NotificationDispatcherOptions{
			Events:    events,
			Directory: directory,
			SMS: notify.SMSSenderFunc(func(_ context.Context, phone string, _ notify.JobEventPayload) error {
				sentTo = phone
				return nil
			}),
		})

		tr := testutil.NewTranslator().WithPhoneNumber("+46700000002").Build()
		job := testutil.NewJob().Assigned(tr.ID).Build()
		directory.EXPECT().GetTranslator(ctx, tr.ID).Return(tr, nil)

		result, err := d.ResendSMS(ctx, job, "see you at 14:00")
		require.NoError(t, err)
		assert.True(t, result.Delivered)
		assert.Equal(t, "+46700000002", sentTo)
	})

	t.Run("falls back to the customer when unassigned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		directory := mocks.NewMockUserDirectory(ctrl)

		var sentTo string
		d := MustNewNotificationDispatcher(NotificationDispatcherOptions{
			Events:    &recordingEvents{},
			Directory: directory,
			SMS: notify.SMSSenderFunc(func(_ context.Context, phone string, _ notify.JobEventPayload) error {
				sentTo = phone
				return nil
			}),
		})

		job := testutil.NewJob().Build()
		customer := testutil.NewCustomer().WithID(job.CustomerID).WithPhoneNumber("+46700000003").Build()
		directory.EXPECT().GetCustomer(ctx, job.CustomerID).Return(customer, nil)

		result, err := d.ResendSMS(ctx, job, "")
		require.NoError(t, err)
		assert.True(t, result.Delivered)
		assert.Equal(t, "+46700000003", sentTo)
	})

	t.Run("send failure reported without error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		directory := mocks.NewMockUserDirectory(ctrl)
		events := &recordingEvents{}

		d := MustNewNotificationDispatcher(NotificationDispatcherOptions{
			Events:    events,
			Directory: directory,
			SMS: notify.SMSSenderFunc(func(_ context.Context, _ string, _ notify.JobEventPayload) error {
				return errors.New("carrier down")
			}),
		})

		tr := testutil.NewTranslator().WithPhoneNumber("+46700000004").Build()
		job := testutil.NewJob().Assigned(tr.ID).Build()
		directory.EXPECT().GetTranslator(ctx, tr.ID).Return(tr, nil)

		result, err := d.ResendSMS(ctx, job, "")
		require.NoError(t, err)
		assert.False(t, result.Delivered)
		assert.Contains(t, result.Reason, "carrier down")

		records := events.byChannel(model.ChannelSMS)
		require.Len(t, records, 1)
		assert.Equal(t, model.OutcomeFailed, records[0].Outcome)
	})

	t.Run("throttled per job", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		directory := mocks.NewMockUserDirectory(ctrl)
		cache := newMemoryCache()

		var sends atomic.Int32
		d := MustNewNotificationDispatcher(NotificationDispatcherOptions{
			Events:    &recordingEvents{},
			Directory: directory,
			Cache:     cache,
			SMS: notify.SMSSenderFunc(func(_ context.Context, _ string, _ notify.JobEventPayload) error {
				sends.Add(1)
				return nil
			}),
		})

		tr := testutil.NewTranslator().WithPhoneNumber("+46700000005").Build()
		job := testutil.NewJob().Assigned(tr.ID).Build()
		directory.EXPECT().GetTranslator(ctx, tr.ID).Return(tr, nil).Times(2)

		first, err := d.ResendSMS(ctx, job, "")
		require.NoError(t, err)
		assert.True(t, first.Delivered)

		second, err := d.ResendSMS(ctx, job, "")
		require.NoError(t, err)
		assert.False(t, second.Delivered)
		assert.Contains(t, second.Reason, "recently sent")

		assert.Equal(t, int32(1), sends.Load())
	})

	t.Run("recipient without phone number", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		directory := mocks.NewMockUserDirectory(ctrl)

		d := MustNewNotificationDispatcher(NotificationDispatcherOptions{
			Events:    &recordingEvents{},
			Directory: directory,
			SMS: notify.SMSSenderFunc(func(_ context.Context, _ string, _ notify.JobEventPayload) error {
				t.Fatal("send should not be attempted")
				return nil
			}),
		})

		job := testutil.NewJob().Build()
		customer := testutil.NewCustomer().WithID(job.CustomerID).Build()
		directory.EXPECT().GetCustomer(ctx, job.CustomerID).Return(customer, nil)

		result, err := d.ResendSMS(ctx, job, "")
		require.NoError(t, err)
		assert.False(t, result.Delivered)
		assert.Contains(t, result.Reason, "no phone number")
	})

	t.Run("sms channel not configured", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		d := MustNewNotificationDispatcher(NotificationDispatcherOptions{
			Events:    &recordingEvents{},
			Directory: mocks.NewMockUserDirectory(ctrl),
		})

		_, err := d.ResendSMS(ctx, testutil.NewJob().Build(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not configured")
	})
}

func TestNotificationDispatcher_ResendPush(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	directory := mocks.NewMockUserDirectory(ctrl)
	events := &recordingEvents{}

	var pushes atomic.Int32
	d := MustNewNotificationDispatcher(NotificationDispatcherOptions{
		Events:    events,
		Directory: directory,
		Push: notify.PushSenderFunc(func(_ context.Context, _ string, _ notify.JobEventPayload) error {
			pushes.Add(1)
			return nil
		}),
	})

	job := testutil.NewJob().Build()
	first := testutil.NewTranslator().WithPushToken("tok-1").Build()
	second := testutil.NewTranslator().WithPushToken("tok-2").Build()
	noToken := testutil.NewTranslator().Build()
	directory.EXPECT().ListTranslators(ctx).
		Return([]*model.Translator{first, second, noToken}, nil)

	attempted, err := d.ResendPush(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, 2, attempted)
	assert.Equal(t, int32(2), pushes.Load())
	assert.Len(t, events.byChannel(model.ChannelPush), 2)
}
