package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/notify"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/testutil"
)

type fakeSender struct {
	sent []notify.EmailMessage
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg notify.EmailMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type failing struct{}

func (failing) Send(context.Context, domain.NotificationIntent) error {
	return errors.New("down")
}

func TestInAppDispatcher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewNotificationRepository(db)
	user := testutil.CreateTestUser(t, db, domain.RoleCustomer)

	d := notify.NewInAppDispatcher(repo)
	require.NoError(t, d.Send(ctx, domain.NotificationIntent{
		RecipientID: user.ID,
		Category:    domain.NotificationMilestone,
		Title:       "Payment requested",
		Message:     "Please review",
	}))

	items, total, err := repo.ListByUser(ctx, user.ID, 1, 10, true, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Payment requested", items[0].Title)
	assert.False(t, items[0].Read)
}

func TestEmailDispatcher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, domain.RoleCustomer)
	sender := &fakeSender{}

	d := notify.NewEmailDispatcher(repository.NewUserRepository(db), sender, zap.NewNop())
	require.NoError(t, d.Send(ctx, domain.NotificationIntent{RecipientID: user.ID, Title: "Paid", Message: "<b>done</b>"}))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, user.Email, sender.sent[0].To)
	assert.Equal(t, "Paid", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].HTML, "&lt;b&gt;done&lt;/b&gt;")

	err := d.Send(ctx, domain.NotificationIntent{RecipientID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMultiDispatcher_DeliversDespiteFailure(t *testing.T) {
	rec := notify.NewRecorder()
	m := notify.NewMultiDispatcher(failing{}, nil, rec)

	err := m.Send(context.Background(), domain.NotificationIntent{Title: "x"})
	assert.Error(t, err)
	assert.Len(t, rec.Intents(), 1)
}

func TestDispatchAll_LogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	intents := []domain.NotificationIntent{{Title: "a"}, {Title: "b"}}

	notify.DispatchAll(context.Background(), failing{}, zap.New(core), intents)
	assert.Equal(t, 2, logs.Len())

	rec := notify.NewRecorder()
	notify.DispatchAll(context.Background(), rec, zap.New(core), intents)
	assert.Len(t, rec.Intents(), 2)
	rec.Reset()
	assert.Empty(t, rec.Intents())
}
