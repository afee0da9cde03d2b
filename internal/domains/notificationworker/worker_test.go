package notificationworker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xpanvictor/xarvis/internal/domains/notificationworker"
	"github.com/xpanvictor/xarvis/internal/domains/task"
	"github.com/xpanvictor/xarvis/internal/domains/user"
	"github.com/xpanvictor/xarvis/internal/eventbus"
	"github.com/xpanvictor/xarvis/pkg/Logger"
)

// fakeUserRepo implements only what NotificationWorker needs; the rest of
// user.UserRepository is unreachable from this worker and stubbed out.
type fakeUserRepo struct {
	users map[string]*user.User
}

func (f *fakeUserRepo) Create(u *user.User) error                 { return errors.New("unused") }
func (f *fakeUserRepo) GetByID(id string) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}
func (f *fakeUserRepo) GetByEmail(email string) (*user.User, error) { return nil, errors.New("unused") }
func (f *fakeUserRepo) Update(id string, updates user.UpdateUserRequest) (*user.User, error) {
	return nil, errors.New("unused")
}
func (f *fakeUserRepo) Delete(id string) error                        { return errors.New("unused") }
func (f *fakeUserRepo) List(offset, limit int) ([]user.User, int64, error) { return nil, 0, errors.New("unused") }
func (f *fakeUserRepo) EmailExists(email string) (bool, error)        { return false, errors.New("unused") }

type recordingSender struct {
	sent []notificationworker.EmailMessage
	err  error
}

func (r *recordingSender) Send(ctx context.Context, msg notificationworker.EmailMessage) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func TestNotificationWorkerDeliversToOwner(t *testing.T) {
	ownerID := uuid.New()
	users := &fakeUserRepo{users: map[string]*user.User{
		ownerID.String(): {ID: ownerID.String(), Email: "owner@example.com"},
	}}
	dedup := eventbus.NewMemoryDedup()
	sender := &recordingSender{}
	worker := notificationworker.NewWorker(users, dedup, sender, Logger.New(false))

	bus := eventbus.NewMemoryBus()
	worker.Register(bus)

	payload := task.TaskDuePayload{TaskID: uuid.New(), OwnerID: ownerID, Title: "renew passport"}
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), eventbus.TopicTaskDue, data))
	require.Len(t, sender.sent, 1)
	require.Equal(t, "owner@example.com", sender.sent[0].ToEmail)
}

func TestNotificationWorkerDropsReminderForDeletedOwner(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*user.User{}}
	dedup := eventbus.NewMemoryDedup()
	sender := &recordingSender{}
	worker := notificationworker.NewWorker(users, dedup, sender, Logger.New(false))

	bus := eventbus.NewMemoryBus()
	worker.Register(bus)

	payload := task.TaskDuePayload{TaskID: uuid.New(), OwnerID: uuid.New(), Title: "ghost"}
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), eventbus.TopicTaskDue, data))
	require.Empty(t, sender.sent)
}
