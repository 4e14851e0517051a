package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/internal/realtime"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/redis"
)

type sessionPusher interface {
	Send(ctx context.Context, userID uuid.UUID, payload []byte) int
}

type adminLister interface {
	ListActiveIDsByRole(ctx context.Context, role enums.UserRole) ([]uuid.UUID, error)
}

// Message is the content of a notification before it has a recipient.
type Message struct {
	Type    enums.NotificationType
	Title   string
	Message string
	Link    *string
}

// Notifier persists notifications and fans them out to live sessions, both
// local and on other instances through Redis.
type Notifier struct {
	repo   Repository
	local  sessionPusher
	remote redis.Publisher
	admins adminLister
	origin string
	logg   *logger.Logger
}

// NewNotifier wires the notifier. local and remote may be nil, in which case
// notifications are only stored.
func NewNotifier(repo Repository, local sessionPusher, remote redis.Publisher, admins adminLister, origin string, logg *logger.Logger) (*Notifier, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if admins == nil {
		return nil, fmt.Errorf("admin lister required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Notifier{repo: repo, local: local, remote: remote, admins: admins, origin: origin, logg: logg}, nil
}

// Notify stores msg for userID and pushes it. Push failures are logged; only
// the persistence error is returned.
func (n *Notifier) Notify(ctx context.Context, userID uuid.UUID, msg Message) (*models.Notification, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("notification recipient required")
	}
	row := &models.Notification{
		UserID:  userID,
		Type:    msg.Type,
		Title:   msg.Title,
		Message: msg.Message,
		Link:    msg.Link,
	}
	if err := n.repo.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	n.push(ctx, *row)
	return row, nil
}

// NotifyAdmins sends msg to every active admin.
func (n *Notifier) NotifyAdmins(ctx context.Context, msg Message) error {
	ids, err := n.admins.ListActiveIDsByRole(ctx, enums.UserRoleAdmin)
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}
	var errs error
	for _, id := range ids {
		if _, err := n.Notify(ctx, id, msg); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (n *Notifier) push(ctx context.Context, row models.Notification) {
	payload, err := json.Marshal(newNotificationDTO(row))
	if err != nil {
		n.logg.Error(ctx, "encode notification payload", err)
		return
	}
	if n.local != nil {
		n.local.Send(ctx, row.UserID, payload)
	}
	if n.remote == nil {
		return
	}
	envelope, err := json.Marshal(realtime.Envelope{Origin: n.origin, UserID: row.UserID, Payload: payload})
	if err != nil {
		n.logg.Error(ctx, "encode notification envelope", err)
		return
	}
	if err := n.remote.Publish(ctx, n.remote.NotificationChannel(row.UserID.String()), envelope); err != nil {
		n.logg.Error(n.logg.WithUserID(ctx, row.UserID.String()), "publish notification", err)
	}
}
