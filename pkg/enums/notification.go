package enums

import "fmt"

// NotificationType groups in-app notifications for filtering and icons.
type NotificationType string

const (
	NotificationTypeOrderPlaced   NotificationType = "ORDER_PLACED"
	NotificationTypeOrderStatus   NotificationType = "ORDER_STATUS"
	NotificationTypePayment       NotificationType = "PAYMENT"
	NotificationTypeAbandonedCart NotificationType = "ABANDONED_CART"
	NotificationTypeSystem        NotificationType = "SYSTEM"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrderPlaced,
	NotificationTypeOrderStatus,
	NotificationTypePayment,
	NotificationTypeAbandonedCart,
	NotificationTypeSystem,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
