package cart

import (
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/errors"
)

// Owner identifies whose cart an operation targets. Exactly one of UserID or
// GuestID is set.
type Owner struct {
	UserID  *uuid.UUID
	GuestID *string
}

// UserOwner builds an owner for an authenticated user.
func UserOwner(id uuid.UUID) Owner {
	return Owner{UserID: &id}
}

// GuestOwner builds an owner for an anonymous session.
func GuestOwner(id string) Owner {
	return Owner{GuestID: &id}
}

func (o Owner) validate() error {
	hasUser := o.UserID != nil && *o.UserID != uuid.Nil
	hasGuest := o.GuestID != nil && strings.TrimSpace(*o.GuestID) != ""
	if hasUser == hasGuest {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner must be exactly one of user or guest")
	}
	return nil
}
