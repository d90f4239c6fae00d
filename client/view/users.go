package view

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/JosherenPro/ManiocAGRI/client"
	"github.com/JosherenPro/ManiocAGRI/client/workflow"
)

// UsersAPI is the slice of the HTTP client the accounts admin view uses.
type UsersAPI interface {
	ListUsers(ctx context.Context) ([]client.User, error)
	CreateUser(ctx context.Context, req client.CreateUserRequest) (*client.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req client.UpdateUserRequest) (*client.User, error)
	ApproveUser(ctx context.Context, id uuid.UUID) (*client.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// UsersView owns the accounts screen: approved users on one list, pending
// registrations on the other, both filtered client-side.
type UsersView struct {
	api       UsersAPI
	notifier  workflow.Notifier
	confirmer workflow.Confirmer

	users []client.User
}

func NewUsersView(api UsersAPI, notifier workflow.Notifier, confirmer workflow.Confirmer) *UsersView {
	if notifier == nil {
		notifier = workflow.NopNotifier{}
	}
	return &UsersView{api: api, notifier: notifier, confirmer: confirmer}
}

func (v *UsersView) Refresh(ctx context.Context) error {
	users, err := v.api.ListUsers(ctx)
	if err != nil {
		v.notifier.Notify(workflow.SeverityError, err.Error())
		return err
	}
	v.users = users
	return nil
}

// Approved returns the approved accounts, optionally filtered.
func (v *UsersView) Approved(query string) []client.User {
	approved := make([]client.User, 0, len(v.users))
	for _, u := range v.users {
		if u.Approved {
			approved = append(approved, u)
		}
	}
	return Filter(query, approved, UserFields)
}

// PendingRegistrations returns the accounts awaiting approval.
func (v *UsersView) PendingRegistrations() []client.User {
	pending := make([]client.User, 0)
	for _, u := range v.users {
		if !u.Approved {
			pending = append(pending, u)
		}
	}
	return pending
}

func (v *UsersView) Create(ctx context.Context, req client.CreateUserRequest) (*client.User, error) {
	created, err := v.api.CreateUser(ctx, req)
	if err != nil {
		v.notifier.Notify(workflow.SeverityError, err.Error())
		return nil, err
	}

	_ = v.Refresh(ctx)
	v.notifier.Notify(workflow.SeveritySuccess, fmt.Sprintf("user %q created", created.Username))
	return created, nil
}

// Approve flips the approval flag on a pending registration.
func (v *UsersView) Approve(ctx context.Context, user client.User) error {
	approved, err := v.api.ApproveUser(ctx, user.ID)
	if err != nil {
		v.notifier.Notify(workflow.SeverityError, err.Error())
		return err
	}

	_ = v.Refresh(ctx)
	v.notifier.Notify(workflow.SeveritySuccess, fmt.Sprintf("user %q approved", approved.Username))
	return nil
}

// Reject deletes a pending registration after explicit confirmation. The
// backend treats rejection and deletion identically.
func (v *UsersView) Reject(ctx context.Context, user client.User) error {
	return v.delete(ctx, user, fmt.Sprintf("Reject the registration of %q?", user.Username))
}

// Delete removes an account after explicit confirmation.
func (v *UsersView) Delete(ctx context.Context, user client.User) error {
	return v.delete(ctx, user, fmt.Sprintf("Delete user %q?", user.Username))
}

func (v *UsersView) delete(ctx context.Context, user client.User, prompt string) error {
	if v.confirmer == nil || !v.confirmer.Confirm(prompt) {
		return workflow.ErrDeclined
	}

	if err := v.api.DeleteUser(ctx, user.ID); err != nil {
		v.notifier.Notify(workflow.SeverityError, err.Error())
		return err
	}

	_ = v.Refresh(ctx)
	v.notifier.Notify(workflow.SeveritySuccess, fmt.Sprintf("user %q removed", user.Username))
	return nil
}
