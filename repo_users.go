package auth

import (
	"context"
)

// Users is the user repository. Methods without the Tx suffix run in
// their own transaction; the Tx variants operate on a collection handed
// out by RunInTx so several steps can commit together.
type Users interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByIDTx(ctx context.Context, tx *Collection, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByUsernameTx(ctx context.Context, tx *Collection, username string) (*User, error)

	Insert(ctx context.Context, record *User) (*User, error)
	InsertTx(ctx context.Context, tx *Collection, record *User) (*User, error)
	Update(ctx context.Context, id string, record *User) (*User, error)
	UpdateTx(ctx context.Context, tx *Collection, id string, record *User) (*User, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteTx(ctx context.Context, tx *Collection, id string) error
}

type users struct {
	db Transactor
}

var _ Users = (*users)(nil)

// NewUsersRepository returns a Users repository backed by db
func NewUsersRepository(db Transactor) Users {
	return &users{db: db}
}

func (a *users) List(ctx context.Context) ([]User, error) {
	var out []User
	err := a.db.View(ctx, func(c Collection) error {
		out = make([]User, len(c.Users))
		copy(out, c.Users)
		return nil
	})
	return out, err
}

func (a *users) GetByID(ctx context.Context, id string) (*User, error) {
	var record *User
	err := a.db.View(ctx, func(c Collection) error {
		var err error
		record, err = a.GetByIDTx(ctx, &c, id)
		return err
	})
	return record, err
}

func (a *users) GetByIDTx(_ context.Context, tx *Collection, id string) (*User, error) {
	n, ok := ParseUserID(id)
	if !ok {
		return nil, notFound(id)
	}

	i := tx.IndexOf(n)
	if i < 0 {
		return nil, notFound(id)
	}
	u := tx.Users[i]
	return &u, nil
}

func (a *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	var record *User
	err := a.db.View(ctx, func(c Collection) error {
		var err error
		record, err = a.GetByUsernameTx(ctx, &c, username)
		return err
	})
	return record, err
}

func (a *users) GetByUsernameTx(_ context.Context, tx *Collection, username string) (*User, error) {
	i := tx.FindByUsername(username)
	if i < 0 {
		return nil, ErrUserNotFound.Clone().WithMetadata(map[string]any{
			"username": username,
		})
	}
	u := tx.Users[i]
	return &u, nil
}

func (a *users) Insert(ctx context.Context, record *User) (*User, error) {
	var out *User
	err := a.db.RunInTx(ctx, func(ctx context.Context, tx *Collection) error {
		var err error
		out, err = a.InsertTx(ctx, tx, record)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *users) InsertTx(_ context.Context, tx *Collection, record *User) (*User, error) {
	u := *record
	prepareUserDefaults(&u)
	u.ID = tx.NextID
	tx.NextID++
	tx.Users = append(tx.Users, u)
	return &u, nil
}

func (a *users) Update(ctx context.Context, id string, record *User) (*User, error) {
	var out *User
	err := a.db.RunInTx(ctx, func(ctx context.Context, tx *Collection) error {
		var err error
		out, err = a.UpdateTx(ctx, tx, id, record)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTx replaces the whole record. Fields missing from record are
// not carried over from the stored value.
func (a *users) UpdateTx(_ context.Context, tx *Collection, id string, record *User) (*User, error) {
	n, ok := ParseUserID(id)
	if !ok {
		return nil, notFound(id)
	}

	i := tx.IndexOf(n)
	if i < 0 {
		return nil, notFound(id)
	}

	u := *record
	u.ID = n
	tx.Users[i] = u
	return &u, nil
}

func (a *users) Delete(ctx context.Context, id string) (bool, error) {
	err := a.db.RunInTx(ctx, func(ctx context.Context, tx *Collection) error {
		return a.DeleteTx(ctx, tx, id)
	})
	if err != nil {
		if IsUserNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (a *users) DeleteTx(_ context.Context, tx *Collection, id string) error {
	n, ok := ParseUserID(id)
	if !ok {
		return notFound(id)
	}

	i := tx.IndexOf(n)
	if i < 0 {
		return notFound(id)
	}

	tx.Users = append(tx.Users[:i], tx.Users[i+1:]...)
	return nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleUser
	}
}

func notFound(id string) error {
	return ErrUserNotFound.Clone().WithMetadata(map[string]any{
		"id": id,
	})
}
