/*
 * trelloboards - Trello boards, lists and cards
 * Copyright (C) 2022  Joao Eduardo Luis <joao@wipwd.dev>
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */

package trello

import (
	"context"
	"net/url"
)

// User is the member that owns the access token.
type User struct {
	session
	status

	info Info
}

func newUser(ctx context.Context, s session) (*User, error) {
	user := &User{session: s}
	if err := user.Refresh(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

func (user *User) Refresh(ctx context.Context) error {
	info, err := user.getObject(
		ctx,
		"/tokens/"+user.creds.Token+"/member",
		url.Values{"key": {user.creds.Key}},
	)
	if err != nil {
		user.logger.Error("error obtaining token member", "err", err)
		return user.fail(err)
	}
	user.info = info
	return user.ok()
}

func (user *User) Info() Info {
	return user.info
}

// DisplayName prefers the member's full name over its username.
func (user *User) DisplayName() string {
	if name := user.info.Field("fullName"); name != "" {
		return name
	}
	return user.info.Field("username")
}
