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
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Tree is a snapshot of everything reachable from the user: boards,
// their lists and the cards on each list.
type Tree struct {
	User   string      `yaml:"user,omitempty"`
	Boards []TreeBoard `yaml:"boards"`
}

type TreeBoard struct {
	ID    string     `yaml:"id"`
	Name  string     `yaml:"name"`
	Lists []TreeList `yaml:"lists"`
}

type TreeList struct {
	ID    string     `yaml:"id"`
	Name  string     `yaml:"name"`
	Cards []TreeCard `yaml:"cards"`
}

type TreeCard struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// BuildTree walks the whole hierarchy sequentially, one request per
// collection.
func BuildTree(ctx context.Context, t *Trello) (*Tree, error) {
	user, err := t.User(ctx)
	if err != nil {
		return nil, fmt.Errorf("trello: obtaining user: %w", err)
	}
	boards, err := t.Boards(ctx)
	if err != nil {
		return nil, fmt.Errorf("trello: obtaining boards: %w", err)
	}

	tree := &Tree{
		User:   user.DisplayName(),
		Boards: make([]TreeBoard, 0, len(boards.Items())),
	}
	for _, board := range boards.Items() {
		lists, err := board.Lists(ctx)
		if err != nil {
			return nil, fmt.Errorf("trello: lists for board %s: %w", board.ID(), err)
		}
		tb := TreeBoard{
			ID:    board.ID(),
			Name:  board.Info().Name(),
			Lists: make([]TreeList, 0, len(lists.Items())),
		}
		for _, list := range lists.Items() {
			cards, err := list.Cards(ctx)
			if err != nil {
				return nil, fmt.Errorf("trello: cards for list %s: %w", list.ID(), err)
			}
			tl := TreeList{
				ID:    list.ID(),
				Name:  list.Info().Name(),
				Cards: make([]TreeCard, 0, len(cards.Items())),
			}
			for _, card := range cards.Items() {
				tl.Cards = append(tl.Cards, TreeCard{
					ID:   card.ID(),
					Name: card.Info().Name(),
				})
			}
			tb.Lists = append(tb.Lists, tl)
		}
		tree.Boards = append(tree.Boards, tb)
	}
	return tree, nil
}

func (tree *Tree) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return err
	}
	return enc.Close()
}
