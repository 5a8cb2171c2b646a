/*
 * trelloboards - Trello boards, lists and cards
 * Copyright (C) 2022  Joao Eduardo Luis <joao@wipwd.dev>
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */
package fs

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/jecluis/trelloboards/trello"
)

type MetaEntry struct {
	Name     string
	Contents []byte
}

// getMeta turns the scalar fields of a record into file entries, sorted
// by key. Nested objects, nulls and mixed arrays are skipped.
func getMeta(info trello.Info, logger *slog.Logger) []MetaEntry {
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var entries []MetaEntry
	for _, k := range keys {
		contentStr, ok := metaString(info[k])
		if !ok {
			logger.Debug("meta: skipping field", "field", k)
			continue
		}
		entries = append(entries, MetaEntry{
			Name:     entryName(k, "field"),
			Contents: []byte(contentStr),
		})
	}
	return entries
}

func metaString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case []interface{}:
		var b strings.Builder
		for _, entry := range v {
			s, ok := entry.(string)
			if !ok {
				return "", false
			}
			b.WriteString(s)
			b.WriteString("\n")
		}
		return b.String(), true
	}
	return "", false
}
