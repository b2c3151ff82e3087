// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query

import (
	"strconv"
	"strings"
)

// Uint64Slice parses a comma-separated query value into unsigned integers.
// Invalid entries are ignored safely.
func Uint64Slice(val string) []uint64 {
	var res []uint64
	for _, v := range StringSlice(val) {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			res = append(res, n)
		}
	}
	return res
}

// StringSlice parses a single comma-separated query string
// into a trimmed slice of strings.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}
