package campaign

import (
	"time"

	"github.com/tidwall/gjson"
)

// Payloads are loosely typed; every accessor here tolerates absent keys and
// wrong types by falling back to the zero value.

func firstString(data gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := data.Get(k); v.Exists() && v.Type != gjson.Null {
			return v.String()
		}
	}
	return ""
}

func firstInt(data gjson.Result, keys ...string) int64 {
	for _, k := range keys {
		if v := data.Get(k); v.Exists() && v.Type != gjson.Null {
			return v.Int()
		}
	}
	return 0
}

func firstExisting(data gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := data.Get(k); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// stringList accepts an array of strings or a single string.
func stringList(v gjson.Result) []string {
	switch {
	case v.IsArray():
		items := v.Array()
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s := item.String(); s != "" {
				out = append(out, s)
			}
		}
		return out
	case v.Type == gjson.String && v.String() != "":
		return []string{v.String()}
	default:
		return nil
	}
}

func intList(v gjson.Result) []int64 {
	if !v.IsArray() {
		return nil
	}
	items := v.Array()
	out := make([]int64, len(items))
	for i, item := range items {
		out[i] = item.Int()
	}
	return out
}

func epochTime(v gjson.Result) time.Time {
	if !v.Exists() || v.Int() <= 0 {
		return time.Time{}
	}
	return time.Unix(v.Int(), 0).UTC()
}
