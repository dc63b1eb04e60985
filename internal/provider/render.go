package provider

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/five82/apiwatchdog/internal/fetch"
)

const (
	notAvailable = "Not available"
	timeLayout   = "2006-01-02 15:04:05"
)

// lookup walks nested objects and arrays. Integer path elements index arrays.
func lookup(v any, path ...any) (any, bool) {
	cur := v
	for _, p := range path {
		switch key := p.(type) {
		case string:
			obj, ok := asObject(cur)
			if !ok {
				return nil, false
			}
			cur, ok = obj[key]
			if !ok {
				return nil, false
			}
		case int:
			arr, ok := cur.([]any)
			if !ok || key < 0 || key >= len(arr) {
				return nil, false
			}
			cur = arr[key]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}

func asObject(v any) (map[string]any, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, true
	case fetch.Payload:
		return obj, true
	default:
		return nil, false
	}
}

// text renders a scalar exactly as it appeared in the payload.
func text(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return notAvailable
	default:
		return fmt.Sprint(val)
	}
}

func field(v any, path ...any) string {
	val, ok := lookup(v, path...)
	if !ok {
		return notAvailable
	}
	return text(val)
}

func number(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(val), true
	case string:
		d, err := decimal.NewFromString(val)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// unixTime renders a unix timestamp in local time.
func unixTime(v any, path ...any) string {
	val, ok := lookup(v, path...)
	if !ok {
		return notAvailable
	}
	d, ok := number(val)
	if !ok {
		return notAvailable
	}
	return time.Unix(d.IntPart(), 0).Local().Format(timeLayout)
}

var kelvinOffset = decimal.RequireFromString("273.15")

// celsius converts a Kelvin reading, rounded to two places.
func celsius(v any, path ...any) string {
	val, ok := lookup(v, path...)
	if !ok {
		return notAvailable
	}
	k, ok := number(val)
	if !ok {
		return notAvailable
	}
	return k.Sub(kelvinOffset).Round(2).String() + "°C"
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func raw(payload fetch.Payload) string {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(payload))
	}
	return string(data)
}
