package crawler

import (
	"github.com/tidwall/gjson"

	"procfeed/internal/normalizer"
)

// Collection is the element list extracted from a payload.
type Collection struct {
	Format normalizer.Format
	// Wrapper names the top-level key the elements came from ("" for a bare array).
	Wrapper      string
	Elements     []string
	TopLevelKeys []string
}

// nestedWrappers are checked in order before the tabular "data" wrapper.
var nestedWrappers = []string{"releases", "results", "records"}

// compiledKeys hold the real release inside search results and record packages.
var compiledKeys = []string{"compiledRelease", "compiled"}

// DetectFormat inspects the top-level shape of a JSON payload and extracts its
// elements. Priority: releases, results, records (nested), data (tabular), then a
// bare array. An unrecognized shape yields FormatUnknown with the payload's
// top-level keys for diagnostics.
func DetectFormat(body []byte) Collection {
	root := gjson.ParseBytes(body)

	if root.IsArray() {
		elements := rawElements(root, false)

		return Collection{Format: bareArrayFormat(root), Elements: elements}
	}

	if !root.IsObject() {
		return Collection{Format: normalizer.FormatUnknown}
	}

	for _, key := range nestedWrappers {
		if v := root.Get(key); v.IsArray() {
			return Collection{
				Format:   normalizer.FormatNested,
				Wrapper:  key,
				Elements: rawElements(v, key != "releases"),
			}
		}
	}

	if v := root.Get("data"); v.IsArray() {
		return Collection{Format: normalizer.FormatTabular, Wrapper: "data", Elements: rawElements(v, false)}
	}

	return Collection{Format: normalizer.FormatUnknown, TopLevelKeys: topLevelKeys(root)}
}

// bareArrayFormat treats an array whose first object looks like a release as nested.
func bareArrayFormat(arr gjson.Result) normalizer.Format {
	first := arr.Get("0")
	if first.IsObject() && first.Get("ocid").Exists() && first.Get("tender").Exists() {
		return normalizer.FormatNested
	}

	return normalizer.FormatTabular
}

func rawElements(arr gjson.Result, unwrap bool) []string {
	var elements []string

	arr.ForEach(func(_, value gjson.Result) bool {
		if unwrap && value.IsObject() {
			for _, key := range compiledKeys {
				if inner := value.Get(key); inner.IsObject() {
					value = inner

					break
				}
			}
		}

		elements = append(elements, value.Raw)

		return true
	})

	return elements
}

func topLevelKeys(obj gjson.Result) []string {
	var keys []string

	obj.ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())

		return true
	})

	return keys
}
