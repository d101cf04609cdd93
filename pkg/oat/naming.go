package oat

import (
	"strconv"
	"strings"
)

// OutputName derives the output filename for one entry. baseName, when
// non-empty, forces sequential naming: the first entry gets the bare base,
// later entries get the 0-based index appended. Otherwise the name comes
// from the embedded location string:
//
//	framework/am.jar              -> am.odex
//	app/classes.jar:classes2.dex  -> app/classes2.odex (multi-dex index kept)
//	anything else                 -> leaf of the location, unchanged
//
// The result is relative to the output directory and may itself contain
// path separators in the multi-dex case.
func OutputName(location, baseName string, index uint32) string {
	if baseName != "" {
		if index == 0 {
			return baseName + ".odex"
		}
		return baseName + strconv.FormatUint(uint64(index), 10) + ".odex"
	}

	// Synthetic multi-dex locations look like "path/to/app.jar:classesN.dex".
	// Recover N and fold it into the container-derived name. The container
	// extension is always stripped as the last four characters, whatever it
	// spells.
	if colon := strings.Index(location, ":"); colon >= 0 && strings.HasSuffix(location, ".dex") {
		prefix := location[:colon]
		if len(prefix) > 4 {
			prefix = prefix[:len(prefix)-4]
		} else {
			prefix = ""
		}
		n := location[len(location)-5 : len(location)-4]
		return prefix + n + ".odex"
	}

	leaf := location
	if slash := strings.LastIndex(leaf, "/"); slash >= 0 {
		leaf = leaf[slash+1:]
	}
	if strings.HasSuffix(leaf, ".jar") {
		return strings.TrimSuffix(leaf, ".jar") + ".odex"
	}
	return leaf
}
