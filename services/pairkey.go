package services

import (
	"strings"

	apperrors "kindling_server/pkg/errors"
)

// PairKeySeparator joins the two sorted participant ids into the canonical
// conversation/match key. Participant ids never contain '#'.
const PairKeySeparator = "#"

// ResolvePair canonicalizes an unordered participant pair: the two ids are
// sorted lexicographically and joined, so ResolvePair(a, b) and
// ResolvePair(b, a) always yield the same key. Self-pairs are rejected.
func ResolvePair(a, b string) ([2]string, string, error) {
	if a == "" || b == "" {
		return [2]string{}, "", apperrors.InvalidArg("both participant ids are required")
	}
	if a == b {
		return [2]string{}, "", apperrors.InvalidArg("cannot pair a participant with themselves")
	}
	if strings.Contains(a, PairKeySeparator) || strings.Contains(b, PairKeySeparator) {
		return [2]string{}, "", apperrors.InvalidArg("participant ids must not contain '#'")
	}

	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}, a + PairKeySeparator + b, nil
}
