package value

import (
	"slices"
	"strings"
)

// ParseVariant returns the index of name within variants as an E.
// Matching is case-sensitive. An unmatched name fails with
// [ErrUnknownVariant].
//
// It is intended for UnmarshalText methods of enumerations:
//
//	var attackNames = []string{"FireBreath", "Scratch", "Bark"}
//
//	func (a *Attack) UnmarshalText(b []byte) (err error) {
//		*a, err = value.ParseVariant[Attack](string(b), attackNames...)
//		return err
//	}
func ParseVariant[E ~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](
	name string,
	variants ...string,
) (E, error) {
	i := slices.Index(variants, name)
	if i < 0 {
		return 0, ErrUnknownVariant.Args(name, expectedList(variants))
	}

	return E(i), nil
}

// VariantName returns the name of e within variants, or "" if e is out of
// range.
func VariantName[E ~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](
	e E,
	variants ...string,
) string {
	if e < 0 || int(e) >= len(variants) {
		return ""
	}

	return variants[e]
}

func expectedList(variants []string) string {
	switch len(variants) {
	case 0:
		return "no variants"
	case 1:
		return "`" + variants[0] + "`"
	default:
		return "one of `" + strings.Join(variants, "`, `") + "`"
	}
}
