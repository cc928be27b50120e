// Package code validates the business codes used across master data:
// 4-digit account codes, uppercase division codes, and the free-form
// codes keying auxiliary masters.
package code

import "regexp"

var (
	reAccount  = regexp.MustCompile(`^[0-9]{4}$`)
	reDivision = regexp.MustCompile(`^[A-Z]{2,16}$`)
	reBusiness = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)
)

// IsAccountCode reports whether s is a valid 4-digit account code.
func IsAccountCode(s string) bool { return reAccount.MatchString(s) }

// IsDivisionCode reports whether s is a valid division code.
func IsDivisionCode(s string) bool { return reDivision.MatchString(s) }

// IsBusinessCode reports whether s can key a unit owner or vendor record.
func IsBusinessCode(s string) bool { return reBusiness.MatchString(s) }
