// budget_band.go
//
// A used-car catalog, preference and recommendation data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of carmart.
// carmart is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// carmart is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with carmart.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package types

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// BudgetBand is a price bracket expressed in wan (ten-thousand currency units)
type BudgetBand string

const (
	Budget0To5   BudgetBand = "0-5"
	Budget5To10  BudgetBand = "5-10"
	Budget10To20 BudgetBand = "10-20"
	Budget20To50 BudgetBand = "20-50"
	Budget50Plus BudgetBand = "50+"

	DefaultBudgetBand = Budget10To20
)

// BudgetBands lists every band in ascending price order
var BudgetBands = []BudgetBand{Budget0To5, Budget5To10, Budget10To20, Budget20To50, Budget50Plus}

var bandBounds = map[BudgetBand][2]int64{
	Budget0To5:   {0, 5},
	Budget5To10:  {5, 10},
	Budget10To20: {10, 20},
	Budget20To50: {20, 50},
	Budget50Plus: {50, -1},
}

// ParseBudgetBand validates s against the closed set of bands
func ParseBudgetBand(s string) (BudgetBand, error) {
	b := BudgetBand(s)
	if !b.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidBudgetBand, s)
	}
	return b, nil
}

// Valid reports whether b is one of the known bands
func (b BudgetBand) Valid() bool {
	_, ok := bandBounds[b]
	return ok
}

// Interval returns the [min, max) bounds in wan. Unbounded reports true for
// the top band, in which case max is meaningless.
func (b BudgetBand) Interval() (min, max decimal.Decimal, unbounded bool) {
	bounds, ok := bandBounds[b]
	if !ok {
		return decimal.Zero, decimal.Zero, false
	}
	min = decimal.NewFromInt(bounds[0])
	if bounds[1] < 0 {
		return min, decimal.Zero, true
	}
	return min, decimal.NewFromInt(bounds[1]), false
}

// Contains reports whether a wan amount falls in [min, max)
func (b BudgetBand) Contains(wan decimal.Decimal) bool {
	if !b.Valid() {
		return false
	}
	min, max, unbounded := b.Interval()
	if wan.LessThan(min) {
		return false
	}
	return unbounded || wan.LessThan(max)
}

// Value implements driver.Valuer
func (b BudgetBand) Value() (driver.Value, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBudgetBand, string(b))
	}
	return string(b), nil
}

// Scan implements sql.Scanner, rejecting unknown bands read back from storage
func (b *BudgetBand) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*b = DefaultBudgetBand
		return nil
	default:
		return fmt.Errorf("BudgetBand: unsupported type %T", value)
	}
	parsed, err := ParseBudgetBand(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
