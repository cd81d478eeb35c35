// engine.go
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

// Package matching scores approved listings against a buyer's stated preferences.
//
// The engine is pure: callers pass owned value types in and get an ordered
// slice of matches out. It never reads or writes storage, so it can be
// exercised without a database.
package matching

import (
	"sort"
	"strings"
	"time"

	"github.com/localnerve/carmart/internal/types"
	"github.com/shopspring/decimal"
)

// Reason labels attached to a match, one per satisfied criterion
const (
	ReasonBrand    = "matches brand preference"
	ReasonType     = "matches type preference"
	ReasonYear     = "meets year requirement"
	ReasonMileage  = "mileage within acceptable range"
	ReasonBudget   = "price within budget"
	ReasonFallback = "popular pick for you"

	// ReasonSeparator joins reason labels into the stored reason text
	ReasonSeparator = "; "
)

var wanUnit = decimal.NewFromInt(10000)

// Weights are the non-negative contributions of each criterion
type Weights struct {
	Brand   int
	Type    int
	Year    int
	Mileage int
	Budget  int
	// Floor is assigned when no criterion matched
	Floor int
}

// Config tunes the engine
type Config struct {
	Weights Weights
	// Threshold is the minimum score a candidate needs to be kept
	Threshold int
	// Limit truncates the ranked result
	Limit int
	// MaxYear is the newest acceptable model year. Zero means the current
	// year, read from Now on every scoring call.
	MaxYear int
	// Now is the clock behind a zero MaxYear; nil means time.Now
	Now func() time.Time
}

// DefaultConfig returns the standard 30/25/20/15/10 weighting with a floor of
// 10, a threshold of 20 and six results.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Brand:   30,
			Type:    25,
			Year:    20,
			Mileage: 15,
			Budget:  10,
			Floor:   10,
		},
		Threshold: 20,
		Limit:     6,
	}
}

// Profile is a preference record reduced to what scoring needs
type Profile struct {
	Brands        map[uint64]struct{}
	Types         map[uint64]struct{}
	Budget        types.BudgetBand
	MinYear       int
	MaxMileageWan decimal.Decimal
}

// NewProfile builds a Profile from id slices
func NewProfile(brandIDs, typeIDs []uint64, budget types.BudgetBand, minYear int, maxMileageWan decimal.Decimal) Profile {
	return Profile{
		Brands:        toSet(brandIDs),
		Types:         toSet(typeIDs),
		Budget:        budget,
		MinYear:       minYear,
		MaxMileageWan: maxMileageWan,
	}
}

// Candidate is an approved listing as seen by the engine. Mileage and Price
// are raw units (kilometres, currency).
type Candidate struct {
	ID      uint64
	BrandID uint64
	TypeID  uint64
	Year    int
	Mileage decimal.Decimal
	Price   decimal.Decimal
}

// Match is a scored candidate
type Match struct {
	Candidate Candidate
	Score     int
	Reasons   []string
}

// Reason joins the match reasons into display text
func (m Match) Reason() string {
	return strings.Join(m.Reasons, ReasonSeparator)
}

// Engine ranks candidates for a profile
type Engine struct {
	cfg Config
}

// NewEngine creates an engine. Zero-valued limit/threshold fields are taken
// from DefaultConfig; a zero MaxYear follows the clock.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.Weights == (Weights{}) {
		cfg.Weights = def.Weights
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.MaxYear < 0 {
		cfg.MaxYear = 0
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{cfg: cfg}
}

// MaxYear returns the newest model year accepted right now
func (e *Engine) MaxYear() int {
	if e.cfg.MaxYear > 0 {
		return e.cfg.MaxYear
	}
	return e.cfg.Now().Year()
}

// Config returns the effective configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Score computes the match score and reasons for one candidate
func (e *Engine) Score(p Profile, c Candidate) (int, []string) {
	return e.score(p, c, e.MaxYear())
}

func (e *Engine) score(p Profile, c Candidate, maxYear int) (int, []string) {
	w := e.cfg.Weights
	score := 0
	var reasons []string

	if _, ok := p.Brands[c.BrandID]; ok {
		score += w.Brand
		reasons = append(reasons, ReasonBrand)
	}

	if _, ok := p.Types[c.TypeID]; ok {
		score += w.Type
		reasons = append(reasons, ReasonType)
	}

	if c.Year >= p.MinYear && c.Year <= maxYear {
		score += w.Year
		reasons = append(reasons, ReasonYear)
	}

	if ToWan(c.Mileage).LessThanOrEqual(p.MaxMileageWan) {
		score += w.Mileage
		reasons = append(reasons, ReasonMileage)
	}

	if p.Budget.Contains(ToWan(c.Price)) {
		score += w.Budget
		reasons = append(reasons, ReasonBudget)
	}

	if score == 0 {
		return w.Floor, []string{ReasonFallback}
	}

	return score, reasons
}

// Recommend scores every candidate, keeps those at or above the threshold,
// orders them by descending score and truncates to the limit. Candidates
// with equal scores keep their input order.
func (e *Engine) Recommend(p Profile, candidates []Candidate) []Match {
	maxYear := e.MaxYear()
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		score, reasons := e.score(p, c, maxYear)
		if score < e.cfg.Threshold {
			continue
		}
		matches = append(matches, Match{Candidate: c, Score: score, Reasons: reasons})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > e.cfg.Limit {
		matches = matches[:e.cfg.Limit]
	}
	return matches
}

// ToWan converts a raw amount to wan
func ToWan(d decimal.Decimal) decimal.Decimal {
	return d.Div(wanUnit)
}

func toSet(ids []uint64) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
