// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import "fmt"

// PeriodDefinition is a named time-of-day window tracked during rate
// aggregation, e.g. the evening peak
type PeriodDefinition struct {
	Name  string
	Start TimeOfDay
	End   TimeOfDay
	Label string
	Color string
}

// PeriodPatch carries a partial update for a period definition. Nil fields
// leave the existing value unchanged.
type PeriodPatch struct {
	Start *TimeOfDay
	End   *TimeOfDay
	Label *string
	Color *string
}

// PeriodTable is an ordered registry of period definitions. It replaces the
// process-wide period globals of earlier tooling: build one from defaults,
// amend it from configuration, then pass it into the rate aggregator.
type PeriodTable struct {
	order []string
	defs  map[string]*PeriodDefinition
}

// DefaultPeriods returns the standard tracked periods
func DefaultPeriods() *PeriodTable {
	pt := &PeriodTable{defs: make(map[string]*PeriodDefinition)}
	for _, d := range []PeriodDefinition{
		{Name: "night", Start: MustTimeOfDay("0130"), End: MustTimeOfDay("0500"), Label: "Night off peak", Color: "green"},
		{Name: "am", Start: MustTimeOfDay("0600"), End: MustTimeOfDay("1000"), Label: "Morning peak", Color: "orange"},
		{Name: "pm", Start: MustTimeOfDay("1230"), End: MustTimeOfDay("1500"), Label: "Afternoon off peak", Color: "grey"},
		{Name: "peak", Start: MustTimeOfDay("1600"), End: MustTimeOfDay("1900"), Label: "Evening peak", Color: "red"},
	} {
		def := d
		pt.order = append(pt.order, d.Name)
		pt.defs[d.Name] = &def
	}
	return pt
}

// Set creates the named period if absent and updates only the fields the
// patch provides. No validation happens at write time; a start-after-end
// window is rejected later by ExpandSlots.
func (pt *PeriodTable) Set(name string, patch PeriodPatch) {
	def, ok := pt.defs[name]
	if !ok {
		def = &PeriodDefinition{Name: name}
		pt.order = append(pt.order, name)
		pt.defs[name] = def
	}
	if patch.Start != nil {
		def.Start = *patch.Start
	}
	if patch.End != nil {
		def.End = *patch.End
	}
	if patch.Label != nil {
		def.Label = *patch.Label
	}
	if patch.Color != nil {
		def.Color = *patch.Color
	}
}

// Names returns the period names in registration order
func (pt *PeriodTable) Names() []string {
	names := make([]string, len(pt.order))
	copy(names, pt.order)
	return names
}

// Get returns the named period definition
func (pt *PeriodTable) Get(name string) (PeriodDefinition, bool) {
	def, ok := pt.defs[name]
	if !ok {
		return PeriodDefinition{}, false
	}
	return *def, true
}

// ExpandSlots walks from the period's start to its end in 30-minute steps and
// returns the full inclusive slot list. A period whose start is after its end
// fails with InvalidPeriodError. A period with start == end expands to exactly
// one slot.
func (pt *PeriodTable) ExpandSlots(name string) ([]TimeOfDay, error) {
	def, ok := pt.defs[name]
	if !ok {
		return nil, fmt.Errorf("unknown period %q", name)
	}
	if def.Start > def.End {
		return nil, &InvalidPeriodError{Name: name, Start: def.Start, End: def.End}
	}
	// Plain addition, not the wrapping AddMinutes: the walk must terminate
	// even if an off-grid end slips past parsing
	var slots []TimeOfDay
	for t := def.Start; t <= def.End; t += SlotMinutes {
		slots = append(slots, t)
	}
	return slots, nil
}

// Span returns the period's inclusive display range. The configured end is
// exclusive for display, so the shown end is one minute before it (e.g. a
// period ending at 0500 displays as "... to 0459"). ExpandSlots still includes
// the end slot; rate averaging drops that final slot to match this span.
func (pt *PeriodTable) Span(name string) (TimeOfDay, TimeOfDay, error) {
	def, ok := pt.defs[name]
	if !ok {
		return 0, 0, fmt.Errorf("unknown period %q", name)
	}
	return def.Start, def.End.AddMinutes(-1), nil
}
