// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package releases

import (
	"slices"
)

// Prioritize orders decisions for download. Decisions whose item allows a
// download are grouped per item, best first; groups keep the order in which
// their item first appeared. Every other decision follows in input order and
// is never ranked.
func (s *Service) Prioritize(decisions []Decision) []Decision {
	return PrioritizeDecisions(decisions, NewComparator(s.settings(), s.now()))
}

// PrioritizeDecisions is Prioritize with an explicit comparator.
func PrioritizeDecisions(decisions []Decision, cmp *Comparator) []Decision {
	var (
		order  []int
		groups = make(map[int][]Decision)
		rest   []Decision
	)
	for _, d := range decisions {
		r := d.Subject
		if r == nil || r.Item == nil || !r.DownloadAllowed {
			rest = append(rest, d)
			continue
		}
		id := r.Item.ID
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], d)
	}

	out := make([]Decision, 0, len(decisions))
	for _, id := range order {
		group := groups[id]
		slices.SortStableFunc(group, func(a, b Decision) int {
			return cmp.Compare(b.Subject, a.Subject)
		})
		out = append(out, group...)
	}
	return append(out, rest...)
}

// BestPerItem returns the first approved decision of each ranked item group.
func BestPerItem(prioritized []Decision) []Decision {
	seen := make(map[int]struct{})
	var out []Decision
	for _, d := range prioritized {
		if !d.Approved() || d.Subject == nil || d.Subject.Item == nil || !d.Subject.DownloadAllowed {
			continue
		}
		if _, ok := seen[d.Subject.Item.ID]; ok {
			continue
		}
		seen[d.Subject.Item.ID] = struct{}{}
		out = append(out, d)
	}
	return out
}
