package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/camp-schedule-api/internal/models"
)

// ClusteringMode selects how overlapping resource usages are grouped.
type ClusteringMode string

const (
	// ClusteringSweep groups usages transitively with a sweep line over start times.
	ClusteringSweep ClusteringMode = "sweep"
	// ClusteringPairwise groups each unprocessed usage with everything overlapping it.
	ClusteringPairwise ClusteringMode = "pairwise"
)

// DefaultIgnoredResources are pseudo-resources that never conflict.
var DefaultIgnoredResources = []string{"free", "lunch", "dismissal"}

// ValidatorConfig configures the conflict validator.
type ValidatorConfig struct {
	IgnoredResources   []string
	RequiredActivities []string
	Clustering         ClusteringMode
}

// ValidationInput is the snapshot a validation pass runs against.
type ValidationInput struct {
	Assignments       models.ScheduleAssignment
	Divisions         []models.Division
	Grid              models.DayGrid
	Resources         models.ResourceProperties
	LeagueAssignments models.LeagueAssignments
}

// ConflictValidator produces conflict reports. Validate is pure and never panics on
// missing configuration.
type ConflictValidator struct {
	ignored    map[string]struct{}
	required   []string
	clustering ClusteringMode
}

// NewConflictValidator constructs a validator.
func NewConflictValidator(cfg ValidatorConfig) *ConflictValidator {
	ignoredList := cfg.IgnoredResources
	if ignoredList == nil {
		ignoredList = DefaultIgnoredResources
	}
	ignored := make(map[string]struct{}, len(ignoredList))
	for _, name := range ignoredList {
		if key := normalizeName(name); key != "" {
			ignored[key] = struct{}{}
		}
	}
	required := make([]string, 0, len(cfg.RequiredActivities))
	for _, term := range cfg.RequiredActivities {
		if key := normalizeName(term); key != "" {
			required = append(required, key)
		}
	}
	clustering := cfg.Clustering
	if clustering != ClusteringPairwise {
		clustering = ClusteringSweep
	}
	return &ConflictValidator{ignored: ignored, required: required, clustering: clustering}
}

type resourceUsage struct {
	Bunk      string
	Division  string
	SlotIndex int
	StartMin  int
	EndMin    int
	Activity  string
}

func (u resourceUsage) overlaps(o resourceUsage) bool {
	return u.StartMin < o.EndMin && o.StartMin < u.EndMin
}

type sharingRule struct {
	capacity     int
	unlimited    bool
	forbidsCross bool
}

// Validate runs every check over the snapshot.
func (v *ConflictValidator) Validate(in ValidationInput) models.ConflictReport {
	report := models.ConflictReport{Errors: []models.Finding{}, Warnings: []models.Finding{}}
	resolver := NewSlotResolver(in.Divisions, in.Grid, in.Assignments)
	bunks := orderedBunks(in.Divisions, in.Assignments)

	report.Errors = append(report.Errors, v.resourceConflicts(in, resolver, bunks)...)
	report.Errors = append(report.Errors, v.repetitions(in, resolver, bunks)...)
	report.Warnings = append(report.Warnings, v.missingRequired(in, resolver, bunks)...)
	report.Warnings = append(report.Warnings, v.emptySlots(in)...)
	return report
}

func (v *ConflictValidator) isIgnored(name string) bool {
	_, ok := v.ignored[normalizeName(name)]
	return ok
}

// --- resource usage ---

func (v *ConflictValidator) collectUsages(in ValidationInput, resolver *SlotResolver, bunks []string) (map[string][]resourceUsage, map[string]string) {
	usages := make(map[string][]resourceUsage)
	display := make(map[string]string)
	for _, bunk := range bunks {
		entries, _ := in.Assignments.Lookup(bunk)
		division, _ := resolver.ResolveDivision(bunk)
		grid := resolver.GridForBunk(bunk)
		for i, entry := range entries {
			if entry == nil || entry.IsLeague {
				continue
			}
			name := strings.TrimSpace(entry.Resource)
			if name == "" || v.isIgnored(name) || i >= len(grid) {
				continue
			}
			key := normalizeName(name)
			if _, seen := display[key]; !seen {
				display[key] = name
			}
			usages[key] = append(usages[key], resourceUsage{
				Bunk:      bunk,
				Division:  division,
				SlotIndex: i,
				StartMin:  grid[i].StartMin,
				EndMin:    grid[i].EndMin,
				Activity:  entry.ActivityName(),
			})
		}
	}
	return usages, display
}

func (v *ConflictValidator) resourceConflicts(in ValidationInput, resolver *SlotResolver, bunks []string) []models.Finding {
	usages, display := v.collectUsages(in, resolver, bunks)
	keys := make([]string, 0, len(usages))
	for key := range usages {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	findings := make([]models.Finding, 0)
	for _, key := range keys {
		name := display[key]
		rule := resolveSharing(in.Resources, name)
		if rule.unlimited {
			continue
		}
		for _, cluster := range v.cluster(usages[key]) {
			findings = append(findings, evaluateCluster(name, rule, cluster, v.clustering == ClusteringPairwise)...)
		}
	}
	return findings
}

func (v *ConflictValidator) cluster(usages []resourceUsage) [][]resourceUsage {
	if v.clustering == ClusteringPairwise {
		return pairwiseClusters(usages)
	}
	return sweepClusters(usages)
}

func sweepClusters(usages []resourceUsage) [][]resourceUsage {
	sorted := make([]resourceUsage, len(usages))
	copy(sorted, usages)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartMin == sorted[j].StartMin {
			return sorted[i].EndMin < sorted[j].EndMin
		}
		return sorted[i].StartMin < sorted[j].StartMin
	})

	var clusters [][]resourceUsage
	var current []resourceUsage
	maxEnd := 0
	for _, u := range sorted {
		if len(current) > 0 && u.StartMin < maxEnd {
			current = append(current, u)
			if u.EndMin > maxEnd {
				maxEnd = u.EndMin
			}
			continue
		}
		if len(current) > 0 {
			clusters = append(clusters, current)
		}
		current = []resourceUsage{u}
		maxEnd = u.EndMin
	}
	if len(current) > 0 {
		clusters = append(clusters, current)
	}
	return clusters
}

func pairwiseClusters(usages []resourceUsage) [][]resourceUsage {
	processed := make([]bool, len(usages))
	var clusters [][]resourceUsage
	for i, seed := range usages {
		if processed[i] {
			continue
		}
		processed[i] = true
		cluster := []resourceUsage{seed}
		for j := i + 1; j < len(usages); j++ {
			if !processed[j] && seed.overlaps(usages[j]) {
				processed[j] = true
				cluster = append(cluster, usages[j])
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

func resolveSharing(resources models.ResourceProperties, name string) sharingRule {
	res, ok := resources.Lookup(name)
	if !ok {
		return sharingRule{capacity: 1, forbidsCross: true}
	}
	switch res.Sharing.Type {
	case models.SharingUnrestricted:
		return sharingRule{unlimited: true}
	case models.SharingCustom:
		capacity := res.Sharing.Capacity
		if capacity <= 0 {
			capacity = models.DefaultCustomCapacity
		}
		return sharingRule{capacity: capacity, forbidsCross: !res.Sharing.AllowCrossDivision}
	default:
		return sharingRule{capacity: 1, forbidsCross: true}
	}
}

// evaluateCluster reports cross-division conflicts and capacity overruns for one
// cluster. Pairwise clusters compare each division's usage count with capacity;
// sweep clusters can chain usages that never meet, so only the peak of
// simultaneous usages is compared.
func evaluateCluster(resource string, rule sharingRule, cluster []resourceUsage, countAll bool) []models.Finding {
	if len(cluster) < 2 {
		return nil
	}
	if rule.forbidsCross {
		if involved := crossDivisionOverlaps(cluster); len(involved) > 0 {
			start, end := usageSpan(involved)
			divisions := uniqueDivisions(involved)
			return []models.Finding{{
				Kind:        models.FindingCrossDivisionConflict,
				Resource:    resource,
				Divisions:   divisions,
				Bunks:       uniqueBunks(involved),
				SlotIndices: uniqueSlots(involved),
				StartMin:    start,
				EndMin:      end,
				Count:       len(involved),
				Message: fmt.Sprintf("%s is shared across divisions %s between %s and %s",
					resource, strings.Join(divisions, ", "), FormatTime(start), FormatTime(end)),
			}}
		}
	}

	var findings []models.Finding
	for _, division := range uniqueDivisions(cluster) {
		members := make([]resourceUsage, 0, len(cluster))
		for _, u := range cluster {
			if u.Division == division {
				members = append(members, u)
			}
		}
		peak := members
		if !countAll {
			peak = peakConcurrent(members)
		}
		if len(peak) <= rule.capacity {
			continue
		}
		start, end := usageSpan(peak)
		label := division
		if label == "" {
			label = "unassigned bunks"
		}
		findings = append(findings, models.Finding{
			Kind:        models.FindingCapacityExceeded,
			Resource:    resource,
			Divisions:   nonEmpty([]string{division}),
			Bunks:       uniqueBunks(peak),
			SlotIndices: uniqueSlots(peak),
			StartMin:    start,
			EndMin:      end,
			Count:       len(peak),
			Capacity:    rule.capacity,
			Message: fmt.Sprintf("%s used by %d bunks of %s (capacity %d) between %s and %s",
				resource, len(peak), label, rule.capacity, FormatTime(start), FormatTime(end)),
		})
	}
	return findings
}

// crossDivisionOverlaps returns usages that overlap a usage of a different, known division.
func crossDivisionOverlaps(cluster []resourceUsage) []resourceUsage {
	marked := make([]bool, len(cluster))
	for i := range cluster {
		for j := i + 1; j < len(cluster); j++ {
			a, b := cluster[i], cluster[j]
			if a.Division == "" || b.Division == "" || a.Division == b.Division {
				continue
			}
			if a.overlaps(b) {
				marked[i], marked[j] = true, true
			}
		}
	}
	involved := make([]resourceUsage, 0)
	for i, u := range cluster {
		if marked[i] {
			involved = append(involved, u)
		}
	}
	return involved
}

// peakConcurrent returns the largest set of simultaneously active usages.
func peakConcurrent(usages []resourceUsage) []resourceUsage {
	var best []resourceUsage
	for _, at := range usages {
		active := make([]resourceUsage, 0, len(usages))
		for _, u := range usages {
			if u.StartMin <= at.StartMin && at.StartMin < u.EndMin {
				active = append(active, u)
			}
		}
		if len(active) > len(best) {
			best = active
		}
	}
	return best
}

// --- per-bunk checks ---

func (v *ConflictValidator) repetitions(in ValidationInput, resolver *SlotResolver, bunks []string) []models.Finding {
	findings := make([]models.Finding, 0)
	for _, bunk := range bunks {
		entries, _ := in.Assignments.Lookup(bunk)
		division, _ := resolver.ResolveDivision(bunk)
		grid := resolver.GridForBunk(bunk)

		seen := make(map[string][]int)
		names := make(map[string]string)
		order := make([]string, 0)
		for i, entry := range entries {
			if entry == nil || entry.Continuation || entry.IsLeague {
				continue
			}
			name := entry.ActivityName()
			if name == "" || v.isIgnored(name) || v.isIgnored(entry.Resource) {
				continue
			}
			key := normalizeName(name)
			if _, ok := seen[key]; !ok {
				order = append(order, key)
				names[key] = name
			}
			seen[key] = append(seen[key], i)
		}
		for _, key := range order {
			slots := seen[key]
			if len(slots) < 2 {
				continue
			}
			start, end := slotSpan(grid, slots)
			findings = append(findings, models.Finding{
				Kind:        models.FindingSameDayRepetition,
				Activity:    names[key],
				Divisions:   nonEmpty([]string{division}),
				Bunks:       []string{bunk},
				SlotIndices: slots,
				StartMin:    start,
				EndMin:      end,
				Count:       len(slots),
				Message:     fmt.Sprintf("bunk %s has %s %d times today", bunk, names[key], len(slots)),
			})
		}
	}
	return findings
}

func (v *ConflictValidator) missingRequired(in ValidationInput, resolver *SlotResolver, bunks []string) []models.Finding {
	findings := make([]models.Finding, 0)
	for _, term := range v.required {
		for _, bunk := range bunks {
			entries, _ := in.Assignments.Lookup(bunk)
			if !models.HasAssignedSlot(entries) {
				continue
			}
			found := false
			for _, entry := range entries {
				if entry == nil {
					continue
				}
				if strings.Contains(normalizeName(entry.ActivityName()), term) || strings.Contains(normalizeName(entry.Resource), term) {
					found = true
					break
				}
			}
			if found {
				continue
			}
			division, _ := resolver.ResolveDivision(bunk)
			start, end, _ := resolver.GridForBunk(bunk).Span()
			findings = append(findings, models.Finding{
				Kind:      models.FindingMissingRequiredActivity,
				Activity:  term,
				Divisions: nonEmpty([]string{division}),
				Bunks:     []string{bunk},
				StartMin:  start,
				EndMin:    end,
				Message:   fmt.Sprintf("bunk %s has no %s scheduled", bunk, term),
			})
		}
	}
	return findings
}

func (v *ConflictValidator) emptySlots(in ValidationInput) []models.Finding {
	findings := make([]models.Finding, 0)
	for _, div := range in.Divisions {
		if len(div.Bunks) == 0 || !divisionHasRows(div, in.Assignments) {
			continue
		}
		grid := in.Grid.ForDivision(div.Name)
		for i, slot := range grid {
			if in.LeagueAssignments.HasMatchup(div.Name, i) {
				continue
			}
			empty := true
			for _, bunk := range div.Bunks {
				entries, _ := in.Assignments.Lookup(bunk)
				entry := entryAt(entries, i)
				if !entry.IsBlank() || entry.RecordsLeague() {
					empty = false
					break
				}
			}
			if !empty {
				continue
			}
			findings = append(findings, models.Finding{
				Kind:        models.FindingEmptySlot,
				Divisions:   []string{div.Name},
				Bunks:       append([]string(nil), div.Bunks...),
				SlotIndices: []int{i},
				StartMin:    slot.StartMin,
				EndMin:      slot.EndMin,
				Message:     fmt.Sprintf("%s has nothing scheduled %s", div.Name, SlotLabel(slot.StartMin, slot.EndMin)),
			})
		}
	}
	return findings
}

// --- helpers ---

// orderedBunks lists bunks in division order, then any unclaimed assignment keys sorted.
func orderedBunks(divisions []models.Division, assignments models.ScheduleAssignment) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0, len(assignments))
	for _, div := range divisions {
		for _, bunk := range div.Bunks {
			key := models.NormalizeBunkID(bunk)
			if _, dup := seen[key]; dup {
				continue
			}
			if _, ok := assignments.Lookup(bunk); !ok {
				continue
			}
			seen[key] = struct{}{}
			result = append(result, bunk)
		}
	}
	extra := make([]string, 0)
	for bunk := range assignments {
		if _, ok := seen[models.NormalizeBunkID(bunk)]; !ok {
			extra = append(extra, bunk)
		}
	}
	sort.Strings(extra)
	return append(result, extra...)
}

func divisionHasRows(div models.Division, assignments models.ScheduleAssignment) bool {
	for _, bunk := range div.Bunks {
		if _, ok := assignments.Lookup(bunk); ok {
			return true
		}
	}
	return false
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func usageSpan(usages []resourceUsage) (int, int) {
	start, end := usages[0].StartMin, usages[0].EndMin
	for _, u := range usages[1:] {
		if u.StartMin < start {
			start = u.StartMin
		}
		if u.EndMin > end {
			end = u.EndMin
		}
	}
	return start, end
}

func slotSpan(grid models.DivisionTimeGrid, slots []int) (int, int) {
	start, end := 0, 0
	for n, i := range slots {
		if i >= len(grid) {
			continue
		}
		if n == 0 || grid[i].StartMin < start {
			start = grid[i].StartMin
		}
		if grid[i].EndMin > end {
			end = grid[i].EndMin
		}
	}
	return start, end
}

func uniqueDivisions(usages []resourceUsage) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0)
	for _, u := range usages {
		if _, ok := seen[u.Division]; ok {
			continue
		}
		seen[u.Division] = struct{}{}
		result = append(result, u.Division)
	}
	return result
}

func uniqueBunks(usages []resourceUsage) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0, len(usages))
	for _, u := range usages {
		if _, ok := seen[u.Bunk]; ok {
			continue
		}
		seen[u.Bunk] = struct{}{}
		result = append(result, u.Bunk)
	}
	return result
}

func uniqueSlots(usages []resourceUsage) []int {
	seen := make(map[int]struct{})
	result := make([]int, 0, len(usages))
	for _, u := range usages {
		if _, ok := seen[u.SlotIndex]; ok {
			continue
		}
		seen[u.SlotIndex] = struct{}{}
		result = append(result, u.SlotIndex)
	}
	sort.Ints(result)
	return result
}

func nonEmpty(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}
