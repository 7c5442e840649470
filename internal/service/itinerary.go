// Package service contains the business logic for the metro commuter API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/metro-commuter/internal/domain"
	"github.com/pkordes/metro-commuter/internal/repo"
)

// ItineraryService resolves station pairs into priced itinerary options and
// serves the direct segment listing. It holds no state of its own.
type ItineraryService struct {
	segments      repo.SegmentRepo
	stations      repo.StationRepo
	fallbackOrder []string
	fares         FarePolicy
	log           *slog.Logger
}

// NewItineraryService constructs an ItineraryService.
// fallbackOrder is the line order used when no station carries a position;
// it may be empty.
func NewItineraryService(segments repo.SegmentRepo, stations repo.StationRepo, fallbackOrder []string, fares FarePolicy, log *slog.Logger) *ItineraryService {
	if log == nil {
		log = slog.Default()
	}
	return &ItineraryService{
		segments:      segments,
		stations:      stations,
		fallbackOrder: fallbackOrder,
		fares:         fares,
		log:           log,
	}
}

// Search returns one itinerary option per train run that serves from → to,
// in the order the runs were discovered. Blank or identical stations yield
// an empty, non-nil result. Station names match case-insensitively, exactly
// or by containment in either direction.
func (s *ItineraryService) Search(ctx context.Context, from, to string) ([]domain.ItineraryOption, error) {
	src, dst := normalize(from), normalize(to)
	if src == "" || dst == "" || src == dst {
		return []domain.ItineraryOption{}, nil
	}

	order, err := s.LineOrder(ctx)
	if err != nil {
		// The line order is advisory; searching without it is still correct.
		s.log.WarnContext(ctx, "line order unavailable", "error", err)
	}
	if sameStation(order, src, dst) {
		return []domain.ItineraryOption{}, nil
	}

	all, err := s.segments.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.Search: %w", err)
	}

	options := []domain.ItineraryOption{}
	for _, run := range candidateRuns(all, src, dst) {
		chain, err := s.segments.List(ctx, run)
		if err != nil {
			return nil, fmt.Errorf("service.ItineraryService.Search: run %q: %w", run, err)
		}
		sortChain(chain)

		if opt, ok := s.resolveRun(chain, src, dst); ok {
			options = append(options, opt)
		}
	}
	return options, nil
}

// SearchSegments is the direct listing path: raw segments whose departure
// starts with f.TimePrefix and whose source or destination contains
// f.Station. It returns one page of matches and the total match count.
func (s *ItineraryService) SearchSegments(ctx context.Context, f domain.SegmentFilter, p domain.PaginationParams) ([]domain.Segment, int, error) {
	all, err := s.segments.List(ctx, "")
	if err != nil {
		return nil, 0, fmt.Errorf("service.ItineraryService.SearchSegments: %w", err)
	}

	station := normalize(f.Station)
	// The prefix is quoted: riders type times, not patterns.
	timePrefix := regexp.MustCompile("^" + regexp.QuoteMeta(strings.TrimSpace(f.TimePrefix)))

	matched := []domain.Segment{}
	for _, seg := range all {
		if !timePrefix.MatchString(seg.Departure) {
			continue
		}
		if station != "" &&
			!strings.Contains(normalize(seg.Source), station) &&
			!strings.Contains(normalize(seg.Destination), station) {
			continue
		}
		matched = append(matched, seg)
	}

	start, end := p.Window(len(matched))
	return matched[start:end], len(matched), nil
}

// LineOrder returns station names in canonical line order: stations that
// carry a position, in position order, or the configured fallback order when
// none do. On a repository error the fallback is returned with the error.
func (s *ItineraryService) LineOrder(ctx context.Context) ([]string, error) {
	stations, err := s.stations.List(ctx)
	if err != nil {
		return s.fallbackOrder, fmt.Errorf("service.ItineraryService.LineOrder: %w", err)
	}

	var order []string
	for _, st := range stations {
		if st.Position != nil {
			order = append(order, st.Name)
		}
	}
	if len(order) == 0 {
		return s.fallbackOrder, nil
	}
	return order, nil
}

// resolveRun picks the slice of chain from the first stop matching src to
// the first later stop whose destination matches dst.
func (s *ItineraryService) resolveRun(chain []domain.Segment, src, dst string) (domain.ItineraryOption, bool) {
	i := slices.IndexFunc(chain, func(seg domain.Segment) bool { return matches(seg.Source, src) })
	if i < 0 {
		return domain.ItineraryOption{}, false
	}
	j := slices.IndexFunc(chain[i:], func(seg domain.Segment) bool { return matches(seg.Destination, dst) })
	if j < 0 {
		return domain.ItineraryOption{}, false
	}
	return buildOption(chain[i:i+j+1], s.fares), true
}

// buildOption materializes an itinerary from a non-empty contiguous chain slice.
func buildOption(slice []domain.Segment, fares FarePolicy) domain.ItineraryOption {
	first, last := slice[0], slice[len(slice)-1]
	opt := domain.ItineraryOption{
		From:       first.Source,
		To:         last.Destination,
		RunName:    first.RunName,
		Departure:  first.Departure,
		Arrival:    last.Arrival,
		Price:      fares.Price(slice),
		Frequency:  first.Frequency,
		SegmentIDs: make([]uuid.UUID, len(slice)),
	}
	for k, seg := range slice {
		opt.SegmentIDs[k] = seg.ID
	}
	return opt
}

// candidateRuns returns, in order of first appearance, the runs with any
// stop matching src or dst. When none match it returns every run.
func candidateRuns(all []domain.Segment, src, dst string) []string {
	var matched, every []string
	seenMatched := map[string]bool{}
	seenEvery := map[string]bool{}

	for _, seg := range all {
		if !seenEvery[seg.RunName] {
			seenEvery[seg.RunName] = true
			every = append(every, seg.RunName)
		}
		if seenMatched[seg.RunName] {
			continue
		}
		if matches(seg.Source, src) || matches(seg.Source, dst) ||
			matches(seg.Destination, src) || matches(seg.Destination, dst) {
			seenMatched[seg.RunName] = true
			matched = append(matched, seg.RunName)
		}
	}

	if len(matched) == 0 {
		return every
	}
	return matched
}

// sortChain orders a run's segments by departure time, then id.
func sortChain(chain []domain.Segment) {
	slices.SortStableFunc(chain, func(a, b domain.Segment) int {
		if c := cmp.Compare(domain.MinutesOfDay(a.Departure), domain.MinutesOfDay(b.Departure)); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
}

// sameStation reports whether src and dst both name the same station of the
// line order. Only an exact match on the folded name counts, so the order
// can reject a pair but never hides a run that serves it.
func sameStation(order []string, src, dst string) bool {
	a, b := canonicalIndex(order, src), canonicalIndex(order, dst)
	return a >= 0 && a == b
}

// canonicalIndex returns the position of q in the line order, or -1.
func canonicalIndex(order []string, q string) int {
	q = foldSpaces(q)
	for i, name := range order {
		if n := foldSpaces(normalize(name)); n != "" && n == q {
			return i
		}
	}
	return -1
}

// foldSpaces collapses runs of inner whitespace ("mg  road" → "mg road").
func foldSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// matches is the loose stop predicate: q equals, contains, or is contained
// by the stop name. Blank stop names never match.
func matches(stop, q string) bool {
	n := normalize(stop)
	if n == "" {
		return false
	}
	return n == q || strings.Contains(n, q) || strings.Contains(q, n)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
