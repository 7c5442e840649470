package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/pkordes/metro-commuter/internal/domain"
)

// segmentCSVHeaders is the first row of a CSV segment listing.
var segmentCSVHeaders = []string{
	"id", "run_name", "source", "destination", "departure", "arrival", "fare", "frequency",
}

// ItineraryList is the body of GET /search in itinerary mode.
type ItineraryList struct {
	Data []domain.ItineraryOption `json:"data"`
}

// SegmentList is the body of GET /search in direct mode.
type SegmentList struct {
	Data       []domain.Segment `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// Search handles GET /search.
//
// With ?from= or ?to= it resolves itinerary options between two stations.
// Otherwise it lists raw segments filtered by ?station= (substring) and
// ?time= (departure prefix), paged with ?page= and ?limit=; ?format=csv
// returns the page as CSV instead of JSON.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Has("from") || q.Has("to") {
		s.searchItineraries(w, r)
		return
	}
	s.searchSegments(w, r)
}

func (s *Server) searchItineraries(w http.ResponseWriter, r *http.Request) {
	from, ok := queryString(w, r, "from")
	if !ok {
		return
	}
	to, ok := queryString(w, r, "to")
	if !ok {
		return
	}

	options, err := s.search.Search(r.Context(), from, to)
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, ItineraryList{Data: options})
}

func (s *Server) searchSegments(w http.ResponseWriter, r *http.Request) {
	var f domain.SegmentFilter
	var format string
	var ok bool
	if f.Station, ok = queryString(w, r, "station"); !ok {
		return
	}
	if f.TimePrefix, ok = queryString(w, r, "time"); !ok {
		return
	}
	if format, ok = queryString(w, r, "format"); !ok {
		return
	}
	if format != "" && format != "json" && format != "csv" {
		requestError(w, "format must be json or csv")
		return
	}
	params, ok := queryPagination(w, r)
	if !ok {
		return
	}

	segs, total, err := s.search.SearchSegments(r.Context(), f, params)
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}

	if format == "csv" {
		writeSegmentsCSV(w, segs)
		return
	}
	writeJSON(w, http.StatusOK, SegmentList{
		Data:       segs,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// writeSegmentsCSV encodes segments as CSV. A missing fare is an empty cell.
func writeSegmentsCSV(w http.ResponseWriter, segs []domain.Segment) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(segmentCSVHeaders)
	for _, seg := range segs {
		//nolint:errcheck
		cw.Write(segmentToCSVRecord(seg))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(buf.Bytes())
}

func segmentToCSVRecord(seg domain.Segment) []string {
	fare := ""
	if seg.Fare != nil {
		fare = strconv.FormatFloat(*seg.Fare, 'f', -1, 64)
	}
	return []string{
		seg.ID.String(),
		seg.RunName,
		seg.Source,
		seg.Destination,
		seg.Departure,
		seg.Arrival,
		fare,
		strconv.Itoa(seg.Frequency),
	}
}
