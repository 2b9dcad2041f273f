package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"foodrescue/internal/core"
	"foodrescue/internal/mapper"
)

var (
	errBadRequest = errors.New("bad request")
	errTooLarge   = errors.New("request body too large")
)

// decodeEntries reads a JSON object or an array of objects. single reports
// whether the body was a lone object, so the response can mirror its shape.
func decodeEntries(r *http.Request) (drafts []core.Entry, single bool, err error) {
	body, err := readLimited(r.Body, maxJSONBytes)
	if err != nil {
		return nil, false, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, false, fmt.Errorf("%w: empty body", errBadRequest)
	}

	var reqs []entryRequest
	if body[0] == '[' {
		if err := json.Unmarshal(body, &reqs); err != nil {
			return nil, false, fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
		}
	} else {
		var one entryRequest
		if err := json.Unmarshal(body, &one); err != nil {
			return nil, false, fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
		}
		reqs, single = []entryRequest{one}, true
	}

	drafts = make([]core.Entry, 0, len(reqs))
	for _, req := range reqs {
		drafts = append(drafts, req.toEntry())
	}
	return drafts, single, nil
}

func (req entryRequest) toEntry() core.Entry {
	return core.Entry{
		FoodType:      core.FoodType(req.FoodType),
		ItemName:      req.ItemName,
		Quantity:      core.ParseQuantity(req.Quantity),
		Unit:          req.Unit,
		ExpiryDate:    mapper.ParseCellDate(req.ExpiryDate),
		Donor:         req.Donor,
		VolunteerName: req.VolunteerName,
		Notes:         req.Notes,
	}
}

// readUpload returns the import payload: the "file" part of a multipart
// form, or the raw request body otherwise.
func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
		file, _, err := r.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, errTooLarge
			}
			return nil, fmt.Errorf("%w: missing \"file\" form field", errBadRequest)
		}
		defer file.Close()
		return readLimited(file, maxUploadBytes)
	}
	return readLimited(r.Body, maxUploadBytes)
}

func readLimited(rd io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(rd, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(b)) > limit {
		return nil, errTooLarge
	}
	return b, nil
}

// parseLimit reads ?limit=; missing or malformed values yield 0, which the
// service replaces with its default.
func parseLimit(r *http.Request) int {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func parseBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}
