package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/gridstate/internal/filter"
	"github.com/zjrosen/gridstate/internal/gridstate"
)

// ErrInvalidQuery is returned when a URL query does not describe a snapshot.
var ErrInvalidQuery = errors.New("invalid snapshot query")

// Query parameter names.
const (
	ParamPage    = "page"
	ParamSize    = "size"
	ParamSort    = "sort"
	ParamReverse = "reverse"
	ParamFilter  = "filter"
)

// JSON encodes s as indented JSON.
func (s Snapshot) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot json: %w", err)
	}
	return data, nil
}

// ParseJSON decodes a snapshot written by json.Marshal.
func ParseJSON(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot json: %w", err)
	}
	return s, nil
}

// YAML encodes s as a YAML document.
func (s Snapshot) YAML() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot yaml: %w", err)
	}
	return data, nil
}

// ParseYAML decodes a snapshot YAML document.
func ParseYAML(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot yaml: %w", err)
	}
	return s, nil
}

// Query encodes s as URL query parameters. The page is written as a 1-based
// page number; each filter is one JSON-valued "filter" parameter, in order.
func (s Snapshot) Query() url.Values {
	q := url.Values{}
	if s.Page != nil && s.Page.Size > 0 {
		q.Set(ParamPage, strconv.Itoa(s.Page.From/s.Page.Size+1))
		q.Set(ParamSize, strconv.Itoa(s.Page.Size))
	}
	if s.Sort != nil {
		q.Set(ParamSort, s.Sort.By)
		if s.Sort.Reverse {
			q.Set(ParamReverse, "true")
		}
	}
	for _, fs := range s.Filters {
		// filter.State only holds JSON-safe fields.
		data, _ := json.Marshal(fs)
		q.Add(ParamFilter, string(data))
	}
	return q
}

// ParseQuery decodes parameters written by Query. Queries do not carry the
// total item count, so the page's To index is the nominal end of the window.
func ParseQuery(q url.Values) (Snapshot, error) {
	var s Snapshot

	if size := q.Get(ParamSize); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil || n < 0 {
			return Snapshot{}, fmt.Errorf("%w: size %q", ErrInvalidQuery, size)
		}
		page := 1
		if raw := q.Get(ParamPage); raw != "" {
			page, err = strconv.Atoi(raw)
			if err != nil || page < 1 {
				return Snapshot{}, fmt.Errorf("%w: page %q", ErrInvalidQuery, raw)
			}
		}
		s.Page = pageState(page, n)
	}

	if by := q.Get(ParamSort); by != "" {
		reverse := false
		if raw := q.Get(ParamReverse); raw != "" {
			var err error
			reverse, err = strconv.ParseBool(raw)
			if err != nil {
				return Snapshot{}, fmt.Errorf("%w: reverse %q", ErrInvalidQuery, raw)
			}
		}
		s.Sort = &Sort{By: by, Reverse: reverse}
	}

	for i, raw := range q[ParamFilter] {
		var fs filter.State
		if err := json.Unmarshal([]byte(raw), &fs); err != nil {
			return Snapshot{}, fmt.Errorf("%w: filter %d: %v", ErrInvalidQuery, i, err)
		}
		s.Filters = append(s.Filters, fs)
	}
	return s, nil
}

// URL returns base with s encoded as its query.
func (s Snapshot) URL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	u.RawQuery = s.Query().Encode()
	return u.String(), nil
}

func pageState(page, size int) *gridstate.PageState {
	if size == 0 {
		return &gridstate.PageState{}
	}
	return &gridstate.PageState{From: (page - 1) * size, To: page*size - 1, Size: size}
}
