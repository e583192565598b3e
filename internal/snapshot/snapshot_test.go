package snapshot

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/gridstate/internal/filter"
	"github.com/zjrosen/gridstate/internal/gridstate"
)

type row map[string]any

func rowProp(r row, property string) (any, bool) {
	v, ok := r[property]
	return v, ok
}

func ptr[B any](v B) *B { return &v }

func sample() Snapshot {
	return Snapshot{
		Page: &gridstate.PageState{From: 20, To: 29, Size: 10},
		Sort: &Sort{By: "age", Reverse: true},
		Filters: []filter.State{
			{Property: "name", Value: "ali"},
			{Kind: filter.KindNumberInterval, ID: "age", Property: "age", From: ptr(3.0), To: ptr(36.0)},
			{Kind: filter.KindDateInterval, ID: "joined", Property: "joined", FromDate: ptr(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))},
			{Kind: filter.KindColor, ID: "c", Property: "color", AllColors: []string{"red", "blue"}, SelectedColors: map[string]bool{"blue": true}},
			{Kind: filter.KindList, ID: "g", Property: "gender", Values: []string{"f", "m"}, SelectedValue: "m"},
		},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := sample().JSON()
	require.NoError(t, err)
	require.Contains(t, string(data), `"property": "name"`)
	require.NotContains(t, string(data), `"kind": ""`, "compact entries stay compact")

	got, err := ParseJSON(data)
	require.NoError(t, err)
	require.Equal(t, sample().Fingerprint(), got.Fingerprint())
}

func TestYAMLRoundTrip(t *testing.T) {
	data, err := sample().YAML()
	require.NoError(t, err)

	got, err := ParseYAML(data)
	require.NoError(t, err)
	require.Equal(t, sample().Fingerprint(), got.Fingerprint())
}

func TestQueryRoundTrip(t *testing.T) {
	q := sample().Query()
	require.Equal(t, "3", q.Get(ParamPage))
	require.Equal(t, "10", q.Get(ParamSize))
	require.Len(t, q[ParamFilter], 5)

	encoded, err := sample().URL("https://grid.example/people")
	require.NoError(t, err)
	u, err := url.Parse(encoded)
	require.NoError(t, err)

	got, err := ParseQuery(u.Query())
	require.NoError(t, err)
	require.Equal(t, sample().Fingerprint(), got.Fingerprint())
}

func TestParseQuery_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "bad size", query: "size=ten"},
		{name: "bad page", query: "size=10&page=0"},
		{name: "bad reverse", query: "sort=age&reverse=maybe"},
		{name: "bad filter", query: "filter=%7Bnope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			_, err = ParseQuery(q)
			require.True(t, errors.Is(err, ErrInvalidQuery), "got %v", err)
		})
	}
}

func TestParseQuery_Empty(t *testing.T) {
	got, err := ParseQuery(url.Values{})
	require.NoError(t, err)
	require.True(t, got.IsZero())
}

func TestFingerprintChangesWithState(t *testing.T) {
	a := sample()
	b := sample()
	b.Filters[0].Value = "bob"
	require.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	require.NotEmpty(t, a.FingerprintHex())
}

func TestDiff(t *testing.T) {
	same, err := Diff(sample(), sample())
	require.NoError(t, err)
	require.Empty(t, same)

	b := sample()
	b.Sort.Reverse = false
	b.Filters[0].Value = "bob"
	d, err := Diff(sample(), b)
	require.NoError(t, err)
	require.Contains(t, d, "- ")
	require.Contains(t, d, "+ ")
	require.Contains(t, d, "bob")
	require.Contains(t, d, "reverse: true")
}

func TestProviderRoundTrip(t *testing.T) {
	factory := filter.NewFactory[row](rowProp)
	p := gridstate.New[row](rowProp)

	st, err := Restore(sample(), factory)
	require.NoError(t, err)
	p.SetState(context.Background(), st)

	got := FromState(p.State())
	require.Equal(t, sample().Fingerprint(), got.Fingerprint())
	require.Len(t, p.Filters().ActiveFilters(), 5)
}

func TestFromProvider_KeepsExactMode(t *testing.T) {
	factory := filter.NewFactory[row](rowProp)
	p := gridstate.New[row](rowProp)
	defer p.Close()
	name := filter.NewStringFilter[row]("name", rowProp, filter.Exact())
	p.Filters().Add(name)
	name.SetValue("ali")

	s := FromProvider(p)
	require.Equal(t, []filter.State{{Kind: filter.KindString, Property: "name", Value: "ali", Exact: true}}, s.Filters)

	data, err := s.JSON()
	require.NoError(t, err)
	parsed, err := ParseJSON(data)
	require.NoError(t, err)

	fresh := gridstate.New[row](rowProp)
	defer fresh.Close()
	st, err := Restore(parsed, factory)
	require.NoError(t, err)
	fresh.SetState(context.Background(), st)

	active := fresh.Filters().ActiveFilters()
	require.Len(t, active, 1)
	require.True(t, active[0].State().Exact)
	require.False(t, active[0].Accepts(row{"name": "Alice"}))
	require.True(t, active[0].Accepts(row{"name": "ALI"}))
	require.Equal(t, s.Fingerprint(), FromProvider(fresh).Fingerprint())
}

func TestFromProvider_MatchesFromStateForOtherParts(t *testing.T) {
	factory := filter.NewFactory[row](rowProp)
	p := gridstate.New[row](rowProp)
	defer p.Close()
	st, err := Restore(sample(), factory)
	require.NoError(t, err)
	p.SetState(context.Background(), st)

	full := FromProvider(p)
	compact := FromState(p.State())
	require.Equal(t, compact.Page, full.Page)
	require.Equal(t, compact.Sort, full.Sort)
	require.Len(t, full.Filters, len(compact.Filters))
	require.Equal(t, filter.KindString, full.Filters[0].Kind)
	require.Equal(t, compact.Filters[1:], full.Filters[1:])
}

func TestRestore_UnknownKind(t *testing.T) {
	s := Snapshot{Filters: []filter.State{{Kind: "stars", ID: "x"}}}
	_, err := Restore(s, filter.NewFactory[row](rowProp))
	require.ErrorIs(t, err, filter.ErrUnknownKind)
}

func TestFromState_DropsCustomComparator(t *testing.T) {
	st := gridstate.State[row]{
		Sort: &gridstate.SortState[row]{By: gridstate.SortBy[row]{Comparator: nil}},
	}
	require.Nil(t, FromState(st).Sort)
}
