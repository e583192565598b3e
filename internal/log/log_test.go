package log

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/gridstate/internal/pubsub"
)

func TestLog_FormatsFields(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, LevelDebug)

	Info(CatRegistry, "filter added", "key", "string/name", "active", true)

	out := buf.String()
	require.Contains(t, out, "[INFO] [registry] filter added")
	require.Contains(t, out, "key=string/name")
	require.Contains(t, out, "active=true")
}

func TestLog_OddFieldCount(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, LevelDebug)

	Warn(CatState, "orphan", "dangling")
	require.Contains(t, buf.String(), "dangling=<missing>")
}

func TestLog_RespectsMinLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, LevelWarn)

	Debug(CatPage, "hidden")
	Info(CatPage, "hidden too")
	ErrorErr(CatDB, "visible", errors.New("boom"))

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "error=boom")
}

func TestLog_Disabled(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, LevelDebug)
	SetEnabled(false)

	Error(CatSort, "nothing")
	require.Empty(t, buf.String())
}

func TestLog_PublishesEntries(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, LevelDebug)

	var got []string
	defaultLogger.broker.Observe(func(e pubsub.Event[string]) { got = append(got, e.Payload) })

	Info(CatItems, "recomputed", "rows", 3)
	require.Len(t, got, 1)
	require.Contains(t, got[0], "rows=3")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NotNil(t, NewListener(ctx))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		require.Equal(t, want, ParseLevel(in), in)
	}
}
