package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	name string
	tags map[string]string
}

type fakeSink struct {
	counts  []sample
	timings []sample
}

func (f *fakeSink) Count(name string, _ int64, tags map[string]string) {
	f.counts = append(f.counts, sample{name: name, tags: tags})
}

func (f *fakeSink) Timing(name string, _ time.Duration, tags map[string]string) {
	f.timings = append(f.timings, sample{name: name, tags: tags})
}

type storeDownError struct{}

func (storeDownError) Error() string { return "store down" }

func TestEmitUserSync(t *testing.T) {
	sink := &fakeSink{}
	EmitUserSync(sink, UserSyncMetric{
		Backend:  "convex",
		Result:   ResultError,
		Duration: 20 * time.Millisecond,
		Err:      fmt.Errorf("upsert: %w", storeDownError{}),
	})

	if assert.Len(t, sink.counts, 1) {
		assert.Equal(t, UserSyncCount, sink.counts[0].name)
		assert.Equal(t, "convex", sink.counts[0].tags["backend"])
		assert.Equal(t, ResultError, sink.counts[0].tags["result"])
		assert.Equal(t, "metrics_storedownerror", sink.counts[0].tags["error_class"])
	}
	if assert.Len(t, sink.timings, 1) {
		assert.Equal(t, UserSyncDuration, sink.timings[0].name)
	}
}

func TestEmitUserSync_NoDurationNoTiming(t *testing.T) {
	sink := &fakeSink{}
	EmitUserSync(sink, UserSyncMetric{Backend: "mongo", Result: ResultSuccess})
	assert.Len(t, sink.counts, 1)
	assert.Empty(t, sink.timings)
	assert.NotContains(t, sink.counts[0].tags, "error_class")
}

func TestEmitLogin(t *testing.T) {
	sink := &fakeSink{}
	EmitLogin(sink, LoginMetric{Provider: "widget", Result: ResultSuccess, Destination: "/organizer"})
	EmitLogin(sink, LoginMetric{Provider: "widget", Result: ResultError, Err: errors.New("bad token")})

	if assert.Len(t, sink.counts, 2) {
		assert.Equal(t, "/organizer", sink.counts[0].tags["destination"])
		assert.NotContains(t, sink.counts[1].tags, "destination")
		assert.NotEmpty(t, sink.counts[1].tags["error_class"])
	}
}

func TestEmitNilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		EmitLogin(nil, LoginMetric{})
		EmitUserSync(nil, UserSyncMetric{})
	})
}

func TestCloneTags(t *testing.T) {
	assert.Nil(t, CloneTags(nil))
	src := map[string]string{"a": "1"}
	cp := CloneTags(src)
	cp["a"] = "2"
	assert.Equal(t, "1", src["a"])
}
