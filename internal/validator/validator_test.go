package validator

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSuccessRange(t *testing.T) {
	assert.True(t, DefaultSuccess(200))
	assert.True(t, DefaultSuccess(299))
	assert.False(t, DefaultSuccess(300))
	assert.False(t, DefaultSuccess(199))
}

func TestStatusRangeRule(t *testing.T) {
	v := New([]Rule{StatusRange(200, 204)})
	ok, failures, _ := v.Validate(200, http.Header{}, nil)
	assert.True(t, ok)
	assert.Empty(t, failures)

	ok, failures, err := v.Validate(500, http.Header{}, nil)
	assert.False(t, ok)
	require.Len(t, failures, 1)
	assert.Equal(t, "statusRange", failures[0].Kind)
	assert.Error(t, err)
}

func TestBodyContainsRule(t *testing.T) {
	v := New([]Rule{BodyContains("ok")})
	ok, _, _ := v.Validate(200, http.Header{}, []byte(`{"status":"ok"}`))
	assert.True(t, ok)

	ok, failures, _ := v.Validate(200, http.Header{}, []byte(`{"status":"down"}`))
	assert.False(t, ok)
	assert.Len(t, failures, 1)
}

func TestBodyMatchesRule(t *testing.T) {
	r, err := BodyMatches(`^\{.*\}$`)
	require.NoError(t, err)
	v := New([]Rule{r})
	ok, _, _ := v.Validate(200, http.Header{}, []byte(`{}`))
	assert.True(t, ok)
	ok, _, _ = v.Validate(200, http.Header{}, []byte(`not json`))
	assert.False(t, ok)
}

func TestHeaderEqualsRule(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	v := New([]Rule{HeaderEquals("Content-Type", "application/json")})
	ok, _, _ := v.Validate(200, h, nil)
	assert.True(t, ok)

	v2 := New([]Rule{HeaderEquals("Content-Type", "text/plain")})
	ok, _, _ = v2.Validate(200, h, nil)
	assert.False(t, ok)
}

func TestBodySizeRangeRule(t *testing.T) {
	v := New([]Rule{BodySizeRange(1, 10)})
	ok, _, _ := v.Validate(200, http.Header{}, []byte("hello"))
	assert.True(t, ok)
	ok, _, _ = v.Validate(200, http.Header{}, []byte(""))
	assert.False(t, ok)
}

func TestCustomRule(t *testing.T) {
	rule := Custom("oddStatus", func(status int, _ http.Header, _ []byte) (bool, string) {
		if status%2 == 1 {
			return true, ""
		}
		return false, "status is even"
	})
	v := New([]Rule{rule})
	ok, _, _ := v.Validate(201, http.Header{}, nil)
	assert.True(t, ok)
	ok, _, _ = v.Validate(200, http.Header{}, nil)
	assert.False(t, ok)
}

func TestMultipleRulesAggregateFailures(t *testing.T) {
	v := New([]Rule{StatusRange(200, 200), BodyContains("missing")})
	ok, failures, err := v.Validate(500, http.Header{}, []byte("x"))
	assert.False(t, ok)
	assert.Len(t, failures, 2)
	assert.Error(t, err)
}

func TestEmptyValidatorAlwaysOk(t *testing.T) {
	v := New(nil)
	ok, failures, err := v.Validate(500, http.Header{}, nil)
	assert.True(t, ok)
	assert.Empty(t, failures)
	assert.NoError(t, err)
}
